// Package version reports fetchkit build information and the default
// User-Agent sent with every request.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/fetchkit/version.Version=1.0.0"
package version
