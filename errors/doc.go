// Package errors provides the error taxonomy used by fetchkit.
//
// Every failure surfaced by the request engine is an *AppError carrying a
// machine-readable ErrorCode and, when available, the underlying cause:
//
//   - CONSTRUCTION_ERROR: an invalid request descriptor (bad scheme, bad URL)
//   - NETWORK_ERROR: connect, read, write, DNS or TLS failures
//   - TIMEOUT: a transport deadline was exceeded
//   - REDIRECT_RESOLUTION_ERROR: a redirect without a usable Location header
//   - TOO_MANY_REDIRECTS: the redirect hop limit was exceeded
//   - STATE_ERROR: a response field was read after its resource was released
//
// Timeouts and redirect failures are network-class errors; see IsNetwork.
package errors
