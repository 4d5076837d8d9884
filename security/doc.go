// Package security provides TLS configuration for fetchkit transports.
//
// A TLSConfig either points at PEM files (CA bundle, client certificate and
// key) or carries a ready-made *tls.Config supplied by the caller, the
// equivalent of handing the client a custom trust/key context.
//
//	cfg := security.TLSConfig{CAFile: "/path/to/ca.pem"}
//	tlsConfig, err := cfg.Build()
package security
