// Package auth provides the authentication strategies a request can carry.
//
// A Strategy produces exactly one header pair that is applied to the
// outgoing request after the default headers, so it always overrides them.
//
//	req, err := httpclient.NewRequest("GET", url,
//	    httpclient.WithAuth(auth.Basic("user", "pass")))
//
// Built-in strategies:
//
//   - Basic:  Authorization: Basic base64(user:password)
//   - Bearer: Authorization: Bearer <token>
//   - APIKey: <name>: <key>
//   - Func:   any function returning a header pair
//   - jwt.Strategy (auth/jwt): a freshly signed bearer token per call
//
// EncodeBase64 and DecodeBase64 implement the standard base64 alphabet with
// padding used by Basic.
package auth
