// Package httpclient is the fetchkit request/response engine.
//
// A Request is an immutable descriptor built with NewRequest. A Client turns
// it into a Response whose fields are resolved lazily and cached: status,
// headers, the decoded body stream, the buffered content and the text decoded
// with the detected charset. Redirects are chased by the engine, not the
// transport, so every hop ends up in Response.History.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{Timeout: 10 * time.Second})
//
//	req, err := httpclient.NewRequest(http.MethodGet, "https://api.example.com/users",
//	    httpclient.WithParam("q", "ada lovelace"),
//	    httpclient.WithAuth(auth.Basic("user", "secret")),
//	)
//	resp, err := client.Do(ctx, req)
//	text, err := resp.Text()
//
// # Streaming
//
//	resp, err := client.Get(ctx, url, httpclient.WithStream(true))
//	lines, err := resp.LineIterator(0, nil)
//	for line, err := range lines.All() {
//	    ...
//	}
//
// Header maps are case-insensitive and keep the first casing they saw.
// WithoutHeader suppresses a default header such as Accept-Encoding.
package httpclient
