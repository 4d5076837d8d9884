// Package sse decodes Server-Sent Events from a streaming fetchkit response.
//
// The decoder reads lines from any LineSource, so it works on top of
// httpclient.LineIterator without buffering the stream:
//
//	r, err := sse.Open(ctx, client, "https://api.example.com/events")
//	if err != nil { ... }
//	defer r.Close()
//	for ev, err := range r.All() {
//	    if err != nil { ... }
//	    fmt.Println(ev.Event, ev.Data)
//	}
package sse
