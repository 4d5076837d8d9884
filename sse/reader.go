package sse

import (
	"bytes"
	"context"
	"io"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/fetchkit/httpclient"
)

// ContentType is the media type of an event stream.
const ContentType = "text/event-stream"

// Event represents a single server-sent event.
type Event struct {
	// Event is the SSE event type (from "event:" line). Empty for data-only events.
	Event string
	// Data is the event payload (from "data:" line(s)). Multi-line data is joined with newlines.
	Data string
	// ID is the last event ID seen on the stream, including this event's "id:" line.
	ID string
	// Retry is the reconnection delay from a "retry:" line, zero if none was sent.
	Retry time.Duration
}

// LineSource yields lines without their terminators. Next returns io.EOF
// after the last line. httpclient.LineIterator implements it.
type LineSource interface {
	Next() ([]byte, error)
	Close() error
}

// Reader decodes events from a LineSource.
type Reader struct {
	lines  LineSource
	lastID string
	retry  time.Duration
	first  bool
}

// NewReader creates an event reader over lines.
func NewReader(lines LineSource) *Reader {
	return &Reader{lines: lines, first: true}
}

// FromResponse decodes the body of a streaming response.
func FromResponse(resp *httpclient.Response) (*Reader, error) {
	lines, err := resp.LineIterator(httpclient.DefaultLineChunkSize, nil)
	if err != nil {
		return nil, err
	}
	return NewReader(lines), nil
}

// Open requests url as an event stream and returns a reader over the body.
func Open(ctx context.Context, client *httpclient.Client, url string, opts ...httpclient.RequestOption) (*Reader, error) {
	opts = append([]httpclient.RequestOption{
		httpclient.WithHeader(httpclient.HeaderAccept, ContentType),
		httpclient.WithHeader("Cache-Control", "no-cache"),
	}, opts...)
	opts = append(opts, httpclient.WithStream(true))

	resp, err := client.Get(ctx, url, opts...)
	if err != nil {
		return nil, err
	}
	r, err := FromResponse(resp)
	if err != nil {
		_ = resp.Close()
		return nil, err
	}
	return r, nil
}

// LastEventID returns the most recent "id:" value seen.
func (r *Reader) LastEventID() string { return r.lastID }

// Retry returns the most recent reconnection delay sent by the server.
func (r *Reader) Retry() time.Duration { return r.retry }

// Next returns the next event. Returns io.EOF when the stream ends.
func (r *Reader) Next() (*Event, error) {
	var data strings.Builder
	var event Event
	hasData := false

	for {
		raw, err := r.lines.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if r.first {
			raw = bytes.TrimPrefix(raw, []byte("\uFEFF"))
			r.first = false
		}
		line := string(raw)

		// Blank line signals end of event
		if line == "" {
			if hasData {
				return r.dispatch(&event, data.String()), nil
			}
			event = Event{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseLine(line)
		switch field {
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "event":
			event.Event = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				r.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}

	// Stream ended; return last event if present
	if hasData {
		return r.dispatch(&event, data.String()), nil
	}
	return nil, io.EOF
}

func (r *Reader) dispatch(ev *Event, data string) *Event {
	ev.Data = data
	ev.ID = r.lastID
	ev.Retry = r.retry
	return ev
}

// All ranges over the remaining events and closes the reader when done.
func (r *Reader) All() iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		defer r.Close()
		for {
			ev, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	return r.lines.Close()
}

// parseLine splits a line into field and value, dropping one leading space
// from the value.
func parseLine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = strings.TrimPrefix(line[idx+1:], " ")
	return field, value
}
