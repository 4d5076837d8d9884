package httpclient

import (
	"bufio"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/observability"
)

// State is the lifecycle position of a Response.
type State int

const (
	// StateUnconnected means the request is known and no I/O happened yet.
	StateUnconnected State = iota
	// StateConnecting means the exchange, redirects included, is in progress.
	StateConnecting
	// StateConnected means status and headers are available.
	StateConnected
	// StateBodyPending means the body is waiting to be buffered.
	StateBodyPending
	// StateStreamOpen means the body is open for incremental reads.
	StateStreamOpen
	// StateClosed means the connection was released.
	StateClosed
	// StateFailed means the exchange failed; every accessor returns the failure.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateBodyPending:
		return "body_pending"
	case StateStreamOpen:
		return "stream_open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultEncoding is used when Content-Type names no charset.
const DefaultEncoding = "UTF-8"

// Response is the lazily resolved result of one Request.
//
// Fields are computed on first access and cached. A Response belongs to a
// single consumer; concurrent first access from several goroutines needs
// external synchronization. Close releases the connection and is safe to call
// more than once.
type Response struct {
	client *Client
	ctx    context.Context
	id     string

	origin  *Request
	request *Request
	conn    *http.Response
	history []*Response

	state    State
	failure  error
	released bool

	status    lazy[int]
	headers   lazy[*Headers]
	raw       lazy[io.Reader]
	content   lazy[[]byte]
	text      map[string]string
	encoding  string
	closers   []io.Closer
	onRelease []func()
}

func newResponse(c *Client, ctx context.Context, id string, req *Request) *Response {
	return &Response{client: c, ctx: ctx, id: id, origin: req, request: req}
}

// ID returns the identifier shared by every log line and span of this call.
func (r *Response) ID() string { return r.id }

// State returns the current lifecycle state.
func (r *Response) State() State { return r.state }

// Request returns the descriptor of the exchange this response reports. After
// redirects it is the last hop's descriptor.
func (r *Response) Request() *Request { return r.request }

// History returns the responses that led here, oldest first.
func (r *Response) History() []*Response {
	return append([]*Response(nil), r.history...)
}

// connected opens the exchange on first use and reports any failure.
func (r *Response) connected() error {
	switch {
	case r.state == StateUnconnected:
		return r.connect()
	case r.state == StateFailed:
		return r.failure
	case r.conn == nil:
		return errors.State("response closed before connecting")
	}
	return nil
}

func (r *Response) connect() error {
	r.state = StateConnecting
	req, conn, history, err := r.client.follow(r.ctx, r.id, r.origin)
	if err != nil {
		r.state = StateFailed
		r.failure = err
		return err
	}
	r.attach(req, conn, history)
	return nil
}

func (r *Response) attach(req *Request, conn *http.Response, history []*Response) {
	r.request = req
	r.conn = conn
	r.history = history
	r.closers = append(r.closers, conn.Body)
	r.state = StateConnected
}

// init performs the exchange and, unless streaming, buffers the body.
func (r *Response) init() error {
	if err := r.connected(); err != nil {
		return err
	}
	if r.request.Stream() {
		r.state = StateStreamOpen
		return nil
	}
	r.state = StateBodyPending
	_, err := r.Content()
	return err
}

// Connection returns the transport response of the last hop.
func (r *Response) Connection() (*http.Response, error) {
	if err := r.connected(); err != nil {
		return nil, err
	}
	return r.conn, nil
}

// StatusCode returns the status of the last hop. Non-2xx statuses are not errors.
func (r *Response) StatusCode() (int, error) {
	if err := r.connected(); err != nil {
		return 0, err
	}
	return r.status.get(func() (int, error) {
		return r.conn.StatusCode, nil
	})
}

// Headers returns a copy of the response headers.
func (r *Response) Headers() (*Headers, error) {
	if err := r.connected(); err != nil {
		return nil, err
	}
	h, err := r.headers.get(func() (*Headers, error) {
		return HeadersFromHTTP(r.conn.Header), nil
	})
	if err != nil {
		return nil, err
	}
	return h.Clone(), nil
}

// URL returns the final URL, after any redirects.
func (r *Response) URL() string {
	if r.conn != nil && r.conn.Request != nil && r.conn.Request.URL != nil {
		return r.conn.Request.URL.String()
	}
	return r.request.FullURL()
}

// Raw returns the body decoded according to Content-Encoding. For a buffered
// response it reads from the cached content. A stream that was already
// consumed and released returns a STATE_ERROR.
func (r *Response) Raw() (io.Reader, error) {
	if err := r.connected(); err != nil {
		return nil, err
	}
	if r.content.done() {
		return bytes.NewReader(r.content.value), nil
	}
	if r.released {
		return nil, errors.Released("raw")
	}
	if r.state == StateConnected {
		r.state = StateStreamOpen
	}
	return r.raw.get(r.decode)
}

func (r *Response) decode() (io.Reader, error) {
	body := io.Reader(r.conn.Body)
	if r.conn.Uncompressed {
		return body, nil
	}
	encoding := strings.ToLower(strings.TrimSpace(r.conn.Header.Get(HeaderContentEncoding)))
	switch encoding {
	case "gzip":
		br := bufio.NewReader(body)
		if _, err := br.Peek(1); err == io.EOF {
			return br, nil
		}
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, bodyError("decode gzip", err)
		}
		r.closers = append(r.closers, zr)
		return zr, nil
	case "deflate":
		br := bufio.NewReader(body)
		head, err := br.Peek(2)
		if err == io.EOF && len(head) == 0 {
			return br, nil
		}
		if isZlibHeader(head) {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return nil, bodyError("decode deflate", err)
			}
			r.closers = append(r.closers, zr)
			return zr, nil
		}
		fr := flate.NewReader(br)
		r.closers = append(r.closers, fr)
		return fr, nil
	default:
		return body, nil
	}
}

// isZlibHeader reports whether head starts a zlib stream (RFC 1950) rather
// than raw deflate data.
func isZlibHeader(head []byte) bool {
	if len(head) < 2 {
		return false
	}
	return head[0]&0x0f == 8 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0
}

// Content returns the fully buffered, decoded body. Reading it drains and
// closes a stream.
func (r *Response) Content() ([]byte, error) {
	if err := r.connected(); err != nil {
		return nil, err
	}
	if !r.content.done() && r.released {
		return nil, errors.Released("content")
	}
	return r.content.get(func() ([]byte, error) {
		raw, err := r.raw.get(r.decode)
		if err != nil {
			return nil, err
		}
		b, readErr := io.ReadAll(raw)
		closeErr := r.release()
		if readErr != nil {
			return nil, bodyError("read body", readErr)
		}
		if closeErr != nil {
			r.client.log.Debug("closing body failed", logger.ErrorFields("close", closeErr))
		}
		return b, nil
	})
}

// Text returns the content decoded with Encoding. Text is cached per
// encoding, so SetEncoding never rewrites text already returned.
func (r *Response) Text() (string, error) {
	content, err := r.Content()
	if err != nil {
		return "", err
	}
	enc := r.Encoding()
	if t, ok := r.text[enc]; ok {
		return t, nil
	}
	t, err := decodeText(content, enc)
	if err != nil {
		return "", err
	}
	if r.text == nil {
		r.text = make(map[string]string)
	}
	r.text[enc] = t
	return t, nil
}

func decodeText(content []byte, name string) (string, error) {
	enc, canonical := charset.Lookup(name)
	if enc == nil || canonical == "utf-8" {
		return string(content), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		return "", errors.Internal(err).WithDetail("encoding", name)
	}
	return string(out), nil
}

// Encoding returns the override set with SetEncoding, else the charset named
// in Content-Type, else UTF-8.
func (r *Response) Encoding() string {
	if r.encoding != "" {
		return r.encoding
	}
	h, err := r.Headers()
	if err != nil {
		return DefaultEncoding
	}
	ct, ok := h.Get(HeaderContentType)
	if !ok {
		return DefaultEncoding
	}
	return ParseCharset(ct)
}

// SetEncoding overrides the detected encoding for later Text calls.
func (r *Response) SetEncoding(name string) {
	r.encoding = strings.ToUpper(strings.TrimSpace(name))
}

// ParseCharset extracts the charset parameter of a Content-Type value.
// The first parameter whose trimmed key is "charset" in any case and that has
// exactly one "=" wins; its value is upper-cased. The default is UTF-8.
func ParseCharset(contentType string) string {
	for _, param := range strings.Split(contentType, ";") {
		kv := strings.Split(param, "=")
		if len(kv) != 2 || strings.ToLower(strings.TrimSpace(kv[0])) != "charset" {
			continue
		}
		v := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		if v == "" {
			continue
		}
		return strings.ToUpper(v)
	}
	return DefaultEncoding
}

// String renders "<Response [status]>" once connected, else the state, as in
// "<Response [unconnected]>". It never performs I/O.
func (r *Response) String() string {
	if r.conn != nil {
		return fmt.Sprintf("<Response [%d]>", r.conn.StatusCode)
	}
	return fmt.Sprintf("<Response [%s]>", r.state)
}

// OnRelease registers fn to run once the connection is released, by Close or
// by consuming the body. If it was already released fn runs at once.
func (r *Response) OnRelease(fn func()) {
	if r.released {
		fn()
		return
	}
	r.onRelease = append(r.onRelease, fn)
}

func (r *Response) runReleaseHooks() {
	hooks := r.onRelease
	r.onRelease = nil
	for _, fn := range hooks {
		fn()
	}
}

// release closes the connection once the body has been consumed.
func (r *Response) release() error {
	if r.released {
		return nil
	}
	r.released = true
	if r.state != StateFailed {
		r.state = StateClosed
	}

	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.closers[i].Close())
	}
	r.closers = nil
	if r.request.Stream() {
		observability.SpanFromContext(r.ctx).AddEvent(observability.EventStreamClosed,
			trace.WithAttributes(attribute.String(observability.AttrRequestID, r.id)))
	}
	r.runReleaseHooks()
	return err
}

// Close releases the connection. An unconnected response closes without I/O.
func (r *Response) Close() error {
	if r.state == StateUnconnected {
		r.state = StateClosed
		r.released = true
		r.runReleaseHooks()
		return nil
	}
	return r.release()
}

// bodyError classifies a body read failure unless it already is one.
func bodyError(op string, err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(err, gzip.ErrHeader) || stderrors.Is(err, zlib.ErrHeader) {
		return errors.Network(op, err).WithDetail("reason", "corrupt encoding")
	}
	return errors.Network(op, err)
}
