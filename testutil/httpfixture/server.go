// Package httpfixture provides a recording gin server with the routes the
// fetchkit tests exercise: status codes, redirect chains, compressed bodies,
// streams, charsets, slow responses and server-sent events.
package httpfixture

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fetchkit/component"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/security/tlstest"
	"github.com/kbukum/fetchkit/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// CharsetBody is what /charset returns: "café" in ISO-8859-1.
var CharsetBody = []byte("caf\xe9")

// Events is the body /events writes.
const Events = "event: greeting\ndata: hello\nid: 1\n\n" +
	": keep-alive\n\n" +
	"data: line one\ndata: line two\n\n" +
	"retry: 1500\nevent: done\ndata: bye\n\n"

// Recorded is one request the server received.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Echo is the JSON document /echo answers with.
type Echo struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   string            `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Server is a test HTTP server backed by gin and httptest.
// It implements testutil.TestComponent.
type Server struct {
	name   string
	engine *gin.Engine
	ts     *httptest.Server
	certs  *tlstest.TLSCerts
	log    *logger.Logger

	mu       sync.RWMutex
	started  bool
	recorded []Recorded
}

var _ component.Component = (*Server)(nil)
var _ testutil.TestComponent = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithTLS serves HTTPS with the server certificate of certs.
func WithTLS(certs *tlstest.TLSCerts) Option {
	return func(s *Server) { s.certs = certs }
}

// WithName sets the component name.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a fixture server with every route registered. It does not
// listen until Start.
func New(opts ...Option) *Server {
	s := &Server{name: "httpfixture", log: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent(s.name)

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.record())
	s.routes()
	return s
}

// Start creates a fixture server, starts it and stops it when t ends.
func Start(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := New(opts...)
	testutil.T(t).Setup(s)
	return s
}

// Engine returns the gin engine for registering extra routes.
func (s *Server) Engine() *gin.Engine { return s.engine }

// URL returns the base URL, or "" before Start.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Recorded(nil), s.recorded...)
}

// --- component.Component ---

func (s *Server) Name() string { return s.name }

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("component already started")
	}
	s.ts = httptest.NewUnstartedServer(s.engine)
	if s.certs != nil {
		s.ts.TLS = &tls.Config{
			Certificates: []tls.Certificate{s.certs.ServerTLS},
			MinVersion:   tls.VersionTLS12,
		}
		s.ts.StartTLS()
	} else {
		s.ts.Start()
	}
	s.started = true
	s.log.Debug("fixture server started", logger.Fields("url", s.ts.URL))
	return nil
}

func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.ts == nil {
		return nil
	}
	s.ts.CloseClientConnections()
	s.ts.Close()
	s.started = false
	s.log.Debug("fixture server stopped")
	return nil
}

func (s *Server) Health(_ context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return component.Health{Name: s.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.name, Status: component.StatusHealthy}
}

// --- testutil.TestComponent ---

// Reset forgets every recorded request.
func (s *Server) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = nil
	return nil
}

// Snapshot captures the recorded requests.
func (s *Server) Snapshot(_ context.Context) (interface{}, error) {
	return s.Requests(), nil
}

// Restore replaces the recorded requests with a snapshot.
func (s *Server) Restore(_ context.Context, snapshot interface{}) error {
	recorded, ok := snapshot.([]Recorded)
	if !ok {
		return fmt.Errorf("invalid snapshot type %T", snapshot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append([]Recorded(nil), recorded...)
	return nil
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.recorded = append(s.recorded, Recorded{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Header: c.Request.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) routes() {
	s.engine.Any("/status/:code", status)
	s.engine.Any("/redirect/:n", redirectChain)
	s.engine.Any("/redirect-to", redirectTo)
	s.engine.Any("/no-location", func(c *gin.Context) { c.Status(http.StatusFound) })
	s.engine.Any("/loop", func(c *gin.Context) { c.Redirect(http.StatusFound, "/loop") })
	s.engine.Any("/final", func(c *gin.Context) { c.String(http.StatusOK, "final") })
	s.engine.Any("/echo", echo)
	s.engine.GET("/gzip", compressed("gzip", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }))
	s.engine.GET("/deflate", compressed("deflate", func(w io.Writer) io.WriteCloser { return zlib.NewWriter(w) }))
	s.engine.GET("/deflate-raw", compressed("deflate", func(w io.Writer) io.WriteCloser {
		fw, _ := flate.NewWriter(w, flate.DefaultCompression)
		return fw
	}))
	s.engine.GET("/stream/:n", stream)
	s.engine.GET("/lines", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain", []byte(c.Query("body")))
	})
	s.engine.GET("/charset", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; charset=ISO-8859-1", CharsetBody)
	})
	s.engine.GET("/bytes/:n", byteRun)
	s.engine.GET("/slow", slow)
	s.engine.GET("/drip", drip)
	s.engine.GET("/events", events)
}

func intParam(value string, def int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

func durationQuery(c *gin.Context, key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(c.Query(key))
	if err != nil {
		return def
	}
	return d
}

func status(c *gin.Context) {
	code := intParam(c.Param("code"), http.StatusOK)
	if code == http.StatusNoContent || code == http.StatusNotModified {
		c.Status(code)
		return
	}
	c.String(code, http.StatusText(code))
}

// redirectChain answers /redirect/n with a relative Location to n-1, and
// /redirect/1 with /final.
func redirectChain(c *gin.Context) {
	n := intParam(c.Param("n"), 1)
	code := intParam(c.Query("status"), http.StatusFound)
	location := "/final"
	if n > 1 {
		location = strconv.Itoa(n - 1)
		if q := c.Request.URL.RawQuery; q != "" {
			location += "?" + q
		}
	}
	c.Header("Location", location)
	c.String(code, "redirecting")
}

func redirectTo(c *gin.Context) {
	code := intParam(c.Query("status"), http.StatusFound)
	c.Header("Location", c.Query("url"))
	c.String(code, "redirecting")
}

func echo(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	headers := make(map[string]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		headers[name] = strings.Join(values, ", ")
	}
	c.JSON(http.StatusOK, Echo{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Query:   c.Request.URL.RawQuery,
		Headers: headers,
		Body:    string(body),
	})
}

func compressed(encoding string, wrap func(io.Writer) io.WriteCloser) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := c.DefaultQuery("body", "hello "+encoding)
		var buf bytes.Buffer
		w := wrap(&buf)
		_, _ = w.Write([]byte(body))
		_ = w.Close()
		c.Header("Content-Encoding", encoding)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	}
}

// stream writes n lines, flushing after each.
func stream(c *gin.Context) {
	n := intParam(c.Param("n"), 1)
	c.Header("Content-Type", "text/plain")
	c.Status(http.StatusOK)
	for i := 0; i < n; i++ {
		_, _ = fmt.Fprintf(c.Writer, "line %d\n", i)
		c.Writer.Flush()
	}
}

// byteRun writes n bytes cycling through the lowercase alphabet.
func byteRun(c *gin.Context) {
	n := intParam(c.Param("n"), 0)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
	}
	c.Data(http.StatusOK, "application/octet-stream", b)
}

// slow waits for delay before answering.
func slow(c *gin.Context) {
	select {
	case <-time.After(durationQuery(c, "delay", time.Second)):
		c.String(http.StatusOK, "slow")
	case <-c.Request.Context().Done():
	}
}

// drip sends headers at once, then n bytes one every interval.
func drip(c *gin.Context) {
	n := intParam(c.Query("n"), 5)
	interval := durationQuery(c, "interval", 10*time.Millisecond)
	c.Header("Content-Type", "text/plain")
	c.Status(http.StatusOK)
	c.Writer.Flush()
	for i := 0; i < n; i++ {
		select {
		case <-time.After(interval):
		case <-c.Request.Context().Done():
			return
		}
		_, _ = c.Writer.Write([]byte{'*'})
		c.Writer.Flush()
	}
}

func events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	for _, block := range strings.SplitAfter(Events, "\n\n") {
		if block == "" {
			continue
		}
		_, _ = io.WriteString(c.Writer, block)
		c.Writer.Flush()
	}
}
