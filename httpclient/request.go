package httpclient

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/fetchkit/auth"
	"github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/security"
	"github.com/kbukum/fetchkit/validation"
)

// DefaultTimeout is the request timeout in seconds when none is given.
const DefaultTimeout = 30.0

// Request is an immutable description of one HTTP call.
// Build it with NewRequest; every accessor returns a copy.
type Request struct {
	method         string
	url            string
	params         Params
	headers        *Headers
	auth           auth.Strategy
	body           []byte
	data           any
	json           any
	timeout        float64
	timeoutSet     bool
	allowRedirects *bool
	stream         bool
	files          []File
	tls            *security.TLSConfig

	// resolved marks a redirect hop whose url already carries the query.
	resolved bool
	// buildErr records an option that failed while being applied.
	buildErr error
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithParams appends query parameters.
func WithParams(params Params) RequestOption {
	return func(r *Request) {
		r.params = append(r.params, params...)
	}
}

// WithParam appends one query parameter.
func WithParam(key, value string) RequestOption {
	return func(r *Request) {
		r.params = append(r.params, Param{Key: key, Value: value})
	}
}

// WithHeaders sets every header of h, absent declarations included.
func WithHeaders(h *Headers) RequestOption {
	return func(r *Request) {
		for _, e := range h.entriesOrNil() {
			r.headers.put(e.name, e.value, e.absent)
		}
	}
}

// WithHeader sets one header.
func WithHeader(name, value string) RequestOption {
	return func(r *Request) {
		r.headers.Set(name, value)
	}
}

// WithoutHeader declares a header absent so its default is not sent.
func WithoutHeader(name string) RequestOption {
	return func(r *Request) {
		r.headers.SetAbsent(name)
	}
}

// WithAuth sets the strategy that supplies the auth header.
func WithAuth(s auth.Strategy) RequestOption {
	return func(r *Request) {
		r.auth = s
	}
}

// WithBody sets a raw payload written as-is.
func WithBody(body []byte) RequestOption {
	return func(r *Request) {
		r.body = append([]byte(nil), body...)
	}
}

// WithData sets a data payload. Strings and bytes are sent as text/plain,
// map[string]string, Params and url.Values are form-encoded, and an io.Reader
// is read fully when the request is built.
func WithData(data any) RequestOption {
	return func(r *Request) {
		if rd, ok := data.(io.Reader); ok {
			b, err := io.ReadAll(rd)
			if err != nil {
				r.buildErr = errors.Construction("read data payload").WithCause(err)
				return
			}
			data = b
		}
		r.data = data
	}
}

// WithJSON sets a payload marshalled as JSON.
func WithJSON(v any) RequestOption {
	return func(r *Request) {
		r.json = v
	}
}

// WithTimeout sets the connect and read budget in seconds. Zero disables it.
// Without it the client's configured timeout applies.
func WithTimeout(seconds float64) RequestOption {
	return func(r *Request) {
		r.timeout = seconds
		r.timeoutSet = true
	}
}

// WithAllowRedirects controls whether redirect statuses are followed.
func WithAllowRedirects(allow bool) RequestOption {
	return func(r *Request) {
		r.allowRedirects = &allow
	}
}

// WithStream keeps the body open for incremental reads instead of buffering it.
func WithStream(stream bool) RequestOption {
	return func(r *Request) {
		r.stream = stream
	}
}

// WithFiles adds multipart file parts.
func WithFiles(files ...File) RequestOption {
	return func(r *Request) {
		r.files = append(r.files, files...)
	}
}

// WithTLS sets the TLS settings used for this request.
func WithTLS(cfg *security.TLSConfig) RequestOption {
	return func(r *Request) {
		r.tls = cfg
	}
}

// WithTLSConfig uses caller-supplied trust and key material.
func WithTLSConfig(cfg *tls.Config) RequestOption {
	return WithTLS(security.FromTLS(cfg))
}

// descriptor is the validated shape of a Request.
type descriptor struct {
	Method  string  `mapstructure:"method" validate:"required,token"`
	URL     string  `mapstructure:"url" validate:"required,httpurl"`
	Timeout float64 `mapstructure:"timeout" validate:"gte=0"`
}

// NewRequest builds a Request. The method is upper-cased and any token is
// accepted. The URL must use the http or https scheme; violations return a
// CONSTRUCTION_ERROR.
func NewRequest(method, rawURL string, opts ...RequestOption) (*Request, error) {
	r := &Request{
		method:  strings.ToUpper(strings.TrimSpace(method)),
		url:     rawURL,
		headers: &Headers{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) validate() error {
	if r.buildErr != nil {
		return r.buildErr
	}

	d := descriptor{Method: r.method, URL: r.url, Timeout: r.timeout}
	if err := validation.Validate(d); err != nil {
		cerr := errors.Construction(fmt.Sprintf("invalid request %s %s", r.method, r.url)).WithCause(err)
		if appErr, ok := errors.AsAppError(err); ok {
			cerr.WithDetails(appErr.Details)
		}
		return cerr
	}

	payloads := 0
	for _, set := range []bool{len(r.body) > 0, r.data != nil, r.json != nil} {
		if set {
			payloads++
		}
	}
	if payloads > 1 {
		return errors.Construction("only one of body, data and json may be set")
	}
	if len(r.files) > 0 && (len(r.body) > 0 || r.json != nil) {
		return errors.Construction("files can only be combined with form data")
	}
	if r.tls != nil {
		if err := r.tls.Validate(); err != nil {
			return errors.Construction("invalid tls settings").WithCause(err)
		}
	}
	return nil
}

// Clone returns a copy of r with opts applied on top.
func (r *Request) Clone(opts ...RequestOption) (*Request, error) {
	c := r.clone()
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Request) clone() *Request {
	c := *r
	c.params = append(Params(nil), r.params...)
	c.headers = r.headers.Clone()
	c.body = append([]byte(nil), r.body...)
	c.files = append([]File(nil), r.files...)
	if r.allowRedirects != nil {
		allow := *r.allowRedirects
		c.allowRedirects = &allow
	}
	c.buildErr = nil
	return &c
}

// redirectHop clones r for a redirect target. The hop does not follow
// redirects itself and its URL is used as resolved.
func (r *Request) redirectHop(location string) (*Request, error) {
	return r.Clone(WithAllowRedirects(false), func(c *Request) {
		c.url = location
		c.resolved = true
	})
}

// Method returns the upper-cased verb.
func (r *Request) Method() string { return r.method }

// URL returns the URL as given, without params.
func (r *Request) URL() string { return r.url }

// FullURL returns the URL with the encoded params appended.
func (r *Request) FullURL() string {
	if r.resolved {
		return r.url
	}
	return BuildURL(r.url, r.params)
}

// Params returns a copy of the query parameters.
func (r *Request) Params() Params { return append(Params(nil), r.params...) }

// Headers returns a copy of the explicit headers, absent declarations included.
func (r *Request) Headers() *Headers { return r.headers.Clone() }

// Auth returns the auth strategy, or nil.
func (r *Request) Auth() auth.Strategy { return r.auth }

// Body returns a copy of the raw payload.
func (r *Request) Body() []byte { return append([]byte(nil), r.body...) }

// Data returns the data payload.
func (r *Request) Data() any { return r.data }

// JSON returns the JSON payload.
func (r *Request) JSON() any { return r.json }

// Timeout returns the budget in seconds.
func (r *Request) Timeout() float64 { return r.timeout }

// TimeoutMillis returns the budget in whole milliseconds.
func (r *Request) TimeoutMillis() int64 { return int64(r.timeout * 1000) }

// AllowRedirects reports whether redirect statuses are followed.
// Unless set, it is true for every method but HEAD.
func (r *Request) AllowRedirects() bool {
	if r.allowRedirects != nil {
		return *r.allowRedirects
	}
	return r.method != http.MethodHead
}

// Stream reports whether the body is left open for incremental reads.
func (r *Request) Stream() bool { return r.stream }

// Files returns a copy of the multipart parts.
func (r *Request) Files() []File { return append([]File(nil), r.files...) }

// TLS returns the TLS settings, or nil.
func (r *Request) TLS() *security.TLSConfig { return r.tls }

// EffectiveHeaders returns the headers that would go on the wire with the
// package defaults.
func (r *Request) EffectiveHeaders() (*Headers, error) {
	h, _, err := r.prepare(DefaultHeaders())
	return h, err
}

// prepare renders the payload and merges headers: explicit headers first, then
// the payload defaults, then defaults, then the auth header. Absent
// declarations are dropped last.
func (r *Request) prepare(defaults *Headers) (*Headers, []byte, error) {
	body, payloadHeaders, err := r.encodePayload()
	if err != nil {
		return nil, nil, err
	}

	h := r.headers.Clone()
	h.Merge(payloadHeaders)
	h.Merge(defaults)

	if r.auth != nil {
		name, value, err := r.auth.Header()
		if err != nil {
			return nil, nil, errors.Construction("auth header").WithCause(err)
		}
		h.Set(name, value)
	}
	return h.Compact(), body, nil
}

// ChangeKey identifies the inputs that make two requests different calls:
// URL, headers, params, auth identity, data and JSON.
func (r *Request) ChangeKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "url=%s\n", r.url)
	for _, e := range r.headers.entriesOrNil() {
		if e.absent {
			fmt.Fprintf(&b, "header=%s!\n", strings.ToLower(e.name))
			continue
		}
		fmt.Fprintf(&b, "header=%s:%s\n", strings.ToLower(e.name), e.value)
	}
	fmt.Fprintf(&b, "params=%s\n", EncodeParams(r.params))
	fmt.Fprintf(&b, "auth=%s\n", auth.Identity(r.auth))
	fmt.Fprintf(&b, "data=%s\n", keyValue(r.data))
	fmt.Fprintf(&b, "json=%s\n", keyValue(r.json))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

func keyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// String renders the method and full URL.
func (r *Request) String() string {
	return r.method + " " + r.FullURL()
}
