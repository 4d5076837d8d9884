package httpclient

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/idna"

	"github.com/kbukum/fetchkit/errors"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/observability"
)

// DefaultMaxRedirects caps the redirect hops of one call.
const DefaultMaxRedirects = 10

var errMissingLocation = stderrors.New("missing Location header")

// IsRedirect reports whether status is one the engine follows.
func IsRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// ResolveLocation resolves a Location header against base and converts a
// non-ASCII host to its IDNA ASCII form.
func ResolveLocation(base *url.URL, location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", errMissingLocation
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	target := base.ResolveReference(ref)

	host := target.Hostname()
	if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", err
		}
		if port := target.Port(); port != "" {
			target.Host = net.JoinHostPort(ascii, port)
		} else {
			target.Host = ascii
		}
	}
	return target.String(), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// follow runs the exchange for origin and chases redirects while the origin
// allows them. It returns the descriptor and transport response of the last
// hop along with the history of earlier hops, oldest first.
func (c *Client) follow(ctx context.Context, id string, origin *Request) (*Request, *http.Response, []*Response, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrRequestID, id),
			attribute.String(observability.AttrMethod, origin.Method()),
			attribute.String(observability.AttrURL, origin.FullURL()),
			attribute.Bool(observability.AttrStream, origin.Stream()),
		),
	)
	defer span.End()

	log := c.log.WithFields(logger.Fields(logger.FieldRequestID, id, logger.FieldMethod, origin.Method()))
	start := c.now()
	c.metrics.CallStarted(ctx, origin.Method())
	defer func() { c.metrics.CallFinished(ctx, origin.Method(), c.now().Sub(start)) }()

	fail := func(err error) (*Request, *http.Response, []*Response, error) {
		code := string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		c.metrics.Error(ctx, code, "httpclient")
		span.SetAttributes(attribute.String(observability.AttrErrorCode, code))
		observability.SetSpanError(ctx, err)
		log.Warn("http call failed", logger.MergeWithError(logger.Fields(logger.FieldURL, origin.FullURL()), err))
		return nil, nil, nil, err
	}

	var history []*Response
	req := origin
	for hop := 0; ; hop++ {
		conn, err := c.exchange(ctx, req)
		if err != nil {
			return fail(err)
		}
		c.metrics.Exchange(ctx, req.Method(), conn.StatusCode)
		log.Debug("http exchange", logger.Fields(
			logger.FieldHop, hop,
			logger.FieldURL, conn.Request.URL.String(),
			logger.FieldStatus, conn.StatusCode,
		))

		if !origin.AllowRedirects() || !IsRedirect(conn.StatusCode) {
			span.SetAttributes(attribute.Int(observability.AttrStatusCode, conn.StatusCode))
			return req, conn, history, nil
		}

		if hop >= c.config.MaxRedirects {
			_ = conn.Body.Close()
			return fail(errors.TooManyRedirects(c.config.MaxRedirects))
		}

		location := conn.Header.Get(HeaderLocation)
		target, err := ResolveLocation(conn.Request.URL, location)
		if err != nil {
			_ = conn.Body.Close()
			return fail(errors.RedirectResolution(conn.StatusCode, location, err))
		}
		next, err := req.redirectHop(target)
		if err != nil {
			_ = conn.Body.Close()
			return fail(errors.RedirectResolution(conn.StatusCode, location, err))
		}

		entry := c.archive(ctx, id, req, conn, history)
		history = slices.Concat(history, []*Response{entry})

		c.metrics.Redirect(ctx, conn.StatusCode)
		span.AddEvent(observability.EventRedirect, trace.WithAttributes(
			attribute.Int(observability.AttrHop, hop+1),
			attribute.Int(observability.AttrStatusCode, conn.StatusCode),
			attribute.String(observability.AttrLocation, target),
		))
		log.Debug("following redirect", logger.Fields(
			logger.FieldHop, hop+1,
			logger.FieldStatus, conn.StatusCode,
			logger.FieldLocation, target,
		))
		req = next
	}
}

// archive turns a redirect response into a closed history entry. Its body is
// buffered and the connection released before the next hop. The entry made a
// single exchange, so its descriptor never follows redirects.
func (c *Client) archive(ctx context.Context, id string, req *Request, conn *http.Response, history []*Response) *Response {
	hop := req
	if hop.AllowRedirects() {
		hop = req.clone()
		noFollow := false
		hop.allowRedirects = &noFollow
	}
	entry := newResponse(c, ctx, id, hop)
	entry.attach(hop, conn, history)
	if _, err := entry.Content(); err != nil {
		c.log.Debug("discarding redirect body failed", logger.ErrorFields("read", err))
	}
	_ = entry.Close()
	return entry
}
