package cli

import (
	"fmt"
	"io"
	"net/http"

	"github.com/fatih/color"

	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/util"
)

// statusColor picks the color for a status code.
func statusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold)
	case code >= 400:
		return color.New(color.FgRed)
	case code >= 300:
		return color.New(color.FgYellow)
	case code >= 200:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}

// statusLine renders "HTTP 200 OK" in the status color.
func statusLine(code int) string {
	return statusColor(code).Sprintf("HTTP %d %s", code, http.StatusText(code))
}

// writeHead writes every redirect hop, then the final status line and headers.
func writeHead(w io.Writer, resp *httpclient.Response) error {
	dim := color.New(color.Faint).SprintFunc()
	for _, hop := range resp.History() {
		code, err := hop.StatusCode()
		if err != nil {
			return err
		}
		location := ""
		if h, err := hop.Headers(); err == nil {
			location = h.Value("Location")
		}
		fmt.Fprintf(w, "%s %s %s\n", statusLine(code), dim(hop.URL()), dim("→ "+location))
	}

	code, err := resp.StatusCode()
	if err != nil {
		return err
	}
	headers, err := resp.Headers()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", statusLine(code), dim(resp.URL()))
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, f := range headers.Sorted() {
		fmt.Fprintf(w, "%s: %s\n", cyan(f.Name), util.SanitizeString(f.Value))
	}
	fmt.Fprintln(w)
	return nil
}

// writeBody writes the body. With asText the content is decoded with the
// response encoding; otherwise the raw decoded bytes are copied.
func writeBody(w io.Writer, resp *httpclient.Response, asText bool) error {
	if asText {
		text, err := resp.Text()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	}
	content, err := resp.Content()
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

// streamLines copies a streaming body to w one line at a time as it arrives.
func streamLines(w io.Writer, resp *httpclient.Response) error {
	lines, err := resp.LineIterator(0, nil)
	if err != nil {
		return err
	}
	for line, err := range lines.All() {
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
