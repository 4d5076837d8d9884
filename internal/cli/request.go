package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/fetchkit/auth"
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/logger"
	"github.com/kbukum/fetchkit/util"
)

// requestFlags describe one request on the command line.
type requestFlags struct {
	method   string
	headers  []string
	params   []string
	data     string
	json     string
	user     string
	bearer   string
	noFollow bool
	file     string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.method, "method", "X", "", "Request method (default GET, or the request file's method)")
	fl.StringArrayVarP(&f.headers, "header", "H", nil, `Header "Name: value"; "Name:" suppresses a default header`)
	fl.StringArrayVarP(&f.params, "param", "q", nil, `Query parameter "key=value", appended in order`)
	fl.StringVarP(&f.data, "data", "d", "", "Text payload; @path reads the payload from a file")
	fl.StringVar(&f.json, "json", "", "JSON payload, sent as application/json")
	fl.StringVarP(&f.user, "user", "u", "", `Basic credentials "user:password"`)
	fl.StringVar(&f.bearer, "bearer", "", "Bearer token")
	fl.BoolVar(&f.noFollow, "no-follow", false, "Do not follow redirects")
	fl.StringVarP(&f.file, "file", "f", "", "YAML request file; flags are layered on top")
}

// build creates the request from a request file and/or url plus the flags.
func (f *requestFlags) build(url string, extra ...httpclient.RequestOption) (*httpclient.Request, error) {
	fileMethod := ""
	var opts []httpclient.RequestOption

	if f.file != "" {
		rf, err := LoadRequestFile(f.file)
		if err != nil {
			return nil, withExitCode(ExitRequestError, err)
		}
		fileOpts, err := rf.Options()
		if err != nil {
			return nil, withExitCode(ExitRequestError, err)
		}
		opts = append(opts, fileOpts...)
		fileMethod = rf.Method
		if url == "" {
			url = os.ExpandEnv(rf.URL)
		}
	}
	if url == "" {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("a url or --file is required"))
	}
	method := strings.ToUpper(util.Coalesce(f.method, fileMethod, http.MethodGet))

	flagOpts, err := f.options()
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	opts = append(opts, flagOpts...)
	opts = append(opts, extra...)
	return httpclient.NewRequest(method, url, opts...)
}

func (f *requestFlags) options() ([]httpclient.RequestOption, error) {
	var opts []httpclient.RequestOption
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("header %q: expected \"Name: value\"", h)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			opts = append(opts, httpclient.WithoutHeader(name))
			continue
		}
		opts = append(opts, httpclient.WithHeader(name, value))
	}
	for _, p := range f.params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("param %q: expected \"key=value\"", p)
		}
		opts = append(opts, httpclient.WithParam(key, value))
	}

	if f.data != "" {
		if path, ok := strings.CutPrefix(f.data, "@"); ok {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("data: %w", err)
			}
			opts = append(opts, httpclient.WithData(b))
		} else {
			opts = append(opts, httpclient.WithData(f.data))
		}
	}
	if f.json != "" {
		if !json.Valid([]byte(f.json)) {
			return nil, fmt.Errorf("json: payload is not valid JSON")
		}
		opts = append(opts, httpclient.WithJSON(json.RawMessage(f.json)))
	}

	switch {
	case f.user != "":
		user, pass, _ := strings.Cut(f.user, ":")
		opts = append(opts, httpclient.WithAuth(auth.Basic(user, pass)))
	case f.bearer != "":
		opts = append(opts, httpclient.WithAuth(auth.Bearer(f.bearer)))
	}
	if f.noFollow {
		opts = append(opts, httpclient.WithAllowRedirects(false))
	}
	return opts, nil
}

// logRequest logs the outgoing request at debug level with credentials masked.
func logRequest(log *logger.Logger, req *httpclient.Request) {
	headers, err := req.EffectiveHeaders()
	if err != nil {
		return
	}
	log.Debug("sending request", map[string]interface{}{
		"method":  req.Method(),
		"url":     req.FullURL(),
		"headers": util.MaskHeaders(headers.ToMap()),
	})
}

func newRequestCommand(g *globalFlags) *cobra.Command {
	var (
		rf       requestFlags
		include  bool
		stream   bool
		fail     bool
		text     bool
		encoding string
	)

	cmd := &cobra.Command{
		Use:     "request [url]",
		Aliases: []string{"get", "fetch"},
		Short:   "Perform one request and print the response",
		Long: `Perform one request and print the response body to stdout.

Examples:
  fetchkit request https://httpbin.org/get -q name=ada
  fetchkit request -X POST --json '{"a":1}' https://httpbin.org/post
  fetchkit request -i --no-follow https://httpbin.org/redirect/2
  fetchkit request --stream https://httpbin.org/stream/5
  fetchkit request -f search.yaml -H "X-Trace: 1"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			var extra []httpclient.RequestOption
			if stream {
				extra = append(extra, httpclient.WithStream(true))
			}
			req, err := rf.build(url, extra...)
			if err != nil {
				return err
			}

			return g.run(cmd, nil, func(ctx context.Context, rt *runtime) error {
				logRequest(rt.app.Logger, req)
				resp, err := rt.clients.Client().Do(ctx, req)
				if err != nil {
					return err
				}
				defer resp.Close()
				if encoding != "" {
					resp.SetEncoding(encoding)
				}

				out := cmd.OutOrStdout()
				if include {
					if err := writeHead(out, resp); err != nil {
						return err
					}
				}
				if stream {
					err = streamLines(out, resp)
				} else {
					err = writeBody(out, resp, text || encoding != "")
				}
				if err != nil {
					return err
				}

				code, _ := resp.StatusCode()
				if fail && code >= 400 {
					return withExitCode(ExitHTTPError, fmt.Errorf("server responded %d", code))
				}
				return nil
			})
		},
	}

	rf.register(cmd)
	fl := cmd.Flags()
	fl.BoolVarP(&include, "include", "i", false, "Print redirect hops, status line and headers before the body")
	fl.BoolVar(&stream, "stream", false, "Print the body line by line as it arrives")
	fl.BoolVar(&fail, "fail", false, "Exit with code 22 on a 4xx or 5xx status")
	fl.BoolVar(&text, "text", false, "Decode the body with the detected charset before printing")
	fl.StringVar(&encoding, "encoding", "", "Decode the body with this charset (implies --text)")
	return cmd
}
