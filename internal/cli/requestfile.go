package cli

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/fetchkit/auth"
	"github.com/kbukum/fetchkit/auth/jwt"
	"github.com/kbukum/fetchkit/httpclient"
)

// RequestFile is a request described in YAML. String values may reference
// environment variables as $NAME or ${NAME}.
//
//	method: POST
//	url: https://api.example.com/search
//	headers:
//	  X-Trace: "1"
//	params:
//	  - {name: q, value: ada}
//	json: {limit: 10}
//	auth:
//	  bearer: ${API_TOKEN}
//	timeout: 5s
type RequestFile struct {
	Method          string            `yaml:"method"`
	URL             string            `yaml:"url"`
	Headers         map[string]string `yaml:"headers"`
	Params          []Param           `yaml:"params"`
	JSON            any               `yaml:"json"`
	Data            string            `yaml:"data"`
	Auth            *AuthSpec         `yaml:"auth"`
	Timeout         string            `yaml:"timeout"`
	FollowRedirects *bool             `yaml:"follow_redirects"`
	Stream          bool              `yaml:"stream"`
}

// Param is one query parameter. A list keeps the declared order.
type Param struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// AuthSpec selects one authentication strategy.
type AuthSpec struct {
	Basic  *BasicSpec  `yaml:"basic"`
	Bearer string      `yaml:"bearer"`
	APIKey *APIKeySpec `yaml:"api_key"`
	JWT    *JWTSpec    `yaml:"jwt"`
}

// BasicSpec holds basic credentials.
type BasicSpec struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIKeySpec holds a key sent in a named header.
type APIKeySpec struct {
	Header string `yaml:"header"`
	Key    string `yaml:"key"`
}

// JWTSpec signs a fresh HMAC token for every call.
type JWTSpec struct {
	Secret   string         `yaml:"secret"`
	Method   string         `yaml:"method"`
	Issuer   string         `yaml:"issuer"`
	Subject  string         `yaml:"subject"`
	Audience []string       `yaml:"audience"`
	TTL      string         `yaml:"ttl"`
	Claims   map[string]any `yaml:"claims"`
}

func (j *JWTSpec) strategy() (auth.Strategy, error) {
	cfg := &jwt.Config{
		Secret:   os.ExpandEnv(j.Secret),
		Method:   jwt.SigningMethod(strings.ToUpper(j.Method)),
		Issuer:   j.Issuer,
		Subject:  j.Subject,
		Audience: j.Audience,
		Claims:   j.Claims,
	}
	if j.TTL != "" {
		ttl, err := time.ParseDuration(j.TTL)
		if err != nil {
			return nil, fmt.Errorf("request file: jwt ttl: %w", err)
		}
		cfg.TTL = ttl
	}
	s, err := jwt.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("request file: %w", err)
	}
	return s, nil
}

// LoadRequestFile reads and parses a request file.
func LoadRequestFile(path string) (*RequestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}
	return ParseRequestFile(data)
}

// ParseRequestFile parses a YAML request description.
func ParseRequestFile(data []byte) (*RequestFile, error) {
	var f RequestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse request file: %w", err)
	}
	if strings.TrimSpace(f.URL) == "" {
		return nil, fmt.Errorf("parse request file: url is required")
	}
	return &f, nil
}

// Options converts the file into request options. Headers are applied in
// name order so equal files always produce the same change key.
func (f *RequestFile) Options() ([]httpclient.RequestOption, error) {
	var opts []httpclient.RequestOption

	names := make([]string, 0, len(f.Headers))
	for name := range f.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, httpclient.WithHeader(name, os.ExpandEnv(f.Headers[name])))
	}
	for _, p := range f.Params {
		opts = append(opts, httpclient.WithParam(p.Name, os.ExpandEnv(p.Value)))
	}

	if f.JSON != nil {
		opts = append(opts, httpclient.WithJSON(f.JSON))
	}
	if f.Data != "" {
		opts = append(opts, httpclient.WithData(os.ExpandEnv(f.Data)))
	}

	if f.Auth != nil {
		strategy, err := f.Auth.strategy()
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpclient.WithAuth(strategy))
	}

	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, fmt.Errorf("request file: timeout: %w", err)
		}
		opts = append(opts, httpclient.WithTimeout(d.Seconds()))
	}
	if f.FollowRedirects != nil {
		opts = append(opts, httpclient.WithAllowRedirects(*f.FollowRedirects))
	}
	if f.Stream {
		opts = append(opts, httpclient.WithStream(true))
	}
	return opts, nil
}

// Build creates the request the file describes.
func (f *RequestFile) Build() (*httpclient.Request, error) {
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(f.Method)
	if method == "" {
		method = http.MethodGet
	}
	return httpclient.NewRequest(method, os.ExpandEnv(f.URL), opts...)
}

func (a *AuthSpec) strategy() (auth.Strategy, error) {
	switch {
	case a.Basic != nil:
		return auth.Basic(os.ExpandEnv(a.Basic.Username), os.ExpandEnv(a.Basic.Password)), nil
	case a.Bearer != "":
		return auth.Bearer(os.ExpandEnv(a.Bearer)), nil
	case a.APIKey != nil:
		return auth.APIKey(a.APIKey.Header, os.ExpandEnv(a.APIKey.Key)), nil
	case a.JWT != nil:
		return a.JWT.strategy()
	default:
		return nil, fmt.Errorf("request file: auth needs basic, bearer, api_key or jwt")
	}
}
