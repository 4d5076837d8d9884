package httpclient

import (
	"net/url"
	"sort"
	"strings"
)

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters.
type Params []Param

// ParamsFromMap builds Params from a map with keys in sorted order.
func ParamsFromMap(m map[string]string) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Params, 0, len(keys))
	for _, k := range keys {
		out = append(out, Param{Key: k, Value: m[k]})
	}
	return out
}

// ParamsFromValues builds Params from url.Values with keys in sorted order.
// Repeated values become repeated parameters.
func ParamsFromValues(v url.Values) Params {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out Params
	for _, k := range keys {
		for _, val := range v[k] {
			out = append(out, Param{Key: k, Value: val})
		}
	}
	return out
}

// Add returns p with one more parameter appended.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Encode renders p as a query string. See EncodeParams.
func (p Params) Encode() string {
	return EncodeParams(p)
}

// EncodeParams renders params as k1=v1&k2=v2 in order. Values are
// percent-encoded as UTF-8 with space written as %20; keys are written as
// given. No params yield "".
func EncodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(escapeParam(p.Value))
	}
	return b.String()
}

func escapeParam(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// BuildURL appends the encoded params to raw. Nothing is appended, not even
// "?", when params is empty. A fragment in raw stays at the end.
func BuildURL(raw string, params Params) string {
	query := EncodeParams(params)
	if query == "" {
		return raw
	}

	base, fragment := raw, ""
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		base, fragment = raw[:i], raw[i:]
	}

	switch {
	case !strings.Contains(base, "?"):
		base += "?"
	case !strings.HasSuffix(base, "?") && !strings.HasSuffix(base, "&"):
		base += "&"
	}
	return base + query + fragment
}
