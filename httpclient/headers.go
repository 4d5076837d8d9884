package httpclient

import (
	"net/http"
	"sort"
	"strings"

	"github.com/kbukum/fetchkit/version"
)

// HeaderField is a single header name/value pair.
type HeaderField struct {
	Name  string
	Value string
}

type headerEntry struct {
	name   string
	value  string
	absent bool
}

// Headers is an ordered, case-insensitive header map.
//
// Lookups ignore case; the casing of the first inserted name is kept for
// iteration and display. A name may be declared absent with SetAbsent, which
// hides it from every view but still blocks Merge from filling it in.
//
// The zero value is ready to use. Headers is not safe for concurrent mutation.
type Headers struct {
	entries []headerEntry
	index   map[string]int
}

// NewHeaders builds a header map from alternating name/value arguments.
// A trailing name without a value is ignored.
func NewHeaders(kv ...string) *Headers {
	h := &Headers{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

// HeadersFromHTTP converts transport headers. Multiple values for one name are
// joined with ", " and names are inserted in sorted order.
func HeadersFromHTTP(src http.Header) *Headers {
	names := make([]string, 0, len(src))
	for k := range src {
		names = append(names, k)
	}
	sort.Strings(names)

	h := &Headers{}
	for _, k := range names {
		h.Set(k, strings.Join(src[k], ", "))
	}
	return h
}

func (h *Headers) lookup(name string) (int, bool) {
	if h == nil || h.index == nil {
		return 0, false
	}
	i, ok := h.index[strings.ToLower(name)]
	return i, ok
}

func (h *Headers) put(name, value string, absent bool) {
	if i, ok := h.lookup(name); ok {
		h.entries[i].value = value
		h.entries[i].absent = absent
		return
	}
	if h.index == nil {
		h.index = make(map[string]int)
	}
	h.index[strings.ToLower(name)] = len(h.entries)
	h.entries = append(h.entries, headerEntry{name: name, value: value, absent: absent})
}

// Get returns the value for name. Absent names report false.
func (h *Headers) Get(name string) (string, bool) {
	i, ok := h.lookup(name)
	if !ok || h.entries[i].absent {
		return "", false
	}
	return h.entries[i].value, true
}

// Value returns the value for name or "" when missing.
func (h *Headers) Value(name string) string {
	v, _ := h.Get(name)
	return v
}

// Set assigns value to name. An existing entry keeps its original casing.
func (h *Headers) Set(name, value string) {
	h.put(name, value, false)
}

// SetAbsent declares name as explicitly absent.
func (h *Headers) SetAbsent(name string) {
	h.put(name, "", true)
}

// Has reports whether name carries a value.
func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Declared reports whether name was set, including as absent.
func (h *Headers) Declared(name string) bool {
	_, ok := h.lookup(name)
	return ok
}

// IsAbsent reports whether name was declared absent.
func (h *Headers) IsAbsent(name string) bool {
	i, ok := h.lookup(name)
	return ok && h.entries[i].absent
}

// Del removes name entirely, including an absent declaration.
func (h *Headers) Del(name string) {
	i, ok := h.lookup(name)
	if !ok {
		return
	}
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	h.reindex()
}

func (h *Headers) reindex() {
	h.index = make(map[string]int, len(h.entries))
	for i, e := range h.entries {
		h.index[strings.ToLower(e.name)] = i
	}
}

// Len returns the number of names carrying a value.
func (h *Headers) Len() int {
	n := 0
	h.Each(func(string, string) { n++ })
	return n
}

// Keys returns the names carrying a value in insertion order.
func (h *Headers) Keys() []string {
	keys := make([]string, 0, len(h.entriesOrNil()))
	h.Each(func(name, _ string) { keys = append(keys, name) })
	return keys
}

func (h *Headers) entriesOrNil() []headerEntry {
	if h == nil {
		return nil
	}
	return h.entries
}

// Each calls fn for every name carrying a value, in insertion order.
func (h *Headers) Each(fn func(name, value string)) {
	for _, e := range h.entriesOrNil() {
		if !e.absent {
			fn(e.name, e.value)
		}
	}
}

// Filter returns the entries for which keep returns true.
func (h *Headers) Filter(keep func(name, value string) bool) *Headers {
	out := &Headers{}
	h.Each(func(name, value string) {
		if keep(name, value) {
			out.Set(name, value)
		}
	})
	return out
}

// Sorted returns the entries carrying a value ordered by lower-cased name.
func (h *Headers) Sorted() []HeaderField {
	fields := make([]HeaderField, 0, len(h.entriesOrNil()))
	h.Each(func(name, value string) {
		fields = append(fields, HeaderField{Name: name, Value: value})
	})
	sort.SliceStable(fields, func(i, j int) bool {
		return strings.ToLower(fields[i].Name) < strings.ToLower(fields[j].Name)
	})
	return fields
}

// ToMap returns the entries carrying a value keyed by their display name.
func (h *Headers) ToMap() map[string]string {
	m := make(map[string]string, len(h.entriesOrNil()))
	h.Each(func(name, value string) { m[name] = value })
	return m
}

// ToHTTP converts the entries carrying a value into transport headers.
func (h *Headers) ToHTTP() http.Header {
	out := make(http.Header, len(h.entriesOrNil()))
	h.Each(func(name, value string) { out.Set(name, value) })
	return out
}

// Clone returns an independent copy, absent declarations included.
func (h *Headers) Clone() *Headers {
	out := &Headers{}
	for _, e := range h.entriesOrNil() {
		out.put(e.name, e.value, e.absent)
	}
	return out
}

// Merge copies every entry of defaults whose name is not declared in h.
func (h *Headers) Merge(defaults *Headers) {
	for _, e := range defaults.entriesOrNil() {
		if !h.Declared(e.name) {
			h.put(e.name, e.value, e.absent)
		}
	}
}

// Compact drops absent declarations.
func (h *Headers) Compact() *Headers {
	return h.Filter(func(string, string) bool { return true })
}

// String renders the entries carrying a value in insertion order.
func (h *Headers) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	h.Each(func(name, value string) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
	})
	b.WriteByte('}')
	return b.String()
}

// Header names used by the engine.
const (
	HeaderAccept          = "Accept"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentType     = "Content-Type"
	HeaderContentEncoding = "Content-Encoding"
	HeaderLocation        = "Location"
	HeaderUserAgent       = "User-Agent"
)

// Content types set by the payload defaults.
const (
	ContentTypeText = "text/plain"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// DefaultHeaders returns the headers sent with every request unless overridden.
func DefaultHeaders() *Headers {
	return NewHeaders(
		HeaderAccept, "*/*",
		HeaderAcceptEncoding, "gzip, deflate",
		HeaderUserAgent, version.UserAgent(),
	)
}

// DefaultDataHeaders returns the defaults for a raw data payload.
func DefaultDataHeaders() *Headers {
	return NewHeaders(HeaderContentType, ContentTypeText)
}

// DefaultFormHeaders returns the defaults for a form payload.
func DefaultFormHeaders() *Headers {
	return NewHeaders(HeaderContentType, ContentTypeForm)
}

// DefaultJSONHeaders returns the defaults for a JSON payload.
func DefaultJSONHeaders() *Headers {
	return NewHeaders(HeaderContentType, ContentTypeJSON)
}
