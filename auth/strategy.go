package auth

import "fmt"

// HeaderAuthorization is the header most strategies write.
const HeaderAuthorization = "Authorization"

// Strategy produces the single header pair that authenticates a request.
type Strategy interface {
	Header() (name, value string, err error)
}

// Identifier is implemented by strategies whose identity is stable across
// calls. The identity feeds a request's change key; it is never sent.
type Identifier interface {
	Identity() string
}

// Func adapts an ordinary function to the Strategy interface.
type Func func() (name, value string, err error)

// Header implements Strategy.
func (f Func) Header() (string, string, error) {
	return f()
}

// Identity returns a string describing s for change detection. Strategies
// without a stable identity are identified by their type and address.
func Identity(s Strategy) string {
	if s == nil {
		return ""
	}
	if id, ok := s.(Identifier); ok {
		return id.Identity()
	}
	return fmt.Sprintf("%T@%p", s, s)
}
