package auth

// DefaultAPIKeyHeader is the header used by APIKey when none is given.
const DefaultAPIKeyHeader = "X-API-Key"

// TokenAuth sends a fixed credential in a single header.
type TokenAuth struct {
	Name  string
	Value string
}

// Bearer returns a strategy sending "Authorization: Bearer <token>".
func Bearer(token string) *TokenAuth {
	return &TokenAuth{Name: HeaderAuthorization, Value: "Bearer " + token}
}

// APIKey returns a strategy sending key in the named header. An empty
// name uses X-API-Key.
func APIKey(name, key string) *TokenAuth {
	if name == "" {
		name = DefaultAPIKeyHeader
	}
	return &TokenAuth{Name: name, Value: key}
}

// Header implements Strategy.
func (t *TokenAuth) Header() (string, string, error) {
	return t.Name, t.Value, nil
}

// Identity implements Identifier.
func (t *TokenAuth) Identity() string {
	return "token:" + t.Name + ":" + t.Value
}
