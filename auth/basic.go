package auth

// BasicAuth authenticates with a user name and password.
type BasicAuth struct {
	Username string
	Password string
}

// Basic returns an HTTP Basic strategy.
func Basic(username, password string) *BasicAuth {
	return &BasicAuth{Username: username, Password: password}
}

// Header implements Strategy. It never fails.
func (b *BasicAuth) Header() (string, string, error) {
	return HeaderAuthorization, b.Value(), nil
}

// Value returns "Basic " followed by base64(username:password).
func (b *BasicAuth) Value() string {
	return "Basic " + EncodeBase64([]byte(b.Username+":"+b.Password))
}

// Identity implements Identifier.
func (b *BasicAuth) Identity() string {
	return "basic:" + b.Value()
}
