// Package jwt provides an auth strategy that signs a short-lived JWT for
// every request with golang-jwt.
//
//	s, err := jwt.New(&jwt.Config{Secret: key, Subject: "svc-a", Audience: []string{"api"}})
//	req, err := httpclient.NewRequest("GET", url, httpclient.WithAuth(s))
package jwt

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Strategy signs a new token on every Header call.
type Strategy struct {
	cfg Config
	now func() time.Time
}

// New validates cfg and returns a signing strategy.
func New(cfg *Config) (*Strategy, error) {
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Strategy{cfg: c, now: time.Now}, nil
}

// Header implements auth.Strategy.
func (s *Strategy) Header() (string, string, error) {
	token, err := s.Sign()
	if err != nil {
		return "", "", err
	}
	if s.cfg.Scheme == "-" {
		return s.cfg.HeaderName, token, nil
	}
	return s.cfg.HeaderName, s.cfg.Scheme + " " + token, nil
}

// Identity implements auth.Identifier. Tokens differ per call, the signer
// configuration does not.
func (s *Strategy) Identity() string {
	return fmt.Sprintf("jwt:%s:%s:%s:%s", s.cfg.Method, s.cfg.Issuer, s.cfg.Subject, strings.Join(s.cfg.Audience, ","))
}

// Sign returns a freshly signed token with a unique jti.
func (s *Strategy) Sign() (string, error) {
	now := s.now()
	claims := gojwt.MapClaims{}
	maps.Copy(claims, s.cfg.Claims)
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["exp"] = now.Add(s.cfg.TTL).Unix()
	claims["jti"] = uuid.NewString()
	if s.cfg.Issuer != "" {
		claims["iss"] = s.cfg.Issuer
	}
	if s.cfg.Subject != "" {
		claims["sub"] = s.cfg.Subject
	}
	switch len(s.cfg.Audience) {
	case 0:
	case 1:
		claims["aud"] = s.cfg.Audience[0]
	default:
		claims["aud"] = s.cfg.Audience
	}

	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString(s.cfg.signKey())
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token signed by this strategy's configuration and
// returns its claims. Servers sharing the key material use it to check
// incoming tokens; tests use it to inspect what was sent.
func (s *Strategy) Verify(tokenString string) (gojwt.MapClaims, error) {
	claims := gojwt.MapClaims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("jwt: invalid token")
	}
	return claims, nil
}

func (s *Strategy) keyFunc(token *gojwt.Token) (interface{}, error) {
	expected := s.cfg.signingMethod()
	if token.Method.Alg() != expected.Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.verifyKey(), nil
}

func (s *Strategy) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience[0]))
	}
	return opts
}
