package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when no validation method is set up.
var ErrNotConfigured = errors.New("token validation is not configured")

// Validator checks bearer tokens issued by the identity provider. Tokens are
// verified either against a JWKS endpoint or with a shared HS256 secret.
type Validator struct {
	jwks    keyfunc.Keyfunc
	secret  []byte
	issuer  string
	methods []string
}

// NewValidator builds a Validator. jwksURL and hmacSecret may both be set;
// if neither is, every Validate call fails with ErrNotConfigured.
func NewValidator(jwksURL, hmacSecret, issuer string) (*Validator, error) {
	v := &Validator{issuer: issuer}
	if jwksURL != "" {
		k, err := keyfunc.NewDefault([]string{jwksURL})
		if err != nil {
			return nil, fmt.Errorf("load jwks: %w", err)
		}
		v.jwks = k
		v.methods = append(v.methods, "EdDSA", "RS256", "ES256")
	}
	if hmacSecret != "" {
		v.secret = []byte(hmacSecret)
		v.methods = append(v.methods, "HS256")
	}
	return v, nil
}

// Configured reports whether the validator can accept any token.
func (v *Validator) Configured() bool {
	return v != nil && (v.jwks != nil || v.secret != nil)
}

func (v *Validator) keyFor(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if v.secret == nil {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
	return v.jwks.Keyfunc(token)
}

// Validate parses and verifies tokenString and returns its claims.
func (v *Validator) Validate(tokenString string) (jwt.MapClaims, error) {
	if !v.Configured() {
		return nil, ErrNotConfigured
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods(v.methods), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.Parse(tokenString, v.keyFor, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if UserIDFromClaims(claims) == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// DisplayNameFromClaims returns the first word of the "name" claim, or a fallback.
func DisplayNameFromClaims(claims jwt.MapClaims) string {
	name, _ := claims["name"].(string)
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "Trainer"
	}
	return parts[0]
}

// UserIDFromClaims returns the user id from claims ("sub" or "id").
func UserIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
