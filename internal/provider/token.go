package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned when the RPC bearer token is a JWT past its expiry
var ErrTokenExpired = errors.New("rpc token is expired")

// CheckToken rejects an expired JWT bearer token without contacting the server.
// Tokens that are not JWTs, or carry no exp claim, are accepted as-is.
func CheckToken(token string) error {
	if token == "" {
		return nil
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// Opaque API key
		return nil
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	if time.Now().After(exp.Time) {
		return fmt.Errorf("%w (expired at %s)", ErrTokenExpired, exp.Time.UTC().Format(time.RFC3339))
	}
	return nil
}
