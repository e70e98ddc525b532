package provider

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestCheckToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		expired bool
	}{
		{"empty", "", false},
		{"opaque", "3f1c0e2b-api-key", false},
		{"jwt without exp", signToken(t, jwt.MapClaims{"sub": "client"}), false},
		{"jwt valid", signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), false},
		{"jwt expired", signToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckToken(tt.token)
			if tt.expired {
				require.ErrorIs(t, err, ErrTokenExpired)
				return
			}
			require.NoError(t, err)
		})
	}
}
