package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"quizhub-backend/internal/models"
)

func TestJWTAuth_IssueAndVerify(t *testing.T) {
	j := NewJWTAuth("test-secret")
	in := models.Identity{Subject: "sub-1", Email: "a@example.com", Name: "A", Picture: "http://p"}

	token, err := j.IssueToken(in)
	require.NoError(t, err)

	out, err := j.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, in, *out)
}

func TestJWTAuth_Rejects(t *testing.T) {
	j := NewJWTAuth("test-secret")

	other, err := NewJWTAuth("other-secret").IssueToken(models.Identity{Subject: "s"})
	require.NoError(t, err)

	expiredIssuer := NewJWTAuth("test-secret")
	expiredIssuer.TTL = -time.Minute
	expired, err := expiredIssuer.IssueToken(models.Identity{Subject: "s"})
	require.NoError(t, err)

	noSubject, err := j.IssueToken(models.Identity{Email: "x@example.com"})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "s",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "s"}).SignedString(j.Secret)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": other,
		"expired":      expired,
		"no subject":   noSubject,
		"alg none":     unsigned,
		"no expiry":    noExpiry,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := j.Verify(context.Background(), token)
			require.Error(t, err)
		})
	}
}
