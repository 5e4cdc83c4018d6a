package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verify parses raw the way the jwt middleware does.
func verify(tokens *Tokens, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, tokens.Keyfunc())
	return claims, err
}

func TestIssue(t *testing.T) {
	t.Parallel()
	tokens := NewTokens("super-secret", time.Hour)

	tok, err := tokens.Issue("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.EqualValues(t, 3600, tok.ExpiresIn)

	claims, err := verify(tokens, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, tok.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	t.Parallel()
	tokens := NewTokens("secret", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := tokens.Issue("u1")
	require.NoError(t, err)

	_, err = verify(tokens, tok.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestKeyfuncRejectsWrongSecret(t *testing.T) {
	t.Parallel()
	tok, err := NewTokens("right-secret", time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = verify(NewTokens("wrong-secret", time.Hour), tok.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestKeyfuncRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "mallory",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verify(NewTokens("secret", time.Hour), raw)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))

	BurnCompare("anything")
}

func TestHashPasswordTooLong(t *testing.T) {
	t.Parallel()
	_, err := HashPassword(strings.Repeat("é", 40))
	require.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, ErrPasswordTooLong.Error(), err.Error())
}
