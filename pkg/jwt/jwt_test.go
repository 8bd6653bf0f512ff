package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
)

func TestService_IssueAndParse(t *testing.T) {
	svc, err := jwt.New("test-secret", "ayo-portal", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue("user-123", "admin")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "ayo-portal", claims.Issuer)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestService_RejectsTamperedToken(t *testing.T) {
	svc, err := jwt.New("test-secret", "ayo-portal", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue("user-123", "member")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.Parse(tampered)
	assert.ErrorIs(t, err, jwt.ErrInvalidSignature)
}

func TestService_RejectsWrongKey(t *testing.T) {
	issuer, err := jwt.New("secret-a", "ayo-portal", time.Hour)
	require.NoError(t, err)
	verifier, err := jwt.New("secret-b", "ayo-portal", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("user-123", "member")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidSignature)
}

func TestService_RejectsExpiredToken(t *testing.T) {
	svc, err := jwt.New("test-secret", "ayo-portal", -time.Minute)
	require.NoError(t, err)

	token, err := svc.Issue("user-123", "member")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestService_RejectsMalformedToken(t *testing.T) {
	svc, err := jwt.New("test-secret", "ayo-portal", time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "a.b", "not a token at all", "a.b.c.d"} {
		_, err := svc.Parse(token)
		assert.Error(t, err, "token %q should not parse", token)
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := jwt.New("", "ayo-portal", time.Hour)
	assert.ErrorIs(t, err, jwt.ErrMissingSecret)
}
