package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

const testSecret = "0123456789abcdef0123"

func TestGenerateAndParseToken(t *testing.T) {
	name := "Maria"
	token, err := GenerateToken(testSecret, domain.Caller{
		AuthUserID: "u-1",
		ProfileID:  4,
		FullName:   &name,
		Role:       domain.RoleAdmin,
	}, time.Hour)
	require.NoError(t, err)

	caller, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", caller.AuthUserID)
	assert.Equal(t, int64(4), caller.ProfileID)
	assert.Equal(t, domain.RoleAdmin, caller.Role)
	assert.Equal(t, "Maria", caller.DisplayName())
	assert.Nil(t, caller.Email)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(testSecret, domain.Caller{AuthUserID: "u-1"}, -time.Minute)
	require.NoError(t, err)

	otherKey, err := GenerateToken("another-secret-value", domain.Caller{AuthUserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{"expired": expired, "wrong key": otherKey, "alg none": unsigned, "garbage": "abc"} {
		_, err := ParseToken(testSecret, tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestParseToken_UnknownRoleIsOperator(t *testing.T) {
	token, err := GenerateToken(testSecret, domain.Caller{AuthUserID: "u-2", Role: "superuser"}, time.Hour)
	require.NoError(t, err)

	caller, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, caller.Role)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = BearerToken("bearer  xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = BearerToken("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCallerContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, CallerFrom(ctx))

	caller := &domain.Caller{AuthUserID: "u-1"}
	assert.Same(t, caller, CallerFrom(WithCaller(ctx, caller)))
}
