package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

var (
	ErrMissingToken = errors.New("authorization header missing")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Claims struct {
	UserID    string      `json:"user_id"`
	ProfileID int64       `json:"profile_id"`
	Email     string      `json:"email,omitempty"`
	FullName  string      `json:"fullname,omitempty"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, caller domain.Caller, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:    caller.AuthUserID,
		ProfileID: caller.ProfileID,
		Role:      caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.AuthUserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if caller.Email != nil {
		claims.Email = *caller.Email
	}
	if caller.FullName != nil {
		claims.FullName = *caller.FullName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns the caller it names.
func ParseToken(secret, tokenStr string) (*domain.Caller, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	caller := &domain.Caller{
		AuthUserID: claims.UserID,
		ProfileID:  claims.ProfileID,
		Role:       domain.RoleOperator,
	}
	if claims.Role == domain.RoleAdmin {
		caller.Role = domain.RoleAdmin
	}
	if claims.Email != "" {
		email := claims.Email
		caller.Email = &email
	}
	if claims.FullName != "" {
		name := claims.FullName
		caller.FullName = &name
	}
	return caller, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller *domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func CallerFrom(ctx context.Context) *domain.Caller {
	caller, _ := ctx.Value(callerKey{}).(*domain.Caller)
	return caller
}
