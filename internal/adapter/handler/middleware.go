package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rl1809/stock-pos/internal/adapter/auth"
	"github.com/rl1809/stock-pos/internal/core/domain"
)

const (
	ctxRequestIDKey = "request_id"
	ctxCallerKey    = "caller"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set(ctxRequestIDKey, requestID)
		c.Next()
	}
}

// JWTMiddleware rejects requests without a valid bearer token and stores
// the caller it names on the context.
func JWTMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Message: err.Error()})
			return
		}

		caller, err := auth.ParseToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Message: err.Error()})
			return
		}

		c.Set(ctxCallerKey, caller)
		c.Request = c.Request.WithContext(auth.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

func callerFrom(c *gin.Context) *domain.Caller {
	v, ok := c.Get(ctxCallerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*domain.Caller)
	return caller
}

func getRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestIDKey)
}
