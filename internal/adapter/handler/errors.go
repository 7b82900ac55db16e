package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/core/ledger"
	"github.com/rl1809/stock-pos/internal/core/service"
)

// Response is the envelope of every non-data reply. Clients read Message
// as the human-readable failure text.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorMapping struct {
	target error
	status int
	code   codes.Code
}

var errorMappings = []errorMapping{
	{ledger.ErrInvalidRequest, http.StatusBadRequest, codes.InvalidArgument},
	{ledger.ErrUnauthorized, http.StatusUnauthorized, codes.Unauthenticated},
	{ledger.ErrForbidden, http.StatusForbidden, codes.PermissionDenied},
	{ledger.ErrItemNotFound, http.StatusNotFound, codes.NotFound},
	{ledger.ErrDuplicateRequest, http.StatusConflict, codes.AlreadyExists},
	{ledger.ErrInsufficientStock, http.StatusConflict, codes.FailedPrecondition},
	{ledger.ErrClosed, http.StatusServiceUnavailable, codes.Unavailable},

	{service.ErrInvalidDelta, http.StatusBadRequest, codes.InvalidArgument},
	{service.ErrUnauthorized, http.StatusUnauthorized, codes.Unauthenticated},
	{service.ErrForbidden, http.StatusForbidden, codes.PermissionDenied},
	{service.ErrItemNotFound, http.StatusNotFound, codes.NotFound},
	{service.ErrLineNotFound, http.StatusNotFound, codes.NotFound},
	{service.ErrInsufficientStock, http.StatusConflict, codes.FailedPrecondition},
	{service.ErrEmptyCart, http.StatusConflict, codes.FailedPrecondition},
	{service.ErrStaleLoad, http.StatusConflict, codes.Aborted},
}

// classify returns the HTTP status, gRPC code and public message for err.
// Unknown errors are reported as internal without their text.
func classify(err error) (int, codes.Code, string) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, codes.InvalidArgument, validation.Error()
	}

	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		return http.StatusBadGateway, codes.Unavailable, remote.Message
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, err.Error()
		}
	}
	return http.StatusInternalServerError, codes.Internal, "internal error"
}

func writeError(c *gin.Context, err error, extra ...gin.H) {
	httpStatus, _, message := classify(err)
	if httpStatus == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", getRequestID(c)).Msg("internal server error")
	}

	body := gin.H{"success": false, "message": message}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(httpStatus, body)
}

func toStatus(err error) error {
	_, code, message := classify(err)
	if code == codes.Internal {
		log.Error().Err(err).Msg("internal rpc error")
	}
	return status.Error(code, message)
}
