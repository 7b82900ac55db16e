package port

import (
	"context"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

type IdentityProvider interface {
	// Me resolves the caller behind the current credentials
	Me(ctx context.Context) (*domain.Caller, error)
}
