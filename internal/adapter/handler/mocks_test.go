package handler

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stock-pos/internal/adapter/auth"
	"github.com/rl1809/stock-pos/internal/core/domain"
)

const testSecret = "handler-test-secret-0123"

func init() {
	gin.SetMode(gin.TestMode)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) ListItems(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *mockLedger) Balance(ctx context.Context, itemID int64) (domain.StockBalance, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.StockBalance), args.Error(1)
}

func (m *mockLedger) RecordSale(ctx context.Context, caller *domain.Caller, sale domain.Sale) (domain.Sale, error) {
	args := m.Called(ctx, caller, sale)
	return args.Get(0).(domain.Sale), args.Error(1)
}

func (m *mockLedger) ApplyMovement(ctx context.Context, caller *domain.Caller, mv domain.StockMovement) (domain.StockBalance, error) {
	args := m.Called(ctx, caller, mv)
	return args.Get(0).(domain.StockBalance), args.Error(1)
}

func (m *mockLedger) CreateItem(ctx context.Context, caller *domain.Caller, item domain.NewItem) (domain.Item, error) {
	args := m.Called(ctx, caller, item)
	return args.Get(0).(domain.Item), args.Error(1)
}

var (
	clerk = domain.Caller{AuthUserID: "u-1", ProfileID: 1, Role: domain.RoleOperator}
	admin = domain.Caller{AuthUserID: "u-9", ProfileID: 9, Role: domain.RoleAdmin}
)

func tokenFor(t *testing.T, caller domain.Caller) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, caller, time.Hour)
	require.NoError(t, err)
	return tok
}

func byUser(id string) any {
	return mock.MatchedBy(func(c *domain.Caller) bool { return c != nil && c.AuthUserID == id })
}
