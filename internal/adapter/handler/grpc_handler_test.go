package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/stock-pos/internal/adapter/remote"
	"github.com/rl1809/stock-pos/internal/adapter/rpc"
	"github.com/rl1809/stock-pos/internal/core/domain"
	"github.com/rl1809/stock-pos/internal/core/ledger"
)

func dialInventory(t *testing.T, l *mockLedger, token string) *remote.GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(AuthInterceptor(testSecret)))
	rpc.RegisterInventoryServer(srv, NewGRPCHandler(l))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return remote.NewGRPCClient(conn, token)
}

func TestGRPC_ListItemsAndBalance(t *testing.T) {
	l := stockedLedger(shelf, map[int64]int{1: 3})
	client := dialInventory(t, l, tokenFor(t, clerk))
	ctx := context.Background()

	items, err := client.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Coffee", items[0].Name)
	assert.True(t, items[0].Price.Decimal.Equal(decimal.NewFromInt(10)))

	bal, err := client.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, bal.Balance)
}

func TestGRPC_Me(t *testing.T) {
	client := dialInventory(t, &mockLedger{}, tokenFor(t, admin))

	caller, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-9", caller.AuthUserID)
	assert.True(t, caller.IsAdmin())
}

func TestGRPC_Unauthenticated(t *testing.T) {
	client := dialInventory(t, &mockLedger{}, "")

	_, err := client.ListItems(context.Background())
	var remoteErr *domain.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusUnauthorized, remoteErr.Status)
}

func TestGRPC_CreateSaleMapsErrors(t *testing.T) {
	l := &mockLedger{}
	l.On("RecordSale", mock.Anything, byUser("u-1"), mock.Anything).
		Return(domain.Sale{}, &ledger.InsufficientStockError{ItemID: 4, Requested: 2, Available: 1})
	client := dialInventory(t, l, tokenFor(t, clerk))

	err := client.CreateSale(context.Background(), domain.Sale{
		Seller: "u-1",
		Lines:  []domain.SaleLine{{ItemID: 4, Amount: 2, Price: decimal.NewFromInt(1)}},
	})

	var remoteErr *domain.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusConflict, remoteErr.Status)
	assert.Equal(t, "insufficient stock for item 4: requested 2, available 1", remoteErr.Message)
}

func TestGRPC_ApplyStockMovement(t *testing.T) {
	l := &mockLedger{}
	l.On("ApplyMovement", mock.Anything, byUser("u-9"), mock.Anything).
		Return(domain.StockBalance{ItemID: 1, Balance: 0}, nil).Once()
	client := dialInventory(t, l, tokenFor(t, admin))

	err := client.ApplyStockMovement(context.Background(), domain.StockMovement{ItemID: 1, Qty: -2})
	require.NoError(t, err)
	l.AssertExpectations(t)
}
