package remote

import (
	"context"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/stock-pos/internal/adapter/rpc"
	"github.com/rl1809/stock-pos/internal/core/domain"
)

// GRPCClient is the gRPC transport to the inventory service. It implements
// port.InventoryService and port.IdentityProvider like HTTPClient.
type GRPCClient struct {
	client *rpc.InventoryClient
	token  string
}

func NewGRPCClient(cc grpc.ClientConnInterface, token string) *GRPCClient {
	return &GRPCClient{
		client: rpc.NewInventoryClient(cc),
		token:  token,
	}
}

func (c *GRPCClient) ListItems(ctx context.Context) ([]domain.Item, error) {
	resp, err := c.client.ListItems(c.outgoing(ctx))
	if err != nil {
		return nil, fromStatus(err)
	}
	if resp.Data == nil {
		return []domain.Item{}, nil
	}
	return resp.Data, nil
}

func (c *GRPCClient) GetBalance(ctx context.Context, itemID int64) (domain.StockBalance, error) {
	resp, err := c.client.GetBalance(c.outgoing(ctx), &rpc.ItemRef{ItemID: itemID})
	if err != nil {
		return domain.StockBalance{}, fromStatus(err)
	}
	return *resp, nil
}

func (c *GRPCClient) CreateSale(ctx context.Context, sale domain.Sale) error {
	_, err := c.client.CreateSale(c.outgoing(ctx), &sale)
	return fromStatus(err)
}

func (c *GRPCClient) ApplyStockMovement(ctx context.Context, movement domain.StockMovement) error {
	_, err := c.client.ApplyStockMovement(c.outgoing(ctx), &movement)
	return fromStatus(err)
}

func (c *GRPCClient) CreateItem(ctx context.Context, item domain.NewItem) (domain.Item, error) {
	resp, err := c.client.CreateItem(c.outgoing(ctx), &item)
	if err != nil {
		return domain.Item{}, fromStatus(err)
	}
	return resp.Data, nil
}

func (c *GRPCClient) Me(ctx context.Context) (*domain.Caller, error) {
	resp, err := c.client.Me(c.outgoing(ctx))
	if err != nil {
		return nil, fromStatus(err)
	}
	if resp.Data == nil {
		return nil, domain.NewRemoteError(http.StatusUnauthorized, "identity not available")
	}
	return resp.Data, nil
}

func (c *GRPCClient) outgoing(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

var codeToHTTP = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.FailedPrecondition: http.StatusConflict,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
}

// fromStatus turns a gRPC status into the same RemoteError the HTTP
// transport produces, keeping the server's message.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return domain.NewTransportError(err)
	}
	code, known := codeToHTTP[st.Code()]
	if !known {
		code = http.StatusBadGateway
	}
	return domain.NewRemoteError(code, st.Message())
}
