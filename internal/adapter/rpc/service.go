package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

const ServiceName = "stockpos.v1.Inventory"

type Empty struct{}

type ItemRef struct {
	ItemID int64 `json:"item"`
}

type ItemList struct {
	Data []domain.Item `json:"data"`
}

type ItemReply struct {
	Data domain.Item `json:"data"`
}

type CallerReply struct {
	Data *domain.Caller `json:"data"`
}

type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// InventoryServer is implemented by the gRPC handler of the inventory service.
type InventoryServer interface {
	ListItems(ctx context.Context, req *Empty) (*ItemList, error)
	GetBalance(ctx context.Context, req *ItemRef) (*domain.StockBalance, error)
	CreateSale(ctx context.Context, req *domain.Sale) (*Ack, error)
	ApplyStockMovement(ctx context.Context, req *domain.StockMovement) (*Ack, error)
	CreateItem(ctx context.Context, req *domain.NewItem) (*ItemReply, error)
	Me(ctx context.Context, req *Empty) (*CallerReply, error)
}

func method(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(InventoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(InventoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(InventoryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListItems", InventoryServer.ListItems),
		unary("GetBalance", InventoryServer.GetBalance),
		unary("CreateSale", InventoryServer.CreateSale),
		unary("ApplyStockMovement", InventoryServer.ApplyStockMovement),
		unary("CreateItem", InventoryServer.CreateItem),
		unary("Me", InventoryServer.Me),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockpos/v1/inventory",
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&serviceDesc, srv)
}

// InventoryClient is the client side of the service. Calls use the JSON
// codec regardless of the connection defaults.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method(name), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) ListItems(ctx context.Context, opts ...grpc.CallOption) (*ItemList, error) {
	return invoke[ItemList](ctx, c.cc, "ListItems", &Empty{}, opts...)
}

func (c *InventoryClient) GetBalance(ctx context.Context, req *ItemRef, opts ...grpc.CallOption) (*domain.StockBalance, error) {
	return invoke[domain.StockBalance](ctx, c.cc, "GetBalance", req, opts...)
}

func (c *InventoryClient) CreateSale(ctx context.Context, req *domain.Sale, opts ...grpc.CallOption) (*Ack, error) {
	return invoke[Ack](ctx, c.cc, "CreateSale", req, opts...)
}

func (c *InventoryClient) ApplyStockMovement(ctx context.Context, req *domain.StockMovement, opts ...grpc.CallOption) (*Ack, error) {
	return invoke[Ack](ctx, c.cc, "ApplyStockMovement", req, opts...)
}

func (c *InventoryClient) CreateItem(ctx context.Context, req *domain.NewItem, opts ...grpc.CallOption) (*ItemReply, error) {
	return invoke[ItemReply](ctx, c.cc, "CreateItem", req, opts...)
}

func (c *InventoryClient) Me(ctx context.Context, opts ...grpc.CallOption) (*CallerReply, error) {
	return invoke[CallerReply](ctx, c.cc, "Me", &Empty{}, opts...)
}
