package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/stock-pos/internal/adapter/auth"
	"github.com/rl1809/stock-pos/internal/adapter/rpc"
	"github.com/rl1809/stock-pos/internal/core/domain"
)

type GRPCHandler struct {
	ledger Ledger
}

func NewGRPCHandler(ledger Ledger) *GRPCHandler {
	return &GRPCHandler{ledger: ledger}
}

// AuthInterceptor resolves the bearer token in the "authorization"
// metadata into a caller on the request context.
func AuthInterceptor(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				header = vals[0]
			}
		}

		token, err := auth.BearerToken(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		caller, err := auth.ParseToken(secret, token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return next(auth.WithCaller(ctx, caller), req)
	}
}

func (h *GRPCHandler) ListItems(ctx context.Context, _ *rpc.Empty) (*rpc.ItemList, error) {
	items, err := h.ledger.ListItems(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ItemList{Data: items}, nil
}

func (h *GRPCHandler) GetBalance(ctx context.Context, req *rpc.ItemRef) (*domain.StockBalance, error) {
	bal, err := h.ledger.Balance(ctx, req.ItemID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &bal, nil
}

func (h *GRPCHandler) CreateSale(ctx context.Context, req *domain.Sale) (*rpc.Ack, error) {
	if _, err := h.ledger.RecordSale(ctx, auth.CallerFrom(ctx), *req); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.Ack{Success: true, Message: "sale accepted"}, nil
}

func (h *GRPCHandler) ApplyStockMovement(ctx context.Context, req *domain.StockMovement) (*rpc.Ack, error) {
	if _, err := h.ledger.ApplyMovement(ctx, auth.CallerFrom(ctx), *req); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.Ack{Success: true, Message: "movement recorded"}, nil
}

func (h *GRPCHandler) CreateItem(ctx context.Context, req *domain.NewItem) (*rpc.ItemReply, error) {
	item, err := h.ledger.CreateItem(ctx, auth.CallerFrom(ctx), *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ItemReply{Data: item}, nil
}

func (h *GRPCHandler) Me(ctx context.Context, _ *rpc.Empty) (*rpc.CallerReply, error) {
	return &rpc.CallerReply{Data: auth.CallerFrom(ctx)}, nil
}
