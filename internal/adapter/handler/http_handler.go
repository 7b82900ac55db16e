package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

// Ledger is the inventory-side service the HTTP and gRPC handlers serve.
type Ledger interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	Balance(ctx context.Context, itemID int64) (domain.StockBalance, error)
	RecordSale(ctx context.Context, caller *domain.Caller, sale domain.Sale) (domain.Sale, error)
	ApplyMovement(ctx context.Context, caller *domain.Caller, mv domain.StockMovement) (domain.StockBalance, error)
	CreateItem(ctx context.Context, caller *domain.Caller, item domain.NewItem) (domain.Item, error)
}

// HTTPHandler serves the inventory service JSON API consumed by terminals.
type HTTPHandler struct {
	ledger    Ledger
	jwtSecret string
}

func NewHTTPHandler(ledger Ledger, jwtSecret string) *HTTPHandler {
	return &HTTPHandler{ledger: ledger, jwtSecret: jwtSecret}
}

func (h *HTTPHandler) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.Use(JWTMiddleware(h.jwtSecret))
	{
		api.GET("/me", h.me)
		api.GET("/items", h.listItems)
		api.POST("/items", h.createItem)
		api.GET("/stock/:id", h.getBalance)
		api.POST("/stock", h.applyMovement)
		api.POST("/selling", h.createSale)
	}
	return r
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": callerFrom(c)})
}

func (h *HTTPHandler) listItems(c *gin.Context) {
	items, err := h.ledger.ListItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *HTTPHandler) createItem(c *gin.Context) {
	var req domain.NewItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	item, err := h.ledger.CreateItem(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (h *HTTPHandler) getBalance(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid item id"})
		return
	}

	bal, err := h.ledger.Balance(c.Request.Context(), itemID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

func (h *HTTPHandler) applyMovement(c *gin.Context) {
	var req domain.StockMovement
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	bal, err := h.ledger.ApplyMovement(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "movement recorded", "balance": bal.Balance})
}

func (h *HTTPHandler) createSale(c *gin.Context) {
	var req domain.Sale
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	sale, err := h.ledger.RecordSale(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "sale accepted", "requestId": sale.RequestID})
}
