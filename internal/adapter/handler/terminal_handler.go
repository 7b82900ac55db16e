package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-pos/internal/core/service"
)

// TerminalHandler exposes one operator session over HTTP: catalog, cart,
// checkout and stock movements.
type TerminalHandler struct {
	session *service.Session
}

func NewTerminalHandler(session *service.Session) *TerminalHandler {
	return &TerminalHandler{session: session}
}

type addLineRequest struct {
	ItemID int64 `json:"itemId" binding:"required"`
}

type updateLineRequest struct {
	Qty   *float64         `json:"qty"`
	Price *decimal.Decimal `json:"price"`
}

type movementRequest struct {
	ItemID int64    `json:"itemId" binding:"required"`
	Delta  *float64 `json:"delta" binding:"required"`
	Note   string   `json:"note"`
}

type createItemRequest struct {
	Name  string `json:"itemName"`
	Price string `json:"price"`
}

func (h *TerminalHandler) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/health", h.healthCheck)

	api := r.Group("/api")
	{
		api.POST("/session/refresh", h.refresh)
		api.GET("/me", h.me)
		api.GET("/catalog", h.catalog)
		api.GET("/dashboard", h.dashboard)

		api.GET("/cart", h.cart)
		api.DELETE("/cart", h.clearCart)
		api.POST("/cart/items", h.addLine)
		api.PATCH("/cart/items/:id", h.updateLine)
		api.DELETE("/cart/items/:id", h.removeLine)
		api.POST("/cart/finalize", h.finalize)

		api.POST("/movements", h.applyMovement)
		api.POST("/items", h.createItem)
	}
	return r
}

func (h *TerminalHandler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "catalogLoaded": h.session.Catalog("").Loaded})
}

func (h *TerminalHandler) refresh(c *gin.Context) {
	h.session.ResolveIdentity(c.Request.Context())
	if err := h.session.Refresh(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Catalog(""))
}

func (h *TerminalHandler) me(c *gin.Context) {
	caller := h.session.Caller()
	if caller == nil {
		writeError(c, service.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": caller, "displayName": caller.DisplayName()})
}

func (h *TerminalHandler) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Catalog(c.Query("q")))
}

func (h *TerminalHandler) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Dashboard())
}

func (h *TerminalHandler) cart(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Cart())
}

func (h *TerminalHandler) clearCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.ClearCart())
}

func (h *TerminalHandler) addLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	view, err := h.session.AddToCart(req.ItemID)
	if err != nil {
		writeError(c, err, gin.H{"cart": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TerminalHandler) updateLine(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	view, err := h.session.UpdateLine(itemID, req.Qty, req.Price)
	if err != nil {
		writeError(c, err, gin.H{"cart": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TerminalHandler) removeLine(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.session.RemoveLine(itemID))
}

func (h *TerminalHandler) finalize(c *gin.Context) {
	sale, err := h.session.Finalize(c.Request.Context())
	if err != nil {
		writeError(c, err, gin.H{"cart": h.session.Cart()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": service.SaleRegisteredMessage,
		"sale":    sale,
		"total":   sale.Total(),
		"cart":    h.session.Cart(),
	})
}

func (h *TerminalHandler) applyMovement(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	balance, err := h.session.ApplyMovement(c.Request.Context(), req.ItemID, *req.Delta, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "movement recorded", "balance": balance})
}

func (h *TerminalHandler) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	item, err := h.session.CreateItem(c.Request.Context(), req.Name, req.Price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Message: "invalid item id"})
		return 0, false
	}
	return id, true
}
