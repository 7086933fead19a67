package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/duka-pos/internal/presentation/http/dto/response"
)

// CartHandler exposes the in-memory carts of the signed-in owner
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Open starts an empty cart
func (h *CartHandler) Open(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	v, err := h.cartService.Open(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cart opened", response.NewCartResponse(v))
}

// List returns the IDs of the owner's open carts, most recently used last
func (h *CartHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	response.OK(c, "Carts retrieved successfully", gin.H{
		"carts": h.cartService.List(c.Request.Context(), userID),
	})
}

// Get returns a cart with live stock figures
func (h *CartHandler) Get(c *gin.Context) {
	h.view(c, "Cart retrieved successfully", h.cartService.Get)
}

// Refresh re-reads stock for every line, clamping quantities that no longer fit
func (h *CartHandler) Refresh(c *gin.Context) {
	h.view(c, "Cart refreshed", h.cartService.Refresh)
}

// Discard drops a cart without committing it
func (h *CartHandler) Discard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := pathID(c, "id", "cart")
	if !ok {
		return
	}

	if err := h.cartService.Discard(c.Request.Context(), userID, cartID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart discarded", nil)
}

// AddItem adds units of a product, capped at available stock
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := pathID(c, "id", "cart")
	if !ok {
		return
	}

	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	v, err := h.cartService.Add(c.Request.Context(), userID, cartID, req.ProductID, qty)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", response.NewCartResponse(v))
}

// SetItem sets the quantity of a line. Zero or less removes it.
func (h *CartHandler) SetItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := pathID(c, "id", "cart")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product")
	if !ok {
		return
	}

	var req request.SetCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	v, err := h.cartService.SetQuantity(c.Request.Context(), userID, cartID, productID, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", response.NewCartResponse(v))
}

// IncrementItem adds one unit of a line
func (h *CartHandler) IncrementItem(c *gin.Context) {
	h.lineOp(c, h.cartService.Increment)
}

// DecrementItem removes one unit of a line
func (h *CartHandler) DecrementItem(c *gin.Context) {
	h.lineOp(c, h.cartService.Decrement)
}

// RemoveItem drops a line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.lineOp(c, h.cartService.Remove)
}

// RequestClear asks for confirmation before emptying the cart
func (h *CartHandler) RequestClear(c *gin.Context) {
	h.view(c, "Clear requested", h.cartService.RequestClear)
}

// ConfirmClear empties the cart after a pending clear request
func (h *CartHandler) ConfirmClear(c *gin.Context) {
	h.view(c, "Cart cleared", h.cartService.ConfirmClear)
}

// CancelClear withdraws a pending clear request
func (h *CartHandler) CancelClear(c *gin.Context) {
	h.view(c, "Clear cancelled", h.cartService.CancelClear)
}

// Checkout commits the cart as a sale. A sale whose receipt could not be
// rendered is still a 201; the response carries the receipt error.
func (h *CartHandler) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := pathID(c, "id", "cart")
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	result, err := h.cartService.Checkout(c.Request.Context(), userID, cartID, enum.PaymentType(req.PaymentType))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Sale completed"
	if result.Degraded() {
		message = "Sale completed without receipt"
	}
	response.Created(c, message, response.NewCheckoutResponse(result))
}

type cartFunc func(ctx context.Context, userID, cartID uuid.UUID) (*service.CartView, error)

type lineFunc func(ctx context.Context, userID, cartID, productID uuid.UUID) (*service.CartView, error)

func (h *CartHandler) view(c *gin.Context, message string, op cartFunc) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := pathID(c, "id", "cart")
	if !ok {
		return
	}

	v, err := op(c.Request.Context(), userID, cartID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, response.NewCartResponse(v))
}

func (h *CartHandler) lineOp(c *gin.Context, op lineFunc) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	cartID, ok := pathID(c, "id", "cart")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product")
	if !ok {
		return
	}

	v, err := op(c.Request.Context(), userID, cartID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", response.NewCartResponse(v))
}
