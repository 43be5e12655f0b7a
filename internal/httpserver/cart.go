package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	devicesvc "storefront/internal/service/device"

	"github.com/gin-gonic/gin"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type deviceCartRequest struct {
	Cart      domain.Cart `json:"cart"`
	ProductID string      `json:"productId"`
	Quantity  *int        `json:"quantity"`
}

type deviceCartResponse struct {
	Cart domain.Cart      `json:"cart"`
	View *domain.CartView `json:"view"`
}

type syncRequest struct {
	Items      []domain.CartLine `json:"items"`
	MergeToken string            `json:"mergeToken"`
}

type syncResponse struct {
	Applied    bool               `json:"applied"`
	Cart       *domain.CartView   `json:"cart"`
	DeviceCart domain.Cart        `json:"deviceCart"`
	Session    *deviceSessionBody `json:"session,omitempty"`
}

type deviceSessionBody struct {
	DeviceID  string `json:"deviceId"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

func quantityOr(q *int, def int) int {
	if q == nil {
		return def
	}
	return *q
}

func (h *handlers) account(c *gin.Context) (*cartsvc.AccountBackend, bool) {
	b, err := h.deps.CartSvc.Account(customerID(c))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return b, true
}

func (h *handlers) respondCart(c *gin.Context, status int, b cartsvc.Backend) {
	view, err := h.deps.CartSvc.View(c.Request.Context(), b)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, view)
}

func (h *handlers) getCart(c *gin.Context) {
	b, ok := h.account(c)
	if !ok {
		return
	}
	h.respondCart(c, http.StatusOK, b)
}

func (h *handlers) clearCart(c *gin.Context) {
	b, ok := h.account(c)
	if !ok {
		return
	}
	if err := h.deps.CartSvc.Clear(c.Request.Context(), b); err != nil {
		h.writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, b)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	b, ok := h.account(c)
	if !ok {
		return
	}
	if err := h.deps.CartSvc.Add(c.Request.Context(), b, req.ProductID, quantityOr(req.Quantity, 1)); err != nil {
		h.writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, b)
}

func (h *handlers) setCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Quantity == nil {
		h.writeError(c, domain.Validation("quantity is required"))
		return
	}
	b, ok := h.account(c)
	if !ok {
		return
	}
	if err := h.deps.CartSvc.SetQuantity(c.Request.Context(), b, c.Param("productId"), *req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, b)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	b, ok := h.account(c)
	if !ok {
		return
	}
	if err := h.deps.CartSvc.Remove(c.Request.Context(), b, c.Param("productId")); err != nil {
		h.writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, b)
}

// syncCart merges a device cart into the caller's account cart. The merge
// token is taken from the body, or else from the device session, which is
// rotated once the merge lands.
func (h *handlers) syncCart(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	deviceToken := c.GetHeader(headerDeviceToken)
	token := req.MergeToken
	if token == "" && deviceToken != "" {
		id, err := h.deps.DeviceSvc.Lookup(ctx, deviceToken)
		if errors.Is(err, devicesvc.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, errorBody("unauthenticated", "invalid device token"))
			return
		}
		if err != nil {
			h.writeError(c, err)
			return
		}
		token = id
	}
	if token == "" {
		h.writeError(c, domain.Validation("mergeToken or %s is required", headerDeviceToken))
		return
	}

	device, err := h.deps.CartSvc.Device(domain.Cart{Lines: req.Items})
	if err != nil {
		h.writeError(c, err)
		return
	}
	res, err := h.deps.CartSvc.Merge(ctx, customerID(c), device, token)
	if err != nil {
		if errors.Is(err, domain.ErrMergeFailed) {
			h.logger.Printf("http: cart sync customer_id=%s error=%v", customerID(c), err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":      apiError{Code: string(domain.KindMergeFailed), Message: "cart merge failed, device cart kept"},
				"deviceCart": res.Device,
			})
			return
		}
		h.writeError(c, err)
		return
	}

	resp := syncResponse{Applied: res.Applied, DeviceCart: res.Device}
	if res.Applied && req.MergeToken == "" && deviceToken != "" {
		sess, err := h.deps.DeviceSvc.Rotate(ctx, deviceToken)
		if err != nil {
			h.logger.Printf("http: rotate device session error=%v", err)
		} else {
			resp.Session = sessionBody(sess.DeviceID, sess.Token, sess.ExpiresAt)
		}
	}

	account, ok := h.account(c)
	if !ok {
		return
	}
	view, err := h.deps.CartSvc.View(ctx, account)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp.Cart = view
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) deviceCartAdd(c *gin.Context) {
	h.deviceCartOp(c, func(req deviceCartRequest, b *cartsvc.DeviceBackend) error {
		return h.deps.CartSvc.Add(c.Request.Context(), b, req.ProductID, quantityOr(req.Quantity, 1))
	})
}

func (h *handlers) deviceCartSet(c *gin.Context) {
	h.deviceCartOp(c, func(req deviceCartRequest, b *cartsvc.DeviceBackend) error {
		if req.Quantity == nil {
			return domain.Validation("quantity is required")
		}
		return h.deps.CartSvc.SetQuantity(c.Request.Context(), b, req.ProductID, *req.Quantity)
	})
}

func (h *handlers) deviceCartRemove(c *gin.Context) {
	h.deviceCartOp(c, func(req deviceCartRequest, b *cartsvc.DeviceBackend) error {
		return h.deps.CartSvc.Remove(c.Request.Context(), b, req.ProductID)
	})
}

func (h *handlers) deviceCartView(c *gin.Context) {
	h.deviceCartOp(c, func(deviceCartRequest, *cartsvc.DeviceBackend) error { return nil })
}

func (h *handlers) deviceCartOp(c *gin.Context, op func(req deviceCartRequest, b *cartsvc.DeviceBackend) error) {
	var req deviceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	b, err := h.deps.CartSvc.Device(req.Cart)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := op(req, b); err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.deps.CartSvc.View(c.Request.Context(), b)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deviceCartResponse{Cart: b.Cart(), View: view})
}
