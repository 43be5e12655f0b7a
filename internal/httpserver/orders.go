package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	ordersvc "storefront/internal/service/order"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	Items         []ordersvc.LineInput    `json:"items"`
	AddressID     string                  `json:"addressId"`
	Address       *domain.ShippingAddress `json:"address"`
	CustomerNotes string                  `json:"customerNotes"`
	PaymentMethod string                  `json:"paymentMethod"`
}

type createOrderResponse struct {
	OrderID           string        `json:"orderId"`
	TotalAmount       int64         `json:"totalAmount"`
	Status            string        `json:"status"`
	EstimatedDelivery time.Time     `json:"estimatedDelivery"`
	Order             *domain.Order `json:"order"`
}

type statusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

// createOrder places an order. Without items the caller's account cart is
// ordered and then cleared.
func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.AddressID != "" && req.Address != nil {
		h.writeError(c, domain.Validation("send either addressId or address, not both"))
		return
	}

	in := ordersvc.CreateInput{
		CustomerID:    customerID(c),
		Items:         req.Items,
		CustomerNotes: req.CustomerNotes,
		PaymentMethod: req.PaymentMethod,
	}
	switch {
	case req.AddressID != "":
		in.Address = domain.ByReference(req.AddressID)
	case req.Address != nil:
		in.Address = domain.Inline(*req.Address)
	}
	if len(req.Items) == 0 {
		b, ok := h.account(c)
		if !ok {
			return
		}
		in.Cart = b
	}

	o, err := h.deps.OrderSvc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createOrderResponse{
		OrderID:           o.ID,
		TotalAmount:       o.TotalAmountCents,
		Status:            string(o.Status),
		EstimatedDelivery: o.EstimatedDelivery,
		Order:             o,
	})
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListByOwner(c.Request.Context(), customerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) listOrdersByEmail(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListByEmail(c.Request.Context(), customerID(c), c.Param("email"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.GetForOwner(c.Request.Context(), customerID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminGetOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminListOrders(c *gin.Context) {
	f, err := parseListFilter(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	res, err := h.deps.OrderSvc.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) adminUpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	o, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.AdminNotes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func parseListFilter(c *gin.Context) (orderrepo.ListFilter, error) {
	var f orderrepo.ListFilter
	if s := c.Query("status"); s != "" {
		st, err := domain.ParseOrderStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	var err error
	if f.From, err = parseDate(c.Query("from"), false); err != nil {
		return f, err
	}
	if f.To, err = parseDate(c.Query("to"), true); err != nil {
		return f, err
	}
	if f.Page, err = parseInt(c.Query("page"), "page"); err != nil {
		return f, err
	}
	if f.Limit, err = parseInt(c.Query("limit"), "limit"); err != nil {
		return f, err
	}
	f.SortAsc = strings.EqualFold(c.Query("sort"), "asc")
	return f.Normalize(), nil
}

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the whole day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, domain.Validation("invalid date %q", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseInt(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.Validation("invalid %s %q", name, s)
	}
	return n, nil
}
