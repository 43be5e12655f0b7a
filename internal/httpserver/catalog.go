package httpserver

import (
	"net/http"

	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) registerCustomer(c *gin.Context) {
	var req customersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	cust, err := h.deps.CustomerSvc.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

func (h *handlers) me(c *gin.Context) {
	cust, err := h.deps.CustomerSvc.Get(c.Request.Context(), customerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) adminRestock(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	stock, err := h.deps.ProductSvc.Restock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": c.Param("id"), "stock": stock})
}
