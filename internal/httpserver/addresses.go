package httpserver

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type addressRequest struct {
	Type         domain.AddressType `json:"type"`
	FullName     string             `json:"fullName"`
	Phone        string             `json:"phone"`
	AddressLine1 string             `json:"addressLine1"`
	AddressLine2 string             `json:"addressLine2"`
	City         string             `json:"city"`
	State        string             `json:"state"`
	PostalCode   string             `json:"postalCode"`
	Country      string             `json:"country"`
	Landmark     string             `json:"landmark"`
	IsDefault    bool               `json:"isDefault"`
}

func (r addressRequest) toDomain() domain.Address {
	return domain.Address{
		Type:         r.Type,
		FullName:     r.FullName,
		Phone:        r.Phone,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
		Landmark:     r.Landmark,
		IsDefault:    r.IsDefault,
	}
}

func (h *handlers) listAddresses(c *gin.Context) {
	list, err := h.deps.AddressSvc.List(c.Request.Context(), customerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": list})
}

func (h *handlers) addAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	a, err := h.deps.AddressSvc.Add(c.Request.Context(), customerID(c), req.toDomain())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) updateAddress(c *gin.Context) {
	var patch domain.AddressPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, err)
		return
	}
	a, err := h.deps.AddressSvc.Update(c.Request.Context(), customerID(c), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) removeAddress(c *gin.Context) {
	if err := h.deps.AddressSvc.Remove(c.Request.Context(), customerID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) setDefaultAddress(c *gin.Context) {
	a, err := h.deps.AddressSvc.SetDefault(c.Request.Context(), customerID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
