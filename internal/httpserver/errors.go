package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindEmptyOrder:        http.StatusBadRequest,
	domain.KindMissingAddress:    http.StatusBadRequest,
	domain.KindInvalidQuantity:   http.StatusUnprocessableEntity,
	domain.KindInvalidStatus:     http.StatusUnprocessableEntity,
	domain.KindUnauthenticated:   http.StatusUnauthorized,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindAddressNotFound:   http.StatusNotFound,
	domain.KindProductNotFound:   http.StatusNotFound,
	domain.KindInsufficientStock: http.StatusConflict,
	domain.KindAlreadyExists:     http.StatusConflict,
	domain.KindMergeFailed:       http.StatusServiceUnavailable,
	domain.KindUnavailable:       http.StatusServiceUnavailable,
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}

func errorBody(code, message string) gin.H {
	return gin.H{"error": apiError{Code: code, Message: message}}
}

func statusFor(err error) int {
	if status, ok := statusByKind[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError maps a service error to its HTTP status and body.
func (h *handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	var derr *domain.Error
	if !errors.As(err, &derr) {
		h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, errorBody("internal", "internal error"))
		return
	}
	body := apiError{Code: string(derr.Kind), Message: derr.Message, ProductID: derr.ProductID}
	if status >= http.StatusInternalServerError {
		h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		body.Message = "service temporarily unavailable, retry later"
	}
	switch derr.Kind {
	case domain.KindInsufficientStock:
		available, requested := derr.Available, derr.Requested
		body.Available, body.Requested = &available, &requested
	case domain.KindInvalidQuantity:
		requested := derr.Requested
		body.Requested = &requested
	}
	c.JSON(status, gin.H{"error": body})
}

func (h *handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody(string(domain.KindValidation), "invalid request body: "+err.Error()))
}
