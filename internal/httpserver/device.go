package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func sessionBody(deviceID, token string, expires time.Time) *deviceSessionBody {
	return &deviceSessionBody{DeviceID: deviceID, Token: token, ExpiresAt: expires.UTC().Format(time.RFC3339)}
}

func (h *handlers) issueDeviceSession(c *gin.Context) {
	sess, err := h.deps.DeviceSvc.Issue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionBody(sess.DeviceID, sess.Token, sess.ExpiresAt))
}
