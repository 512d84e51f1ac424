package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shehrozeikram/ERP-sub001/internal/push"
)

// PushHandler is the admin control surface for the device push service:
// start, stop and status of the listener and its subscriber fanout.
type PushHandler struct {
	Service *push.Service
}

func NewPushHandler(service *push.Service) *PushHandler {
	return &PushHandler{Service: service}
}

func (h *PushHandler) Start(c *gin.Context) {
	if err := h.Service.Start(); err != nil {
		if errors.Is(err, push.ErrListenerBind) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"errorKind": push.KindListenerBindFailure,
				"error":     err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "push server running",
		"addr":    h.Service.Addr(),
	})
}

func (h *PushHandler) Stop(c *gin.Context) {
	if err := h.Service.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "push server stopped"})
}

func (h *PushHandler) Status(c *gin.Context) {
	status := h.Service.Status()
	state := "stopped"
	if status.Running {
		state = "running"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"status":          state,
		"timestamp":       time.Now().Format(time.RFC3339),
		"subscriberCount": status.SubscriberCount,
		"addr":            status.Addr,
	})
}
