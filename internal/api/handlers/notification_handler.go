package handlers

import (
	"net/http"
	"strconv"

	"github.com/andresuchdata/purchasing/backend-go/internal/api/middleware"
	"github.com/andresuchdata/purchasing/backend-go/internal/notify"
	"github.com/andresuchdata/purchasing/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	hub     *notify.Hub
	service *service.NotificationService
}

func NewNotificationHandler(hub *notify.Hub, service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{hub: hub, service: service}
}

// Subscribe upgrades the request to the notification feed of the caller
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request, middleware.ActorFrom(c).ID)
}

// List returns the caller's latest notifications
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), middleware.ActorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), middleware.ActorFrom(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
