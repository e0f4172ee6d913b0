package handlers

import (
	"net/http"

	"github.com/andresuchdata/purchasing/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	service *service.ItemStatsService
}

func NewItemHandler(service *service.ItemStatsService) *ItemHandler {
	return &ItemHandler{service: service}
}

// GetItemStats returns the recent sales summary of an item at ?store=
func (h *ItemHandler) GetItemStats(c *gin.Context) {
	stats, err := h.service.ItemStats(c.Request.Context(), queryInt64(c, "store"), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
