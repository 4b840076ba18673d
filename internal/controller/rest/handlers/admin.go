package handlers

import (
	"log/slog"
	"net/http"

	"ticketrelay/internal/domain/ticket"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the basic-auth'd admin read surface.
type AdminHandler struct {
	service *ticket.Service
}

func NewAdminHandler(service *ticket.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Tickets lists tickets filtered by the optional status query parameter.
func (h *AdminHandler) Tickets(c *gin.Context) {
	tickets, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list tickets failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if tickets == nil {
		tickets = []ticket.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}
