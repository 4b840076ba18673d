package handlers

import (
	"log/slog"
	"net/http"

	"ticketrelay/internal/controller/apperror"
	"ticketrelay/internal/domain/ticket"
	"ticketrelay/internal/signature"
	"ticketrelay/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// TicketHandler serves the signed attach-ticket relay endpoint.
type TicketHandler struct {
	verifier *signature.Verifier
	service  *ticket.Service
}

func NewTicketHandler(verifier *signature.Verifier, service *ticket.Service) *TicketHandler {
	return &TicketHandler{verifier: verifier, service: service}
}

type attachBody struct {
	OrderID  string `json:"order_id"`
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
}

// Attach verifies the request signature against the raw query string,
// validates the body triple and forwards it to the store. The body is
// not read until the signature has passed.
func (h *TicketHandler) Attach(c *gin.Context) {
	rawQuery := c.Request.URL.RawQuery
	provided := c.Query("signature")

	if !h.verifier.Verify(rawQuery, provided) {
		metrics.SignatureChecksTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": apperror.CodeInvalidSignature})
		return
	}
	metrics.SignatureChecksTotal.WithLabelValues("accepted").Inc()

	var body attachBody
	// Bind errors fall through to the missing-fields check: a malformed
	// or empty body reports every field as missing.
	_ = c.ShouldBindJSON(&body)

	var missing []string
	if body.OrderID == "" {
		missing = append(missing, "order_id")
	}
	if body.TicketID == "" {
		missing = append(missing, "ticket_id")
	}
	if body.Status == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":     false,
			"error":  apperror.CodeMissingFields,
			"fields": missing,
		})
		return
	}

	req := ticket.AttachRequest{
		OrderID:  body.OrderID,
		TicketID: body.TicketID,
		Status:   body.Status,
	}
	if err := h.service.Attach(c.Request.Context(), req); err != nil {
		slog.ErrorContext(c.Request.Context(), "attach ticket failed",
			"ticket_id", req.TicketID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": apperror.CodeServerError})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"order_id":  req.OrderID,
		"ticket_id": req.TicketID,
		"status":    req.Status,
	})
}

// MethodNotAllowed answers any non-POST verb on the attach route.
func (h *TicketHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"ok":     false,
		"error":  apperror.CodeMethodNotAllowed,
		"method": c.Request.Method,
	})
}
