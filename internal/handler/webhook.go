package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AfiqSafri/livesales-sub002/internal/service"
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// HandleCallback is consumed by the payment gateway: terse body, the status
// code is the contract. Non-2xx makes the gateway retry.
func (h *WebhookHandler) HandleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "cannot read body")
	}

	signature := c.Request().Header.Get("X-Signature")
	if signature == "" {
		return c.String(http.StatusBadRequest, "missing signature")
	}

	err = h.webhookService.HandleCallback(ctx, body, signature)
	switch {
	case err == nil:
		return c.String(http.StatusOK, "OK")
	case errors.Is(err, service.ErrBadSignature):
		return c.String(http.StatusBadRequest, "invalid signature")
	case errors.Is(err, service.ErrBadPayload):
		return c.String(http.StatusBadRequest, "invalid payload")
	case errors.Is(err, service.ErrPaymentNotFound), errors.Is(err, service.ErrOrderNotFound):
		return c.String(http.StatusNotFound, "unknown payment")
	default:
		return c.String(http.StatusInternalServerError, "processing error")
	}
}
