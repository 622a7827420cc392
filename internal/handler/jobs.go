package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AfiqSafri/livesales-sub002/internal/service"
)

type JobsHandler struct {
	sweeperService      service.SweeperService
	notificationService service.NotificationService
	secret              string
}

func NewJobsHandler(sweeperService service.SweeperService, notificationService service.NotificationService, secret string) *JobsHandler {
	return &JobsHandler{
		sweeperService:      sweeperService,
		notificationService: notificationService,
		secret:              secret,
	}
}

// CancelUnpaid is invoked by the external job runner. The shared secret is
// the only guard, so compare it in constant time.
func (h *JobsHandler) CancelUnpaid(c echo.Context) error {
	ctx := c.Request().Context()

	provided := c.QueryParam("secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		return c.String(http.StatusUnauthorized, "unauthorized")
	}

	resp, err := h.sweeperService.CancelUnpaid(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, "sweep failed")
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *JobsHandler) SendReminders(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.notificationService.SendReminders(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, "reminder check failed")
	}

	return c.JSON(http.StatusOK, resp)
}
