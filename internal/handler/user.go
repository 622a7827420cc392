package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/service"
)

type UserHandler struct {
	notificationService service.NotificationService
	accountService      service.AccountService
}

func NewUserHandler(notificationService service.NotificationService, accountService service.AccountService) *UserHandler {
	return &UserHandler{
		notificationService: notificationService,
		accountService:      accountService,
	}
}

func userIDFromPath(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(id), nil
}

func (h *UserHandler) GetReminderFrequency(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromPath(c)
	if err != nil {
		return err
	}

	resp, err := h.notificationService.GetReminderFrequency(ctx, userID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "load preference failed"})
	}
}

func (h *UserHandler) SetReminderFrequency(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromPath(c)
	if err != nil {
		return err
	}

	var req dto.ReminderFrequencyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	resp, err := h.notificationService.SetReminderFrequency(ctx, userID, req.ReminderFrequency)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrInvalidFrequency):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid reminder frequency", Details: err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "update preference failed"})
	}
}

func (h *UserHandler) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromPath(c)
	if err != nil {
		return err
	}

	notifications, err := h.notificationService.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "list notifications failed"})
	}

	return c.JSON(http.StatusOK, notifications)
}

func (h *UserHandler) MarkNotificationRead(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromPath(c)
	if err != nil {
		return err
	}

	notifID, err := strconv.ParseUint(c.Param("notificationId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid notification id"})
	}

	if err := h.notificationService.MarkRead(ctx, uint(notifID), userID); err != nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "notification not found"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"read": true})
}

func (h *UserHandler) RemoveAccount(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromPath(c)
	if err != nil {
		return err
	}

	err = h.accountService.RemoveAccount(ctx, userID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "account removal failed"})
	}
}
