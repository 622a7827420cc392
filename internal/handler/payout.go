package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/service"
)

type PayoutHandler struct {
	payoutService service.PayoutService
}

func NewPayoutHandler(payoutService service.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

func (h *PayoutHandler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PendingPayoutsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.SellerID == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "sellerId is required"})
	}

	resp, err := h.payoutService.PendingPayouts(ctx, req.SellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "list payouts failed"})
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PayoutHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PendingPayoutsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.SellerID == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "sellerId is required"})
	}

	payouts, err := h.payoutService.History(ctx, req.SellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "list payout history failed"})
	}

	return c.JSON(http.StatusOK, payouts)
}

func (h *PayoutHandler) Request(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RequestPayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.SellerID == 0 || req.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "sellerId and orderId are required"})
	}

	payout, err := h.payoutService.RequestPayout(ctx, req.SellerID, req.OrderID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, payout)
	case errors.Is(err, service.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
	case errors.Is(err, service.ErrNotSellerOrder):
		return c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "order does not belong to seller"})
	case errors.Is(err, service.ErrOrderNotPayable):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "order not eligible for payout", Details: err.Error()})
	case errors.Is(err, service.ErrDuplicatePayout):
		// Tolerate double-submits: the payout already exists.
		return c.JSON(http.StatusOK, map[string]string{"status": "already requested"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "payout request failed"})
	}
}
