package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.ProductID == 0 || req.BuyerID == 0 || req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "productId, buyerId and a positive quantity are required"})
	}

	resp, err := h.checkoutService.CreateOrder(ctx, &req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "product or buyer not found"})
	case errors.Is(err, service.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "insufficient stock"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "checkout failed"})
	}
}

func (h *CheckoutHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == 0 || req.Plan == "" || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "userId, plan and a positive amount are required"})
	}

	resp, err := h.checkoutService.CreateSubscriptionBill(ctx, &req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "subscription checkout failed"})
	}
}
