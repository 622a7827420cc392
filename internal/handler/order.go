package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.OrderID == 0 || req.Status == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "orderId and status are required"})
	}

	order, err := h.orderService.UpdateStatus(ctx, &req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, order)
	case errors.Is(err, service.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrIllegalTransition):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid status transition", Details: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "status update failed"})
	}
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
	}

	resp, err := h.orderService.GetOrder(ctx, uint(id))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "load order failed"})
	}
}
