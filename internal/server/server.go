package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/AfiqSafri/livesales-sub002/internal/handler"
)

type Server struct {
	echo           *echo.Echo
	webhookHandler  *handler.WebhookHandler
	checkoutHandler *handler.CheckoutHandler
	orderHandler    *handler.OrderHandler
	jobsHandler     *handler.JobsHandler
	payoutHandler   *handler.PayoutHandler
	userHandler     *handler.UserHandler
}

func NewServer(
	webhookHandler *handler.WebhookHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	jobsHandler *handler.JobsHandler,
	payoutHandler *handler.PayoutHandler,
	userHandler *handler.UserHandler,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		webhookHandler:  webhookHandler,
		checkoutHandler: checkoutHandler,
		orderHandler:    orderHandler,
		jobsHandler:     jobsHandler,
		payoutHandler:   payoutHandler,
		userHandler:     userHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- payment gateway callbacks --------
	api.POST("/payment/webhook", s.webhookHandler.HandleCallback)

	// -------- orders --------
	api.POST("/orders", s.checkoutHandler.CreateOrder)
	api.POST("/subscriptions/checkout", s.checkoutHandler.Subscribe)
	api.POST("/orders/status", s.orderHandler.UpdateStatus)
	api.GET("/orders/:id", s.orderHandler.GetOrder)

	// -------- scheduled jobs --------
	jobs := api.Group("/jobs")
	jobs.GET("/cancel-unpaid", s.jobsHandler.CancelUnpaid)
	jobs.POST("/send-reminders", s.jobsHandler.SendReminders)

	// -------- payouts --------
	payouts := api.Group("/payouts")
	payouts.POST("/pending", s.payoutHandler.ListPending)
	payouts.POST("/request", s.payoutHandler.Request)
	payouts.POST("/history", s.payoutHandler.History)

	// -------- users --------
	users := api.Group("/users")
	users.GET("/:id/reminder-frequency", s.userHandler.GetReminderFrequency)
	users.PUT("/:id/reminder-frequency", s.userHandler.SetReminderFrequency)
	users.GET("/:id/notifications", s.userHandler.ListNotifications)
	users.POST("/:id/notifications/:notificationId/read", s.userHandler.MarkNotificationRead)
	users.DELETE("/:id", s.userHandler.RemoveAccount)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
