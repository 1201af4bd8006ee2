package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"payvault/internal/handler"
)

type Server struct {
	echo *echo.Echo

	webhookHandler      *handler.WebhookHandler
	tokenHandler        *handler.TokenHandler
	checkoutHandler     *handler.CheckoutHandler
	subscriptionHandler *handler.SubscriptionHandler
	adminHandler        *handler.AdminHandler
}

func NewServer(
	log zerolog.Logger,
	webhookHandler *handler.WebhookHandler,
	tokenHandler *handler.TokenHandler,
	checkoutHandler *handler.CheckoutHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	adminHandler *handler.AdminHandler,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))

	s := &Server{
		echo:                e,
		webhookHandler:      webhookHandler,
		tokenHandler:        tokenHandler,
		checkoutHandler:     checkoutHandler,
		subscriptionHandler: subscriptionHandler,
		adminHandler:        adminHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- vaulted payment tokens --------
	api.GET("/customers/:customerID/payment-tokens", s.tokenHandler.ListTokens)
	api.DELETE("/customers/:customerID/payment-tokens/:tokenRef", s.tokenHandler.DeleteToken)

	// -------- synchronous checkout recording --------
	checkout := api.Group("/checkout")
	checkout.POST("/purchases", s.checkoutHandler.RecordPurchase)
	checkout.POST("/vault", s.checkoutHandler.CompleteVault)

	// -------- subscription ledger actions --------
	subs := api.Group("/subscriptions")
	subs.POST("/:id/suspend", s.subscriptionHandler.Suspend)
	subs.POST("/:id/cancel", s.subscriptionHandler.Cancel)
	subs.POST("/:id/archive", s.subscriptionHandler.Archive)

	// -------- processor notifications --------
	// Processor payloads are small; cap the body so a hostile delivery
	// cannot balloon memory.
	api.POST("/webhooks/processor", s.webhookHandler.ProcessorWebhook,
		middleware.BodyLimit("1M"))

	// -------- operator tooling --------
	api.POST("/admin/legacy-migration", s.adminHandler.RunLegacyMigration)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
