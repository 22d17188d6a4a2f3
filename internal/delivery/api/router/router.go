// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"ventas/internal/delivery/api/middleware"
	"ventas/internal/delivery/api/router/handler"
	"ventas/internal/domain/entity"
	"ventas/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	SessionHandler      *handler.SessionHandler
	OrderHandler        *handler.OrderHandler
	ProductHandler      *handler.ProductHandler
	PaymentHandler      *handler.PaymentHandler
	AnalyticsHandler    *handler.AnalyticsHandler
	WebhookHandler      *handler.WebhookHandler
	UserHandler         *handler.UserHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	Metrics             *metrics.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	sessionHandler      *handler.SessionHandler
	orderHandler        *handler.OrderHandler
	productHandler      *handler.ProductHandler
	paymentHandler      *handler.PaymentHandler
	analyticsHandler    *handler.AnalyticsHandler
	webhookHandler      *handler.WebhookHandler
	userHandler         *handler.UserHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
	metrics             *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		sessionHandler:      params.SessionHandler,
		orderHandler:        params.OrderHandler,
		productHandler:      params.ProductHandler,
		paymentHandler:      params.PaymentHandler,
		analyticsHandler:    params.AnalyticsHandler,
		webhookHandler:      params.WebhookHandler,
		userHandler:         params.UserHandler,
		authMiddleware:      params.AuthMiddleware,
		rateLimitMiddleware: params.RateLimitMiddleware,
		metrics:             params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	backOffice := r.authMiddleware.RequireRole(entity.BackOfficeRoles...)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)
	if r.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
	}

	// Auth routes, throttled per IP and route
	authGroup := e.Group("/auth")
	authGroup.Use(r.rateLimitMiddleware.Handle)
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh-token", r.authHandler.RefreshToken)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	e.GET("/me", r.userHandler.Me, r.authMiddleware.Authenticate)

	// Account administration
	usersGroup := e.Group("/users")
	usersGroup.Use(r.authMiddleware.Authenticate)
	usersGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		usersGroup.GET("/:id", r.userHandler.GetUser)
		usersGroup.PATCH("/:id", r.userHandler.UpdateUser)
		usersGroup.POST("/:id/reinstate", r.userHandler.ReinstateUser)
	}

	sessionsGroup := e.Group("/sessions")
	sessionsGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionsGroup.GET("", r.sessionHandler.ListSessions)
		sessionsGroup.DELETE("", r.sessionHandler.RevokeAllSessions)
		sessionsGroup.DELETE("/:id", r.sessionHandler.RevokeSession)
	}

	ordersGroup := e.Group("/orders")
	ordersGroup.Use(r.authMiddleware.Authenticate)
	{
		ordersGroup.POST("", r.orderHandler.CreateOrder)
		// Reads expose client contact data and are back office only.
		ordersGroup.GET("", r.orderHandler.ListOrders, backOffice)
		ordersGroup.GET("/:id", r.orderHandler.GetOrder, backOffice)
		ordersGroup.GET("/:id/payment-link", r.orderHandler.GetPaymentLink, backOffice)
		ordersGroup.GET("/:id/payment-qr", r.orderHandler.GetPaymentQR, backOffice)
		ordersGroup.PATCH("/:id/payment-status", r.orderHandler.UpdatePaymentStatus, backOffice)
		ordersGroup.DELETE("/:id", r.orderHandler.DeleteOrder, r.authMiddleware.RequireRole(entity.RoleAdmin))
	}

	productsGroup := e.Group("/products")
	productsGroup.Use(r.authMiddleware.Authenticate)
	{
		productsGroup.GET("", r.productHandler.ListProducts)
		productsGroup.GET("/:id", r.productHandler.GetProduct)
		productsGroup.POST("", r.productHandler.CreateProduct, backOffice)
		productsGroup.PUT("/:id", r.productHandler.UpdateProduct, backOffice)
		productsGroup.DELETE("/:id", r.productHandler.DeleteProduct, backOffice)
	}

	paymentsGroup := e.Group("/payments")
	paymentsGroup.Use(r.authMiddleware.Authenticate)
	paymentsGroup.Use(backOffice)
	{
		paymentsGroup.GET("", r.paymentHandler.ListPayments)
		paymentsGroup.GET("/:id", r.paymentHandler.GetPayment)
	}

	analyticsGroup := e.Group("/analytics")
	analyticsGroup.Use(r.authMiddleware.Authenticate)
	analyticsGroup.Use(backOffice)
	{
		analyticsGroup.GET("/summary", r.analyticsHandler.Summary)
		analyticsGroup.GET("/top-products", r.analyticsHandler.TopProducts)
	}

	// Provider callbacks authenticate with signatures, not bearer tokens
	webhooksGroup := e.Group("/webhooks")
	{
		webhooksGroup.POST("/wompi", r.paymentHandler.WompiWebhook)
		webhooksGroup.GET("/whatsapp", r.webhookHandler.VerifyWhatsApp)
		webhooksGroup.POST("/whatsapp", r.webhookHandler.ReceiveWhatsApp)
	}
}
