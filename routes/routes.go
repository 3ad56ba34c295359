package routes

import (
	"time"

	"quickshop/handlers"
	"quickshop/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	public.Use(middleware.RateLimit(60, time.Minute))
	{
		// Catalog
		public.GET("/products", handlers.ListProducts)

		// Orders: place, track, cancel. Token possession authorizes
		// tracking and cancellation.
		public.POST("/orders", handlers.PlaceOrder)
		public.GET("/orders/history", handlers.OrderHistory) // must precede /orders/:token
		public.GET("/orders/:token", handlers.GetOrder)
		public.PUT("/orders/:token/cancel", handlers.CancelOrder)

		// Auth
		public.POST("/auth/login", handlers.StaffLogin)
		public.POST("/auth/setup-pin", handlers.SetupPIN)
		public.POST("/auth/verify", handlers.VerifyPIN)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Staff routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/orders", handlers.AdminListOrders)
		admin.PUT("/orders/:token/status", handlers.AdminTransitionOrder)
		admin.GET("/customers", handlers.AdminListCustomers)
	}
}
