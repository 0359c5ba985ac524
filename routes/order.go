package routes

import (
	orderControllers "github.com/buzcart/buzcart-api/controllers/order"
	"github.com/buzcart/buzcart-api/middleware"
	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(r *gin.Engine, s Services) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken(s.JWTSecret))
	{
		// Create a new order
		orders.POST("", orderControllers.CreateOrderHandler(s.DB, s.Products, s.Notifier))

		// Orders of the caller, newest first
		orders.GET("", orderControllers.ListOrdersHandler(s.DB))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderWebSocketHandler(s.Hub))

		orders.GET("/:id", orderControllers.GetOrderHandler(s.DB))
	}
}
