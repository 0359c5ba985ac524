package routes

import (
	cartControllers "github.com/buzcart/buzcart-api/controllers/cart"
	productControllers "github.com/buzcart/buzcart-api/controllers/product"
	"github.com/buzcart/buzcart-api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers the public catalog and the JWT‐protected “/carts/*” endpoints.
func SetupUserRoutes(r *gin.Engine, s Services) {
	// ──────────────── Browse Products ────────────────
	r.GET("/products", productControllers.GetProducts(s.DB))                     // GET /products
	r.GET("/products/:id", productControllers.GetProductByID(s.DB, s.Products)) // GET /products/:id

	// ──────────────── Shopping Cart ────────────────
	cartGroup := r.Group("/carts")
	cartGroup.Use(middleware.ValidateToken(s.JWTSecret))
	{
		cartGroup.GET("/active", cartControllers.GetActiveCart(s.DB))     // GET /carts/active
		cartGroup.POST("/active", cartControllers.AddToCart(s.DB))        // POST /carts/active
		cartGroup.PATCH("/active", cartControllers.UpdateCartItem(s.DB))  // PATCH /carts/active
		cartGroup.DELETE("/active", cartControllers.RemoveCartItem(s.DB)) // DELETE /carts/active?cart_id=
		cartGroup.POST("/checkout", cartControllers.Checkout(s.DB))       // POST /carts/checkout (deprecated)
	}
}
