package routes

import (
	productcontroller "github.com/buzcart/buzcart-api/controllers/product"
	"github.com/buzcart/buzcart-api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers all “/admin/*” endpoints. Requires API‐Key middleware.
func SetupAdminRoutes(r *gin.Engine, s Services) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(s.AdminAPIKey))
	{
		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(s.DB))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(s.DB, s.Products))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(s.DB, s.Products))
			productAdmin.POST("/import", productcontroller.ImportProductsFromExcel(s.DB, s.Products))
			productAdmin.GET("/export", productcontroller.ExportProductsToExcel(s.DB))
		}
	}
}
