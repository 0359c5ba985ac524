package routes

import (
	"net/http"

	"github.com/buzcart/buzcart-api/cache"
	"github.com/buzcart/buzcart-api/controllers/apierror"
	orderControllers "github.com/buzcart/buzcart-api/controllers/order"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services bundles what the route groups hand to their controllers.
type Services struct {
	DB       *gorm.DB
	Products cache.ProductCache
	Notifier orderControllers.Notifier
	Hub      *orderControllers.Hub

	JWTSecret   string
	AdminAPIKey string
}

// SetupRoutes is the single entry‐point that wires up the Cart, Order, Catalog and Admin route groups.
func SetupRoutes(r *gin.Engine, s Services) {
	apierror.UseJSONFieldNames()
	if s.Products == nil {
		s.Products = cache.Noop{}
	}
	if s.Hub == nil {
		s.Hub = orderControllers.NewHub()
	}
	if s.Notifier == nil {
		s.Notifier = s.Hub
	}

	// 1️⃣ Ops
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 2️⃣ Catalog + cart routes (cart is JWT‐protected)
	SetupUserRoutes(r, s)

	// 3️⃣ Order routes (JWT‐protected)
	SetupOrderRoutes(r, s)

	// 4️⃣ Admin routes (API‐Key‐protected)
	SetupAdminRoutes(r, s)
}
