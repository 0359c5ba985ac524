package productcontroller

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/buzcart/buzcart-api/cache"
	"github.com/buzcart/buzcart-api/controllers/apierror"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productID reads the :id param; anything that is not a uuid cannot name a
// product, so it is reported as not found.
func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return uuid.Nil, false
	}
	return id, true
}

func findProduct(db *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return &product, nil
}

// GetProductByID returns a single product, served from the cache when warm.
// The cached copy is for display only; stock checks always lock the row.
// URL param: /products/:id
func GetProductByID(db *gorm.DB, products cache.ProductCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()

		if cached, err := products.Get(ctx, id); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("⚠️ Product cache read failed for %s: %v", id, err)
		}

		product, err := findProduct(db, id)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		if err := products.Set(ctx, product); err != nil {
			log.Printf("⚠️ Product cache write failed for %s: %v", id, err)
		}
		c.JSON(http.StatusOK, product)
	}
}
