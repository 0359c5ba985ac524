package productcontroller

import (
	"fmt"
	"log"
	"net/http"

	"github.com/buzcart/buzcart-api/cache"
	"github.com/buzcart/buzcart-api/controllers/apierror"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DeleteProduct removes a product unless an order still references it.
// Cart lines for it go with it.
func DeleteProduct(db *gorm.DB, products cache.ProductCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			product, err := models.LockProduct(tx, id)
			if err != nil {
				return err
			}

			var ordered int64
			if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&ordered).Error; err != nil {
				return err
			}
			if ordered > 0 {
				return fmt.Errorf("product %s: %w", id, models.ErrProductInUse)
			}

			if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(product).Error
		})
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		if err := products.Invalidate(c.Request.Context(), id); err != nil {
			log.Printf("⚠️ Failed to invalidate cached product %s: %v", id, err)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
