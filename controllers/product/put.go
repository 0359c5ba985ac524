package productcontroller

import (
	"log"
	"net/http"

	"github.com/buzcart/buzcart-api/cache"
	"github.com/buzcart/buzcart-api/controllers/apierror"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductUpdate carries optional fields; absent ones are left untouched.
type ProductUpdate struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=0"`
}

// UpdateProduct edits a product under a row lock so a restock never races an
// order that is deducting the same row.
func UpdateProduct(db *gorm.DB, products cache.ProductCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		var input ProductUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			apierror.Respond(c, apierror.FromBinding(err))
			return
		}
		if input.Price != nil && !input.Price.IsPositive() {
			apierror.Respond(c, models.NewValidationError("price", "Ensure this value is greater than 0.", "min"))
			return
		}
		if input.Price != nil {
			if err := models.CheckMoney("price", *input.Price); err != nil {
				apierror.Respond(c, err)
				return
			}
		}

		var product *models.Product
		err := db.Transaction(func(tx *gorm.DB) error {
			p, err := models.LockProduct(tx, id)
			if err != nil {
				return err
			}
			if input.Name != nil {
				p.Name = *input.Name
			}
			if input.Description != nil {
				p.Description = *input.Description
			}
			if input.Image != nil {
				p.Image = *input.Image
			}
			if input.Price != nil {
				p.Price = *input.Price
			}
			if input.Quantity != nil {
				p.Quantity = *input.Quantity
			}
			product = p
			return tx.Save(p).Error
		})
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		if err := products.Invalidate(c.Request.Context(), product.ID); err != nil {
			log.Printf("⚠️ Failed to invalidate cached product %s: %v", product.ID, err)
		}
		c.JSON(http.StatusOK, product)
	}
}
