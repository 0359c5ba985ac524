package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/buzcart/buzcart-api/controllers/apierror"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := strings.TrimSpace(c.Query("search"))
		inStock := c.Query("in_stock")

		query := db.Model(&models.Product{})

		if search != "" {
			likePattern := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", likePattern, likePattern)
		}

		if inStock != "" {
			v, err := strconv.ParseBool(inStock)
			if err != nil {
				apierror.Respond(c, models.NewValidationError("in_stock", "Must be true or false.", "invalid"))
				return
			}
			query = query.Where("in_stock = ?", v)
		}

		products := []models.Product{}
		if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
