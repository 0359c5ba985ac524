package productcontroller

import (
	"net/http"

	"github.com/buzcart/buzcart-api/controllers/apierror"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	SellerID    uuid.UUID       `json:"seller_id" binding:"required"`
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity" binding:"omitempty,min=0"`
}

// CreateProduct adds a catalog entry. Quantity defaults to 1.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apierror.Respond(c, apierror.FromBinding(err))
			return
		}
		if !input.Price.IsPositive() {
			apierror.Respond(c, models.NewValidationError("price", "Ensure this value is greater than 0.", "min"))
			return
		}
		if err := models.CheckMoney("price", input.Price); err != nil {
			apierror.Respond(c, err)
			return
		}

		quantity := 1
		if input.Quantity != nil {
			quantity = *input.Quantity
		}

		product := models.Product{
			SellerID:    input.SellerID,
			Name:        input.Name,
			Description: input.Description,
			Image:       input.Image,
			Price:       input.Price,
			Quantity:    quantity,
		}
		if err := db.Create(&product).Error; err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
