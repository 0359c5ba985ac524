package cartControllers

import (
	"net/http"

	"github.com/buzcart/buzcart-api/controllers/apierror"
	"github.com/buzcart/buzcart-api/middleware"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// -------- Request Structs --------

type AddItemInput struct {
	Product  uuid.UUID `json:"product" binding:"required"`
	Quantity *int      `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateQuantityInput struct {
	Product  uuid.UUID `json:"product" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// -------- Handlers --------

// GET /carts/active
func GetActiveCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cart, err := ViewCart(db, userID)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /carts/active
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer middleware.RecordOperation(c, "cart_add")

		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apierror.Respond(c, apierror.FromBinding(err))
			return
		}
		qty := 1
		if input.Quantity != nil {
			qty = *input.Quantity
		}

		cart, err := AddItem(db, userID, input.Product, qty)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

// PATCH /carts/active
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer middleware.RecordOperation(c, "cart_update")

		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input UpdateQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apierror.Respond(c, apierror.FromBinding(err))
			return
		}

		item, err := UpdateQuantity(db, userID, input.Product, input.Quantity)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /carts/active?cart_id=<cart item id>
func RemoveCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer middleware.RecordOperation(c, "cart_remove")

		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		raw := c.Query("cart_id")
		if raw == "" {
			apierror.Respond(c, models.NewValidationError("cart_id", "Cart item ID is required (use ?cart_id=... in URL).", "required"))
			return
		}
		itemID, err := uuid.Parse(raw)
		if err != nil {
			apierror.Respond(c, models.NewValidationError("cart_id", "Must be a valid UUID.", "invalid"))
			return
		}

		cart, err := RemoveItem(db, userID, itemID)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /carts/checkout
//
// Deprecated: kept for existing clients; POST /orders is the checkout that
// validates stock and persists the order.
func Checkout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer middleware.RecordOperation(c, "cart_draft_checkout")

		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		draft, err := DraftCheckout(db, userID)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.Header("Deprecation", "true")
		c.Header("Link", `</orders>; rel="successor-version"`)
		c.JSON(http.StatusCreated, draft)
	}
}
