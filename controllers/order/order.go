package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/buzcart/buzcart-api/cache"
	"github.com/buzcart/buzcart-api/controllers/apierror"
	"github.com/buzcart/buzcart-api/middleware"
	"github.com/buzcart/buzcart-api/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// -------- Request Structs --------

type OrderLineInput struct {
	Product  uuid.UUID `json:"product" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	FullName string `json:"full_name" binding:"required,max=120"`
	Phone    string `json:"phone" binding:"required,max=32"`
	Street   string `json:"street" binding:"required,max=255"`
	City     string `json:"city" binding:"required,max=120"`
	ZipCode  string `json:"zip_code" binding:"required,max=20"`

	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cod paypal"`
	// Shipping and Discount are taken as supplied; there is no rate table.
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Note     string          `json:"note"`

	// FromCart orders the caller's active cart instead of Items and retires
	// the cart in the same transaction.
	FromCart bool             `json:"from_cart"`
	Items    []OrderLineInput `json:"items" binding:"dive"`
}

// Notifier is told about orders once they are committed.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order) error
}

// -------- Core Logic --------

// CreateOrder validates stock, snapshots prices and decrements inventory in a
// single transaction. Any failing line rolls back the whole order.
func CreateOrder(db *gorm.DB, userID uuid.UUID, req CreateOrderRequest) (*models.Order, error) {
	if req.Shipping.IsNegative() {
		return nil, models.NewValidationError("shipping", "Ensure this value is greater than or equal to 0.", "min")
	}
	if req.Discount.IsNegative() {
		return nil, models.NewValidationError("discount", "Ensure this value is greater than or equal to 0.", "min")
	}
	if err := models.CheckMoney("shipping", req.Shipping); err != nil {
		return nil, err
	}
	if err := models.CheckMoney("discount", req.Discount); err != nil {
		return nil, err
	}
	if req.FromCart && len(req.Items) > 0 {
		return nil, models.NewValidationError("items", "Send either items or from_cart, not both.", "exclusive")
	}
	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentCashOnDelivery
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		lines := req.Items
		var cart *models.Cart
		if req.FromCart {
			var err error
			if cart, lines, err = cartLines(tx, userID); err != nil {
				return err
			}
		}
		if len(lines) == 0 {
			return models.ErrEmptyOrder
		}

		// Lock and verify every line before anything is written.
		locked := make(map[uuid.UUID]*models.Product, len(lines))
		requested := make(map[uuid.UUID]int, len(lines))
		for i, line := range lines {
			prior := requested[line.Product]
			requested[line.Product] = models.AddQuantity(prior, line.Quantity)
			product, seen := locked[line.Product]
			if !seen {
				p, err := models.ReserveStock(tx, line.Product, line.Quantity)
				if err != nil {
					if errors.Is(err, models.ErrNotFound) {
						return models.NewValidationError(fmt.Sprintf("items[%d].product", i), "Product not found.", "not_found")
					}
					return err
				}
				locked[line.Product] = p
				continue
			}
			if line.Quantity > product.Quantity-prior {
				return &models.StockError{ProductID: product.ID, Name: product.Name, Available: product.Quantity, Requested: requested[line.Product]}
			}
		}

		order = models.Order{
			UserID:        userID,
			FullName:      req.FullName,
			Phone:         req.Phone,
			Street:        req.Street,
			City:          req.City,
			ZipCode:       req.ZipCode,
			PaymentMethod: method,
			Status:        models.OrderStatusPending,
			Subtotal:      decimal.Zero,
			Shipping:      req.Shipping,
			Discount:      req.Discount,
			Total:         decimal.Zero,
			Note:          req.Note,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		for _, line := range lines {
			product := locked[line.Product]
			unitPrice := product.Price
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: unitPrice,
				LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			}

			if err := product.Deduct(line.Quantity); err != nil {
				return err
			}
			if err := tx.Save(product).Error; err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return err
			}
			item.Product = *product
			order.Items = append(order.Items, item)
		}

		order.ApplyTotals()
		if err := tx.Model(&order).Omit(clause.Associations).Updates(map[string]interface{}{
			"subtotal": order.Subtotal,
			"total":    order.Total,
		}).Error; err != nil {
			return err
		}

		if cart != nil {
			return cart.Deactivate(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// cartLines locks the active cart and turns its lines into order input.
func cartLines(tx *gorm.DB, userID uuid.UUID) (*models.Cart, []OrderLineInput, error) {
	var cart models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("active_owner = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, models.ErrEmptyOrder
	}
	if err != nil {
		return nil, nil, err
	}

	var items []models.CartItem
	if err := tx.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	lines := make([]OrderLineInput, 0, len(items))
	for _, it := range items {
		lines = append(lines, OrderLineInput{Product: it.ProductID, Quantity: it.Quantity})
	}
	return &cart, lines, nil
}

func ListOrders(db *gorm.DB, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	err := db.Where("user_id = ?", userID).
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func GetOrder(db *gorm.DB, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// POST /orders
func CreateOrderHandler(db *gorm.DB, products cache.ProductCache, notifier Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer middleware.RecordOperation(c, "order_create")

		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierror.Respond(c, apierror.FromBinding(err))
			return
		}

		order, err := CreateOrder(db, userID, req)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)

		ctx := c.Request.Context()
		ids := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		if err := products.Invalidate(ctx, ids...); err != nil {
			log.Printf("⚠️ Failed to invalidate cached products for order %s: %v", order.ID, err)
		}
		if err := notifier.OrderCreated(ctx, order); err != nil {
			log.Printf("⚠️ Failed to publish order created event for %s: %v", order.ID, err)
		}
	}
}

// GET /orders
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orders, err := ListOrders(db, userID)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:id
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order: not found"})
			return
		}
		order, err := GetOrder(db, userID, orderID)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
