package cartControllers

import (
	"errors"
	"fmt"

	"github.com/buzcart/buzcart-api/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DraftStatusPendingPayment = "pending_payment"

// DraftLine is one cart line priced at checkout time.
type DraftLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Draft struct {
	UserID uuid.UUID       `json:"user_id"`
	Items  []DraftLine     `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Status string          `json:"status"`
}

// -------- Core Logic --------

// ActiveCart returns the user's active cart, creating it on first access.
func ActiveCart(db *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := db.Where("active_owner = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	owner := userID
	cart = models.Cart{UserID: userID, IsActive: true, ActiveOwner: &owner}
	if err := db.Create(&cart).Error; err != nil {
		// A concurrent request won the unique active_owner slot.
		var existing models.Cart
		if findErr := db.Where("active_owner = ?", userID).First(&existing).Error; findErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("create active cart: %w", err)
	}
	return &cart, nil
}

// lockCart serializes mutations of one cart and fails if it was checked out
// in the meantime.
func lockCart(tx *gorm.DB, cartID uuid.UUID) error {
	var cart models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", cartID, true).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("active cart: %w", models.ErrNotFound)
	}
	return err
}

func lockItem(tx *gorm.DB, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ViewCart returns the active cart with product details for display.
func ViewCart(db *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	cart, err := ActiveCart(db, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Preload("Items.Product").First(cart, "id = ?", cart.ID).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds qty units of a product to the active cart, merging into the
// existing line. The stock check covers the line's cumulative quantity.
func AddItem(db *gorm.DB, userID, productID uuid.UUID, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, models.NewValidationError("quantity", "Ensure this value is greater than or equal to 1.", "min")
	}
	cart, err := ActiveCart(db, userID)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, cart.ID); err != nil {
			return err
		}
		product, err := models.LockProduct(tx, productID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.NewValidationError("product", "Product not found.", "not_found")
			}
			return err
		}

		item, err := lockItem(tx, cart.ID, productID)
		switch {
		case err == nil:
			// Compared by subtraction so an oversized qty cannot wrap the sum.
			if qty > product.Quantity-item.Quantity {
				return &models.StockError{ProductID: product.ID, Name: product.Name, Available: product.Quantity, Requested: models.AddQuantity(item.Quantity, qty)}
			}
			return tx.Model(item).Update("quantity", item.Quantity+qty).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if qty > product.Quantity {
				return &models.StockError{ProductID: product.ID, Name: product.Name, Available: product.Quantity, Requested: qty}
			}
			return tx.Create(&models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty}).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return ViewCart(db, userID)
}

// UpdateQuantity sets the quantity of the line holding productID. The product
// row and the line are both locked before stock is compared, so concurrent
// updates against one product never read a stale count.
func UpdateQuantity(db *gorm.DB, userID, productID uuid.UUID, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, models.NewValidationError("quantity", "Ensure this value is greater than or equal to 1.", "min")
	}
	cart, err := ActiveCart(db, userID)
	if err != nil {
		return nil, err
	}

	var updated *models.CartItem
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, cart.ID); err != nil {
			return err
		}
		product, err := models.LockProduct(tx, productID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("cart item: %w", models.ErrNotFound)
			}
			return err
		}
		item, err := lockItem(tx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart item: %w", models.ErrNotFound)
			}
			return err
		}

		if qty > product.Quantity {
			return &models.StockError{ProductID: product.ID, Name: product.Name, Available: product.Quantity, Requested: qty}
		}
		if err := tx.Model(item).Update("quantity", qty).Error; err != nil {
			return err
		}
		item.Quantity = qty
		item.Product = *product
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveItem deletes a line by its id, scoped to the user's active cart.
func RemoveItem(db *gorm.DB, userID, itemID uuid.UUID) (*models.Cart, error) {
	cart, err := ActiveCart(db, userID)
	if err != nil {
		return nil, err
	}
	result := db.Where("cart_id = ? AND id = ?", cart.ID, itemID).Delete(&models.CartItem{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("cart item: %w", models.ErrNotFound)
	}
	return ViewCart(db, userID)
}

// DraftCheckout prices the active cart at current catalog prices and retires
// it. No order rows are written and stock is neither locked nor checked;
// orders placed through CreateOrder are the authoritative checkout.
func DraftCheckout(db *gorm.DB, userID uuid.UUID) (*Draft, error) {
	cart, err := ActiveCart(db, userID)
	if err != nil {
		return nil, err
	}

	draft := &Draft{UserID: userID, Items: []DraftLine{}, Total: decimal.Zero, Status: DraftStatusPendingPayment}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, cart.ID); err != nil {
			return err
		}
		var items []models.CartItem
		if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			lineTotal := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			draft.Total = draft.Total.Add(lineTotal)
			draft.Items = append(draft.Items, DraftLine{
				ProductID: it.ProductID,
				Name:      it.Product.Name,
				Qty:       it.Quantity,
				UnitPrice: it.Product.Price,
				LineTotal: lineTotal,
			})
		}
		return cart.Deactivate(tx)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}
