package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	SellerID    uuid.UUID       `gorm:"type:char(36);index;not null" json:"seller_id"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	InStock     bool            `gorm:"not null" json:"in_stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the availability flag derived from the stock count.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Quantity < 0 {
		return fmt.Errorf("product %s: quantity cannot be negative", p.ID)
	}
	p.InStock = p.Quantity > 0
	return nil
}

// Deduct removes qty units from a product previously locked by ReserveStock.
// The caller persists the product inside the same transaction.
func (p *Product) Deduct(qty int) error {
	if qty > p.Quantity {
		return &StockError{ProductID: p.ID, Name: p.Name, Available: p.Quantity, Requested: qty}
	}
	p.Quantity -= qty
	p.InStock = p.Quantity > 0
	return nil
}

// LockProduct loads a product row with SELECT ... FOR UPDATE. Concurrent
// callers block until the holding transaction commits or rolls back.
func LockProduct(tx *gorm.DB, id uuid.UUID) (*Product, error) {
	var product Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &product, nil
}

// ReserveStock locks the product and verifies qty units are available. It
// does not decrement; use Deduct on the returned product.
func ReserveStock(tx *gorm.DB, id uuid.UUID, qty int) (*Product, error) {
	product, err := LockProduct(tx, id)
	if err != nil {
		return nil, err
	}
	if !product.InStock || qty > product.Quantity {
		return nil, &StockError{ProductID: product.ID, Name: product.Name, Available: product.Quantity, Requested: qty}
	}
	return product, nil
}

// AddQuantity sums two non-negative counts, saturating at math.MaxInt so a
// huge request can never wrap into a negative total.
func AddQuantity(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
