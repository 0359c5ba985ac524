package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Cart struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:char(36);index;not null" json:"user_id"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`
	// ActiveOwner mirrors UserID while the cart is active and is NULL after
	// checkout, so the unique index allows exactly one active cart per user.
	ActiveOwner *uuid.UUID `gorm:"type:char(36);uniqueIndex" json:"-"`
	Items       []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Deactivate detaches the cart from its owner's active slot.
func (c *Cart) Deactivate(tx *gorm.DB) error {
	c.IsActive = false
	c.ActiveOwner = nil
	return tx.Model(c).Updates(map[string]interface{}{"is_active": false, "active_owner": nil}).Error
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_cart_product" json:"product"`
	Product   Product   `gorm:"constraint:OnDelete:CASCADE" json:"product_details"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
