package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"

	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentPayPal         PaymentMethod = "paypal" // settled outside this service
)

type Order struct {
	ID     uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:char(36);index;not null" json:"user_id"`

	FullName string `gorm:"size:120;not null" json:"full_name"`
	Phone    string `gorm:"size:32;not null" json:"phone"`
	Street   string `gorm:"size:255;not null" json:"street"`
	City     string `gorm:"size:120;not null" json:"city"`
	ZipCode  string `gorm:"size:20;not null" json:"zip_code"`

	PaymentMethod PaymentMethod `gorm:"type:VARCHAR(12);not null" json:"payment_method"`
	Status        OrderStatus   `gorm:"type:VARCHAR(16);not null" json:"status"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Shipping decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping"`
	Discount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	Note      string      `json:"note"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ApplyTotals recomputes subtotal and total from the line snapshots.
func (o *Order) ApplyTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Shipping).Sub(o.Discount)
}

// MoneyPlaces is the scale of every money column.
const MoneyPlaces = 2

// CheckMoney rejects amounts finer than the money columns can store, so the
// stored total always equals subtotal + shipping - discount.
func CheckMoney(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyPlaces)) {
		return NewValidationError(field, "Ensure that there are no more than 2 decimal places.", "max_decimal_places")
	}
	return nil
}

// OrderItem snapshots the unit price at purchase time; later catalog price
// changes never touch it.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:char(36);index;not null" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:char(36);index;not null" json:"product"`
	Product   Product         `gorm:"constraint:OnDelete:RESTRICT" json:"product_details"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

const EventOrderCreated = "order.created"

// OrderEvent is published once an order has been committed.
type OrderEvent struct {
	OrderID  uuid.UUID       `json:"order_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Type     string          `json:"type"`
	Status   OrderStatus     `json:"status"`
	Total    decimal.Decimal `json:"total"`
	Occurred time.Time       `json:"occurred"`
}

func NewOrderEvent(order *Order, eventType string) OrderEvent {
	return OrderEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Type:     eventType,
		Status:   order.Status,
		Total:    order.Total,
		Occurred: time.Now().UTC(),
	}
}
