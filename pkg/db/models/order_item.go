package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a line item snapshot taken at checkout. Price and quantity
// are immutable after creation.
type OrderItem struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	OfferID *uuid.UUID    `gorm:"column:offer_id;type:uuid"`
	Offer   *ProductOffer `gorm:"foreignKey:OfferID"`
	CardID  *uuid.UUID    `gorm:"column:card_id;type:uuid"`

	Quantity int             `gorm:"column:quantity;not null;default:1"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(11,2);not null;default:0"`
	Size     string          `gorm:"column:size"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalAmount is the derived line total, never persisted.
func (i *OrderItem) TotalAmount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
