package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductOffer is the sellable variant of a catalog product. BasePrice is
// the catalog price before any sale markdown; Price is what the buyer pays.
type ProductOffer struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductUUID uuid.UUID       `gorm:"column:product_uuid;type:uuid;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(11,2);not null;default:0"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(11,2);not null;default:0"`
	ColorValue  *string         `gorm:"column:color_value"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// XMLID is the composite identifier the CRM uses to match catalog offers.
func (p *ProductOffer) XMLID() string {
	return fmt.Sprintf("%s#%s", p.ProductUUID, p.ID)
}
