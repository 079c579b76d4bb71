package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milnali/shop-backend/pkg/enums"
)

// Region is a geographic delivery region.
type Region struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// DeliveryType is a configured delivery method. IsPriceFrom marks methods
// whose displayed price is a lower bound; such methods are quoted as zero
// and priced by the operator later.
type DeliveryType struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string                    `gorm:"column:title;not null"`
	PriceMethod enums.DeliveryPriceMethod `gorm:"column:price_method;not null"`
	Price       decimal.Decimal           `gorm:"column:price;type:numeric(11,2);not null;default:0"`
	IsPriceFrom bool                      `gorm:"column:is_price_from;not null;default:false"`
	IsActive    bool                      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

// DeliveryRegion prices a delivery type for one region. FreeDelivery, when
// set, is the items subtotal at which delivery becomes free.
type DeliveryRegion struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryTypeID uuid.UUID        `gorm:"column:delivery_type_id;type:uuid;not null;index:idx_delivery_region,unique"`
	RegionID       uuid.UUID        `gorm:"column:region_id;type:uuid;not null;index:idx_delivery_region,unique"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(11,2);not null;default:0"`
	FreeDelivery   *decimal.Decimal `gorm:"column:free_delivery;type:numeric(11,2)"`
	IsPublished    bool             `gorm:"column:is_published;not null;default:true"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// PaymentType is a configured payment method. CommissionPercent is folded
// into order totals; RetailCode is the payment type code in the CRM.
// Integration payment types are settled by a CRM-side integration, which
// owns the payment status there.
type PaymentType struct {
	ID                   uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title                string            `gorm:"column:title;not null"`
	PaymentKind          enums.PaymentKind `gorm:"column:payment_kind;not null"`
	CommissionPercent    decimal.Decimal   `gorm:"column:commission_percent;type:numeric(5,2);not null;default:0"`
	RetailCode           *string           `gorm:"column:retail_code"`
	IsIntegrationPayment bool              `gorm:"column:is_integration_payment;not null;default:false"`
	IsActive             bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// PickupPoint is a partner pickup location identified by a carrier code.
type PickupPoint struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Address   string    `gorm:"column:address;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// SelfPickupPoint is one of the retailer's own stores offering self pickup.
type SelfPickupPoint struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Address   string    `gorm:"column:address;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
