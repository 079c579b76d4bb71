package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milnali/shop-backend/pkg/enums"
)

// Coupon is a redeemable discount policy applied to items and, optionally,
// delivery cost.
type Coupon struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Passphrase string    `gorm:"column:passphrase;not null;uniqueIndex"`

	DiscountType  enums.CouponDiscountType `gorm:"column:discount_type;not null"`
	DiscountValue decimal.Decimal          `gorm:"column:discount_value;type:numeric(11,2);not null"`
	// PriceBase matters only for percentage coupons: catalog-base coupons are
	// computed against pre-markdown prices so sale items do not double-dip.
	PriceBase enums.CouponPriceBase `gorm:"column:price_base;not null;default:'sale_price'"`

	DeliveryDiscountType  *enums.CouponDiscountType `gorm:"column:delivery_discount_type"`
	DeliveryDiscountValue *decimal.Decimal          `gorm:"column:delivery_discount_value;type:numeric(11,2)"`

	MinItemsAmount *decimal.Decimal `gorm:"column:min_items_amount;type:numeric(11,2)"`
	UsageLimit     *int             `gorm:"column:usage_limit"`
	UsageCount     int              `gorm:"column:usage_count;not null;default:0"`
	UserID         *uuid.UUID       `gorm:"column:user_id;type:uuid"`
	StartsAt       *time.Time       `gorm:"column:starts_at"`
	ExpiresAt      *time.Time       `gorm:"column:expires_at"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CouponEntry records a single redemption of a coupon; each entry belongs to
// exactly one order.
type CouponEntry struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID  uuid.UUID  `gorm:"column:coupon_id;type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
