package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milnali/shop-backend/pkg/enums"
)

// Order is the aggregate root of a checkout. Money columns are fixed-point
// with two fraction digits; totals are recomputed from line items on every
// persist, never hand-patched.
type Order struct {
	ID    uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AltID string    `gorm:"column:alt_id;type:text;not null;uniqueIndex"`

	OrderNumber string `gorm:"column:order_number;type:varchar(12);not null;uniqueIndex"`

	UserID           *uuid.UUID `gorm:"column:user_id;type:uuid"`
	User             *User      `gorm:"foreignKey:UserID"`
	RegionID         *uuid.UUID `gorm:"column:region_id;type:uuid"`
	Region           *Region    `gorm:"foreignKey:RegionID"`
	DeliveryTypeID   *uuid.UUID `gorm:"column:delivery_type_id;type:uuid"`
	DeliveryType     *DeliveryType
	PaymentTypeID    *uuid.UUID `gorm:"column:payment_type_id;type:uuid"`
	PaymentType      *PaymentType
	CouponID         *uuid.UUID `gorm:"column:coupon_id;type:uuid"`
	Coupon           *Coupon
	CouponEntryID    *uuid.UUID `gorm:"column:coupon_entry_id;type:uuid"`
	CouponEntry      *CouponEntry
	StatusID         uuid.UUID    `gorm:"column:status_id;type:uuid;not null"`
	Status           *OrderStatus `gorm:"foreignKey:StatusID"`
	PickupPointID    *uuid.UUID   `gorm:"column:pickup_point_id;type:uuid"`
	PickupPoint      *PickupPoint
	SelfPickupPointID *uuid.UUID `gorm:"column:self_pickup_point_id;type:uuid"`
	SelfPickupPoint   *SelfPickupPoint

	FirstName string  `gorm:"column:first_name;not null"`
	LastName  *string `gorm:"column:last_name"`
	Phone     string  `gorm:"column:phone;not null"`
	Email     *string `gorm:"column:email"`
	Comment   *string `gorm:"column:comment"`

	Locality  *string `gorm:"column:locality"`
	Postcode  *string `gorm:"column:postcode"`
	Street    *string `gorm:"column:street"`
	Housing   *string `gorm:"column:housing"`
	Building  *string `gorm:"column:building"`
	Apartment *string `gorm:"column:apartment"`

	IsFastOrder    bool       `gorm:"column:is_fast_order;not null;default:false"`
	Congratulation *string    `gorm:"column:congratulation"`
	DeliveryDate   *time.Time `gorm:"column:delivery_date;type:date"`
	DeliveryTime   *string    `gorm:"column:delivery_time"`

	ItemsAmount    decimal.Decimal  `gorm:"column:items_amount;type:numeric(11,2);not null;default:0"`
	CouponAmount   decimal.Decimal  `gorm:"column:coupon_amount;type:numeric(11,2);not null;default:0"`
	DeliveryAmount *decimal.Decimal `gorm:"column:delivery_amount;type:numeric(11,2)"`
	DiscountAmount decimal.Decimal  `gorm:"column:discount_amount;type:numeric(11,2);not null;default:0"`
	Commission     decimal.Decimal  `gorm:"column:commission;type:numeric(11,2);not null;default:0"`
	BonusAmount    *decimal.Decimal `gorm:"column:bonus_amount;type:numeric(11,2)"`
	TotalAmount    decimal.Decimal  `gorm:"column:total_amount;type:numeric(11,2);not null;default:0"`
	Income         *decimal.Decimal `gorm:"column:income;type:numeric(11,2)"`

	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:smallint;not null;default:0"`
	PaymentGatewayOrderID *string             `gorm:"column:payment_gateway_order_id;type:varchar(64)"`
	PaymentErrorCode      *string             `gorm:"column:payment_error_code;type:varchar(20)"`
	PaymentErrorMessage   *string             `gorm:"column:payment_error_message"`
	LastPaymentAttempt    *time.Time          `gorm:"column:last_payment_attempt"`

	RetailCRMID  *int64  `gorm:"column:retailcrm_id"`
	RetailCRMLog *string `gorm:"column:retail_crm_log"`

	UTMSource   *string `gorm:"column:utm_source;index"`
	UTMMedium   *string `gorm:"column:utm_medium;index"`
	UTMCampaign *string `gorm:"column:utm_campaign;index"`
	UTMContent  *string `gorm:"column:utm_content;index"`
	UTMTerm     *string `gorm:"column:utm_term;index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// addressParts lists the free-text address fields in composition order with
// their label prefixes. Labels are empty for this storefront's locale.
var addressParts = []struct {
	label string
	field func(o *Order) *string
}{
	{"", func(o *Order) *string { return o.Locality }},
	{"", func(o *Order) *string { return o.Postcode }},
	{"", func(o *Order) *string { return o.Street }},
	{"", func(o *Order) *string { return o.Building }},
	{"", func(o *Order) *string { return o.Apartment }},
}

// AddressFull composes the free-text courier address from the populated
// address fields, in a stable order.
func (o *Order) AddressFull() string {
	parts := make([]string, 0, len(addressParts))
	for _, part := range addressParts {
		value := part.field(o)
		if value == nil || *value == "" {
			continue
		}
		if part.label != "" {
			parts = append(parts, part.label+" "+*value)
			continue
		}
		parts = append(parts, *value)
	}
	return strings.Join(parts, ", ")
}

// IsPrepaid reports whether the order is settled through an online gateway.
// Requires PaymentType to be loaded.
func (o *Order) IsPrepaid() bool {
	return o.PaymentType != nil && o.PaymentType.PaymentKind.IsOnline()
}

// GatewayReference is the identifier registered with payment gateways. Test
// environments carry a prefix so provider dashboards can tell them apart.
func (o *Order) GatewayReference(testMode bool) string {
	if testMode {
		return "test-" + o.OrderNumber
	}
	return o.OrderNumber
}

// FullName joins the contact first/last name, falling back to the owning
// user's profile when the order carries none.
func (o *Order) FullName() string {
	parts := make([]string, 0, 2)
	if o.FirstName != "" {
		parts = append(parts, o.FirstName)
	}
	if o.LastName != nil && *o.LastName != "" {
		parts = append(parts, *o.LastName)
	}
	if len(parts) == 0 && o.User != nil {
		return o.User.FullName()
	}
	return strings.Join(parts, " ")
}

// HasIncome reports whether a non-zero income has already been captured from
// a gateway deposit read.
func (o *Order) HasIncome() bool {
	return o.Income != nil && !o.Income.IsZero()
}
