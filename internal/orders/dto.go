package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemInput is one priced line of a checkout.
type CreateItemInput struct {
	OfferID  *uuid.UUID      `validate:"omitempty"`
	CardID   *uuid.UUID      `validate:"omitempty"`
	Price    decimal.Decimal `validate:"required"`
	Quantity int             `validate:"required,gt=0"`
	Size     string          `validate:"omitempty,max=32"`
}

// CreateInput captures everything needed to place an order.
type CreateInput struct {
	UserID            *uuid.UUID
	RegionID          *uuid.UUID
	DeliveryTypeID    *uuid.UUID
	PaymentTypeID     uuid.UUID `validate:"required"`
	PickupPointID     *uuid.UUID
	SelfPickupPointID *uuid.UUID

	FirstName string  `validate:"required,max=100"`
	LastName  *string `validate:"omitempty,max=100"`
	Phone     string  `validate:"required,max=32"`
	Email     *string `validate:"omitempty,email"`
	Comment   *string

	Locality  *string
	Postcode  *string
	Street    *string
	Housing   *string
	Building  *string
	Apartment *string

	IsFastOrder    bool
	Congratulation *string
	DeliveryDate   *time.Time
	DeliveryTime   *string

	CouponPassphrase *string
	Bonuses          *decimal.Decimal

	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMContent  *string
	UTMTerm     *string

	Items []CreateItemInput `validate:"required,min=1,dive"`
}
