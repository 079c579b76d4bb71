package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/milnali/shop-backend/internal/coupons"
	"github.com/milnali/shop-backend/internal/pricing"
	"github.com/milnali/shop-backend/pkg/db/models"
	pkgerrors "github.com/milnali/shop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	AppendStatusLog(ctx context.Context, tx *gorm.DB, order *models.Order, status *models.OrderStatus, comment *string, sendEmail bool) (*models.OrderStatusLog, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	pricing  pricing.Engine
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds the order service.
func NewService(tx txRunner, repo Repository, engine pricing.Engine) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		pricing:  engine,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

// Create validates and prices the checkout, then persists the order, its
// items, the coupon redemption and the initial status log in one transaction.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order input")
	}

	paymentType, err := s.repo.FindPaymentType(ctx, input.PaymentTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment type not found")
		}
		return nil, err
	}

	itemsAmount := decimal.Zero
	lines := make([]pricing.Line, 0, len(input.Items))
	for _, item := range input.Items {
		line := pricing.Line{Price: item.Price, BasePrice: item.Price, Quantity: item.Quantity}
		if item.OfferID != nil {
			if offer := s.findOffer(ctx, *item.OfferID); offer != nil && offer.BasePrice.IsPositive() {
				line.BasePrice = offer.BasePrice
			}
		}
		lines = append(lines, line)
		itemsAmount = itemsAmount.Add(line.Total())
	}

	var coupon *models.Coupon
	if input.CouponPassphrase != nil && *input.CouponPassphrase != "" {
		coupon, err = s.resolveCoupon(ctx, *input.CouponPassphrase, input.UserID, itemsAmount)
		if err != nil {
			return nil, err
		}
	}

	var deliveryAmount *decimal.Decimal
	if input.DeliveryTypeID != nil {
		deliveryType, err := s.repo.FindDeliveryType(ctx, *input.DeliveryTypeID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if deliveryType != nil {
			deliveryAmount = s.DeliveryQuote(ctx, deliveryType, input.RegionID, itemsAmount)
		}
	}

	amounts := s.pricing.ComputeAmounts(lines, itemsAmount, pricing.Params{
		DeliveryAmount: deliveryAmount,
		Coupon:         coupon,
		Bonuses:        input.Bonuses,
	})

	defaultStatus, err := s.repo.DefaultStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "no default order status configured")
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := repo.NextOrderNumber(ctx)
		if err != nil {
			return err
		}

		order := &models.Order{
			AltID:          uuid.NewString(),
			OrderNumber:    number,
			UserID:         input.UserID,
			RegionID:       input.RegionID,
			DeliveryTypeID: input.DeliveryTypeID,
			PaymentTypeID:  &paymentType.ID,
			StatusID:       defaultStatus.ID,

			PickupPointID:     input.PickupPointID,
			SelfPickupPointID: input.SelfPickupPointID,

			FirstName: input.FirstName,
			LastName:  input.LastName,
			Phone:     input.Phone,
			Email:     input.Email,
			Comment:   input.Comment,

			Locality:  input.Locality,
			Postcode:  input.Postcode,
			Street:    input.Street,
			Housing:   input.Housing,
			Building:  input.Building,
			Apartment: input.Apartment,

			IsFastOrder:    input.IsFastOrder,
			Congratulation: input.Congratulation,
			DeliveryDate:   input.DeliveryDate,
			DeliveryTime:   input.DeliveryTime,

			ItemsAmount:    amounts.Items,
			CouponAmount:   amounts.Coupon,
			DeliveryAmount: deliveryAmountOrComputed(deliveryAmount, amounts.Delivery),
			DiscountAmount: amounts.Discount,
			BonusAmount:    input.Bonuses,
			TotalAmount:    amounts.Total,

			UTMSource:   input.UTMSource,
			UTMMedium:   input.UTMMedium,
			UTMCampaign: input.UTMCampaign,
			UTMContent:  input.UTMContent,
			UTMTerm:     input.UTMTerm,
		}

		if coupon != nil {
			entry, err := repo.CreateCouponEntry(ctx, &models.CouponEntry{
				CouponID: coupon.ID,
				UserID:   input.UserID,
			})
			if err != nil {
				return err
			}
			order.CouponID = &coupon.ID
			order.CouponEntryID = &entry.ID
		}

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.OrderItem{
				OrderID:  order.ID,
				OfferID:  item.OfferID,
				CardID:   item.CardID,
				Price:    item.Price,
				Quantity: item.Quantity,
				Size:     item.Size,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return err
		}

		if _, err := s.appendStatusLog(ctx, repo, order, defaultStatus, nil, true); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AppendStatusLog records a status change and applies it to the order in the
// same transaction. The log row is written even when the order already
// carries the status; applying is unconditional.
func (s *service) AppendStatusLog(ctx context.Context, tx *gorm.DB, order *models.Order, status *models.OrderStatus, comment *string, sendEmail bool) (*models.OrderStatusLog, error) {
	return s.appendStatusLog(ctx, s.repo.WithTx(tx), order, status, comment, sendEmail)
}

func (s *service) appendStatusLog(ctx context.Context, repo Repository, order *models.Order, status *models.OrderStatus, comment *string, sendEmail bool) (*models.OrderStatusLog, error) {
	log, err := repo.CreateStatusLog(ctx, &models.OrderStatusLog{
		OrderID:   order.ID,
		StatusID:  status.ID,
		Comment:   comment,
		SendEmail: sendEmail,
	})
	if err != nil {
		return nil, err
	}

	if err := s.applyStatus(ctx, repo, order, status); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *service) applyStatus(ctx context.Context, repo Repository, order *models.Order, status *models.OrderStatus) error {
	if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status_id": status.ID}); err != nil {
		return err
	}
	order.StatusID = status.ID
	order.Status = status
	return nil
}

func (s *service) resolveCoupon(ctx context.Context, passphrase string, userID *uuid.UUID, itemsAmount decimal.Decimal) (*models.Coupon, error) {
	coupon, err := s.repo.FindCouponByPassphrase(ctx, passphrase)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon not found")
		}
		return nil, err
	}

	if err := coupons.Validate(coupon, coupons.ValidateArgs{
		UserID:      userID,
		ItemsAmount: itemsAmount,
		Now:         s.now(),
	}); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *service) findOffer(ctx context.Context, id uuid.UUID) *models.ProductOffer {
	offer, err := s.repo.FindOffer(ctx, id)
	if err != nil {
		return nil
	}
	return offer
}

func deliveryAmountOrComputed(requested *decimal.Decimal, computed decimal.Decimal) *decimal.Decimal {
	if requested == nil {
		return nil
	}
	return &computed
}
