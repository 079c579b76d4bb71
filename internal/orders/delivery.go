package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// DeliveryQuote resolves the delivery cost for a delivery type in a region.
// A nil amount means the cost cannot be quoted and stays open for the
// operator to price manually.
func (s *service) DeliveryQuote(ctx context.Context, deliveryType *models.DeliveryType, regionID *uuid.UUID, itemsAmount decimal.Decimal) *decimal.Decimal {
	if deliveryType == nil {
		return nil
	}

	switch deliveryType.PriceMethod {
	case enums.DeliveryPriceAlwaysFree:
		zero := decimal.Zero
		return &zero

	case enums.DeliveryPriceFixed:
		price := deliveryType.Price
		return &price

	case enums.DeliveryPricePerRegion:
		if regionID == nil {
			return nil
		}
		region, err := s.repo.FindDeliveryRegion(ctx, deliveryType.ID, *regionID)
		if err != nil {
			return nil
		}
		if deliveryType.IsPriceFrom || IsFreeDelivery(itemsAmount, region, deliveryType) {
			zero := decimal.Zero
			return &zero
		}
		price := region.Price
		return &price
	}

	return nil
}

// IsFreeDelivery reports whether the items subtotal clears the region's
// free-delivery threshold. Lower-bound priced methods never qualify.
func IsFreeDelivery(itemsAmount decimal.Decimal, region *models.DeliveryRegion, deliveryType *models.DeliveryType) bool {
	if deliveryType == nil || deliveryType.IsPriceFrom {
		return false
	}
	if region == nil || region.FreeDelivery == nil {
		return false
	}
	return itemsAmount.GreaterThanOrEqual(*region.FreeDelivery)
}
