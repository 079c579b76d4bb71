package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateStatusLog(ctx context.Context, log *models.OrderStatusLog) (*models.OrderStatusLog, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
	NextOrderNumber(ctx context.Context) (string, error)
	DefaultStatus(ctx context.Context) (*models.OrderStatus, error)
	FindPaymentType(ctx context.Context, id uuid.UUID) (*models.PaymentType, error)
	FindDeliveryType(ctx context.Context, id uuid.UUID) (*models.DeliveryType, error)
	StatusesByRetailCode(ctx context.Context) (map[string]models.OrderStatus, error)
	FindDeliveryRegion(ctx context.Context, deliveryTypeID, regionID uuid.UUID) (*models.DeliveryRegion, error)
	FindOffer(ctx context.Context, id uuid.UUID) (*models.ProductOffer, error)
	FindCouponByPassphrase(ctx context.Context, passphrase string) (*models.Coupon, error)
	CreateCouponEntry(ctx context.Context, entry *models.CouponEntry) (*models.CouponEntry, error)
	FindUnpaidOnlineSince(ctx context.Context, since time.Time, kinds []enums.PaymentKind) ([]models.Order, error)
	FindUnsyncedWithCRM(ctx context.Context, excludedPrefixes []string) ([]models.Order, error)
	FindSyncedCRMIDs(ctx context.Context, since time.Time) ([]int64, error)
	FindByRetailCRMID(ctx context.Context, retailCRMID int64) (*models.Order, error)
	ClaimRetailCRMID(ctx context.Context, orderID uuid.UUID, retailCRMID int64) (bool, error)
}
