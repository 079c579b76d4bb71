package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milnali/shop-backend/pkg/db"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
	pkgerrors "github.com/milnali/shop-backend/pkg/errors"
)

// firstOrderSeed is what an empty orders table numbers from; the first order
// issued becomes "111".
const firstOrderSeed = 110

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "idx_orders_order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "order number already taken")
		}
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateStatusLog(ctx context.Context, log *models.OrderStatusLog) (*models.OrderStatusLog, error) {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

func (r *repository) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Omit("Items", "User", "Region", "DeliveryType", "PaymentType", "Coupon",
			"CouponEntry", "Status", "PickupPoint", "SelfPickupPoint").
		Save(order).Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Offer").
		Preload("User").
		Preload("Region").
		Preload("DeliveryType").
		Preload("PaymentType").
		Preload("Coupon").
		Preload("Status").
		Preload("PickupPoint").
		Preload("SelfPickupPoint").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Offer").
		Preload("PaymentType").
		Preload("Status").
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// NextOrderNumber issues the next sequential order number. Numbers are plain
// decimal strings, so the current maximum is found by ordering on length
// first and value second.
func (r *repository) NextOrderNumber(ctx context.Context) (string, error) {
	var last models.Order
	err := r.db.WithContext(ctx).
		Select("order_number").
		Order("length(order_number) DESC").
		Order("order_number DESC").
		First(&last).Error

	lastNumber := firstOrderSeed
	switch {
	case err == nil:
		parsed, parseErr := strconv.Atoi(last.OrderNumber)
		if parseErr != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, parseErr, "non-numeric order number "+last.OrderNumber)
		}
		lastNumber = parsed
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return "", err
	}

	return strconv.Itoa(lastNumber + 1), nil
}

func (r *repository) DefaultStatus(ctx context.Context) (*models.OrderStatus, error) {
	var status models.OrderStatus
	err := r.db.WithContext(ctx).
		Where("is_default = ?", true).
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repository) StatusesByRetailCode(ctx context.Context) (map[string]models.OrderStatus, error) {
	var statuses []models.OrderStatus
	err := r.db.WithContext(ctx).
		Where("retail_code IS NOT NULL").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]models.OrderStatus, len(statuses))
	for _, status := range statuses {
		byCode[*status.RetailCode] = status
	}
	return byCode, nil
}

func (r *repository) FindPaymentType(ctx context.Context, id uuid.UUID) (*models.PaymentType, error) {
	var paymentType models.PaymentType
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&paymentType).Error
	if err != nil {
		return nil, err
	}
	return &paymentType, nil
}

func (r *repository) FindDeliveryType(ctx context.Context, id uuid.UUID) (*models.DeliveryType, error) {
	var deliveryType models.DeliveryType
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&deliveryType).Error
	if err != nil {
		return nil, err
	}
	return &deliveryType, nil
}

func (r *repository) FindDeliveryRegion(ctx context.Context, deliveryTypeID, regionID uuid.UUID) (*models.DeliveryRegion, error) {
	var region models.DeliveryRegion
	err := r.db.WithContext(ctx).
		Where("delivery_type_id = ? AND region_id = ? AND is_published = ?", deliveryTypeID, regionID, true).
		First(&region).Error
	if err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *repository) FindOffer(ctx context.Context, id uuid.UUID) (*models.ProductOffer, error) {
	var offer models.ProductOffer
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) FindCouponByPassphrase(ctx context.Context, passphrase string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("passphrase = ?", passphrase).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) CreateCouponEntry(ctx context.Context, entry *models.CouponEntry) (*models.CouponEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ?", entry.CouponID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// FindUnpaidOnlineSince selects orders eligible for the payment status sweep:
// not paid, settled through one of the given online kinds, created inside the
// window, and already registered with a gateway.
func (r *repository) FindUnpaidOnlineSince(ctx context.Context, since time.Time, kinds []enums.PaymentKind) ([]models.Order, error) {
	var matches []models.Order
	err := r.db.WithContext(ctx).
		Joins("JOIN payment_types ON payment_types.id = orders.payment_type_id").
		Preload("PaymentType").
		Where("orders.payment_status = ?", enums.PaymentStatusNotPaid).
		Where("payment_types.payment_kind IN ?", kinds).
		Where("orders.created_at >= ?", since).
		Where("orders.payment_gateway_order_id IS NOT NULL").
		Order("orders.created_at ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// FindUnsyncedWithCRM selects orders not yet mirrored into the CRM, skipping
// order numbers with synthetic prefixes.
func (r *repository) FindUnsyncedWithCRM(ctx context.Context, excludedPrefixes []string) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items.Offer").
		Preload("User").
		Preload("Region").
		Preload("DeliveryType").
		Preload("PaymentType").
		Preload("Coupon").
		Preload("PickupPoint").
		Preload("SelfPickupPoint").
		Where("retailcrm_id IS NULL")

	for _, prefix := range excludedPrefixes {
		query = query.Where("order_number NOT LIKE ?", prefix+"%")
	}

	var matches []models.Order
	if err := query.Order("created_at ASC").Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *repository) FindSyncedCRMIDs(ctx context.Context, since time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN order_statuses ON order_statuses.id = orders.status_id").
		Where("orders.retailcrm_id IS NOT NULL").
		Where("orders.created_at >= ?", since).
		Where("order_statuses.is_stop = ?", false).
		Pluck("orders.retailcrm_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) FindByRetailCRMID(ctx context.Context, retailCRMID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Status").
		Where("retailcrm_id = ?", retailCRMID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ClaimRetailCRMID records the CRM-issued id, but only when no id has been
// claimed yet. Returns false when another sweep got there first.
func (r *repository) ClaimRetailCRMID(ctx context.Context, orderID uuid.UUID, retailCRMID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND retailcrm_id IS NULL", orderID).
		UpdateColumn("retailcrm_id", retailCRMID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
