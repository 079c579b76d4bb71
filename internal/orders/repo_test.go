package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  alt_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  user_id TEXT,
  region_id TEXT,
  delivery_type_id TEXT,
  payment_type_id TEXT,
  coupon_id TEXT,
  coupon_entry_id TEXT,
  status_id TEXT NOT NULL,
  pickup_point_id TEXT,
  self_pickup_point_id TEXT,
  first_name TEXT NOT NULL,
  last_name TEXT,
  phone TEXT NOT NULL,
  email TEXT,
  comment TEXT,
  locality TEXT,
  postcode TEXT,
  street TEXT,
  housing TEXT,
  building TEXT,
  apartment TEXT,
  is_fast_order INTEGER NOT NULL DEFAULT 0,
  congratulation TEXT,
  delivery_date DATE,
  delivery_time TEXT,
  items_amount NUMERIC NOT NULL DEFAULT 0,
  coupon_amount NUMERIC NOT NULL DEFAULT 0,
  delivery_amount NUMERIC,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  commission NUMERIC NOT NULL DEFAULT 0,
  bonus_amount NUMERIC,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  income NUMERIC,
  payment_status INTEGER NOT NULL DEFAULT 0,
  payment_gateway_order_id TEXT,
  payment_error_code TEXT,
  payment_error_message TEXT,
  last_payment_attempt DATETIME,
  retailcrm_id INTEGER,
  retail_crm_log TEXT,
  utm_source TEXT,
  utm_medium TEXT,
  utm_campaign TEXT,
  utm_content TEXT,
  utm_term TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  offer_id TEXT,
  card_id TEXT,
  quantity INTEGER NOT NULL DEFAULT 1,
  price NUMERIC NOT NULL DEFAULT 0,
  size TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_statuses (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  title TEXT NOT NULL,
  retail_code TEXT,
  is_default INTEGER NOT NULL DEFAULT 0,
  is_stop INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE order_status_logs (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status_id TEXT NOT NULL,
  comment TEXT,
  send_email INTEGER NOT NULL DEFAULT 1,
  is_email_sent INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE payment_types (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  payment_kind TEXT NOT NULL,
  commission_percent NUMERIC NOT NULL DEFAULT 0,
  retail_code TEXT,
  is_integration_payment INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
		`CREATE TABLE coupons (
  id TEXT PRIMARY KEY,
  passphrase TEXT NOT NULL,
  discount_type TEXT NOT NULL,
  discount_value NUMERIC NOT NULL,
  price_base TEXT NOT NULL DEFAULT 'sale_price',
  delivery_discount_type TEXT,
  delivery_discount_value NUMERIC,
  min_items_amount NUMERIC,
  usage_limit INTEGER,
  usage_count INTEGER NOT NULL DEFAULT 0,
  user_id TEXT,
  starts_at DATETIME,
  expires_at DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE coupon_entries (
  id TEXT PRIMARY KEY,
  coupon_id TEXT NOT NULL,
  user_id TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE delivery_regions (
  id TEXT PRIMARY KEY,
  delivery_type_id TEXT NOT NULL,
  region_id TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  free_delivery NUMERIC,
  is_published INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
		`CREATE TABLE product_offers (
  id TEXT PRIMARY KEY,
  product_uuid TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  base_price NUMERIC NOT NULL DEFAULT 0,
  color_value TEXT,
  created_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertStatus(t *testing.T, db *gorm.DB, code string, isDefault bool) *models.OrderStatus {
	t.Helper()
	status := &models.OrderStatus{ID: uuid.New(), Code: code, Title: code, IsDefault: isDefault}
	require.NoError(t, db.Create(status).Error)
	return status
}

func insertPaymentType(t *testing.T, db *gorm.DB, kind enums.PaymentKind) *models.PaymentType {
	t.Helper()
	paymentType := &models.PaymentType{ID: uuid.New(), Title: string(kind), PaymentKind: kind, IsActive: true}
	require.NoError(t, db.Create(paymentType).Error)
	return paymentType
}

func insertOrder(t *testing.T, db *gorm.DB, order *models.Order) *models.Order {
	t.Helper()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.AltID == "" {
		order.AltID = uuid.NewString()
	}
	if order.FirstName == "" {
		order.FirstName = "Anna"
	}
	if order.Phone == "" {
		order.Phone = "+79990000000"
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestNextOrderNumberEmptyTable(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	number, err := repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111", number)
}

func TestNextOrderNumberOrdersByLengthThenValue(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	status := insertStatus(t, db, "new", true)

	insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "109"})
	insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "12"})

	number, err := repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "110", number)
}

func TestNextOrderNumberPrefersLongerNumbers(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	status := insertStatus(t, db, "new", true)

	insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "999"})
	insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "1000"})

	number, err := repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1001", number)
}

func TestClaimRetailCRMIDWriteOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	status := insertStatus(t, db, "new", true)
	order := insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "111"})

	claimed, err := repo.ClaimRetailCRMID(context.Background(), order.ID, 42)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimRetailCRMID(context.Background(), order.ID, 43)
	require.NoError(t, err)
	assert.False(t, claimed)

	found, err := repo.FindByRetailCRMID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestFindUnpaidOnlineSince(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	status := insertStatus(t, db, "new", true)
	online := insertPaymentType(t, db, enums.PaymentKindYookassa)
	offline := insertPaymentType(t, db, enums.PaymentKindCash)

	gatewayID := "pay-1"
	recent := time.Now().Add(-time.Hour)
	stale := time.Now().Add(-48 * time.Hour)

	match := insertOrder(t, db, &models.Order{
		StatusID: status.ID, OrderNumber: "111",
		PaymentTypeID: &online.ID, PaymentGatewayOrderID: &gatewayID,
		CreatedAt: recent,
	})
	// paid already
	insertOrder(t, db, &models.Order{
		StatusID: status.ID, OrderNumber: "112",
		PaymentTypeID: &online.ID, PaymentGatewayOrderID: &gatewayID,
		PaymentStatus: enums.PaymentStatusPaid, CreatedAt: recent,
	})
	// offline kind
	insertOrder(t, db, &models.Order{
		StatusID: status.ID, OrderNumber: "113",
		PaymentTypeID: &offline.ID, PaymentGatewayOrderID: &gatewayID,
		CreatedAt: recent,
	})
	// outside the window
	insertOrder(t, db, &models.Order{
		StatusID: status.ID, OrderNumber: "114",
		PaymentTypeID: &online.ID, PaymentGatewayOrderID: &gatewayID,
		CreatedAt: stale,
	})
	// never registered with a gateway
	insertOrder(t, db, &models.Order{
		StatusID: status.ID, OrderNumber: "115",
		PaymentTypeID: &online.ID, CreatedAt: recent,
	})

	matches, err := repo.FindUnpaidOnlineSince(context.Background(), time.Now().Add(-24*time.Hour), enums.OnlinePaymentKinds())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, match.ID, matches[0].ID)
	require.NotNil(t, matches[0].PaymentType)
	assert.Equal(t, enums.PaymentKindYookassa, matches[0].PaymentType.PaymentKind)
}

func TestFindUnsyncedWithCRMSkipsSyntheticPrefixes(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	status := insertStatus(t, db, "new", true)

	keep := insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "111"})
	insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "m200"})
	insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "t201"})

	synced := int64(7)
	insertOrder(t, db, &models.Order{StatusID: status.ID, OrderNumber: "112", RetailCRMID: &synced})

	matches, err := repo.FindUnsyncedWithCRM(context.Background(), []string{"m", "t"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, keep.ID, matches[0].ID)
}

func TestFindSyncedCRMIDsSkipsStopStatuses(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	active := insertStatus(t, db, "new", true)
	stop := &models.OrderStatus{ID: uuid.New(), Code: "done", Title: "done", IsStop: true}
	require.NoError(t, db.Create(stop).Error)

	syncedID := int64(42)
	stoppedID := int64(43)
	insertOrder(t, db, &models.Order{StatusID: active.ID, OrderNumber: "111", RetailCRMID: &syncedID, CreatedAt: time.Now()})
	insertOrder(t, db, &models.Order{StatusID: stop.ID, OrderNumber: "112", RetailCRMID: &stoppedID, CreatedAt: time.Now()})
	insertOrder(t, db, &models.Order{StatusID: active.ID, OrderNumber: "113", CreatedAt: time.Now()})

	ids, err := repo.FindSyncedCRMIDs(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, ids)
}

func TestStatusesByRetailCode(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	code := "assembling"
	status := &models.OrderStatus{ID: uuid.New(), Code: "assembling", Title: "Assembling", RetailCode: &code}
	require.NoError(t, db.Create(status).Error)
	insertStatus(t, db, "new", true)

	byCode, err := repo.StatusesByRetailCode(context.Background())
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, status.ID, byCode["assembling"].ID)
}

func TestCreateCouponEntryIncrementsUsage(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Passphrase:    "WELCOME",
		DiscountType:  enums.CouponDiscountFixed,
		DiscountValue: decimal.NewFromInt(100),
		PriceBase:     enums.CouponPriceBaseSale,
		IsActive:      true,
	}
	require.NoError(t, db.Create(coupon).Error)

	entry, err := repo.CreateCouponEntry(context.Background(), &models.CouponEntry{ID: uuid.New(), CouponID: coupon.ID})
	require.NoError(t, err)
	require.NotNil(t, entry)

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsageCount)
}

func TestFindPaymentTypeSkipsInactive(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	inactive := &models.PaymentType{ID: uuid.New(), Title: "old", PaymentKind: enums.PaymentKindCash, IsActive: false}
	require.NoError(t, db.Create(inactive).Error)

	_, err := repo.FindPaymentType(context.Background(), inactive.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
