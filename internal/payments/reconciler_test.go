package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/milnali/shop-backend/internal/orders"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
	pkgerrors "github.com/milnali/shop-backend/pkg/errors"
	"github.com/milnali/shop-backend/pkg/logger"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// fakeOrderStore implements only what the reconciler touches; everything else
// panics through the embedded nil interface.
type fakeOrderStore struct {
	orders.Repository
	order *models.Order
	saves int
}

func (f *fakeOrderStore) WithTx(*gorm.DB) orders.Repository { return f }

func (f *fakeOrderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.order, nil
}

func (f *fakeOrderStore) SaveOrder(_ context.Context, order *models.Order) error {
	f.order = order
	f.saves++
	return nil
}

type fakeAdapter struct {
	kind      enums.PaymentKind
	result    CheckResult
	checkErr  error
	commitErr error
	commits   int
	checks    int
}

func (f *fakeAdapter) Kind() enums.PaymentKind { return f.kind }

func (f *fakeAdapter) CheckOrder(context.Context, *models.Order) (CheckResult, error) {
	f.checks++
	return f.result, f.checkErr
}

type fakeCommitAdapter struct {
	fakeAdapter
}

func (f *fakeCommitAdapter) Commit(context.Context, *models.Order) error {
	f.commits++
	return f.commitErr
}

func testOrder(kind enums.PaymentKind, total string) *models.Order {
	gatewayID := "gw-1"
	return &models.Order{
		ID:                    uuid.New(),
		OrderNumber:           "111",
		TotalAmount:           decimal.RequireFromString(total),
		PaymentType:           &models.PaymentType{PaymentKind: kind},
		PaymentGatewayOrderID: &gatewayID,
	}
}

// newTestReconciler wires a registry with adapters[0] as the fallback and
// the rest registered by kind.
func newTestReconciler(t *testing.T, store *fakeOrderStore, adapters ...GatewayAdapter) Reconciler {
	t.Helper()

	registry, err := NewRegistry(adapters[0])
	require.NoError(t, err)
	for _, adapter := range adapters[1:] {
		require.NoError(t, registry.Register(adapter))
	}

	rec, err := NewReconciler(fakeTxRunner{}, store, registry, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return rec
}

func TestReconcileZeroTotalMarksPaidWithoutGatewayCall(t *testing.T) {
	adapter := &fakeAdapter{kind: enums.PaymentKindAlfabank}
	store := &fakeOrderStore{order: testOrder(enums.PaymentKindAlfabank, "0")}
	rec := newTestReconciler(t, store, adapter)

	order, err := rec.Reconcile(context.Background(), store.order.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	assert.Zero(t, adapter.checks)
}

func TestReconcileMarksPaidAndCapturesIncome(t *testing.T) {
	adapter := &fakeAdapter{
		kind:   enums.PaymentKindYookassa,
		result: CheckResult{OrderStatus: int(enums.PaymentStatusPaid), DepositAmount: 123450},
	}
	store := &fakeOrderStore{order: testOrder(enums.PaymentKindYookassa, "1234.50")}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	order, err := rec.Reconcile(context.Background(), store.order.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.Income)
	assert.True(t, order.Income.Equal(decimal.RequireFromString("1234.50")), "income %s", order.Income)
}

func TestReconcileMonotonicPaid(t *testing.T) {
	adapter := &fakeAdapter{
		kind:   enums.PaymentKindYookassa,
		result: CheckResult{OrderStatus: int(enums.PaymentStatusNotPaid)},
	}
	order := testOrder(enums.PaymentKindYookassa, "100.00")
	order.PaymentStatus = enums.PaymentStatusPaid
	store := &fakeOrderStore{order: order}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	reconciled, err := rec.Reconcile(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, reconciled.PaymentStatus)
}

func TestReconcileIncomeWriteOnce(t *testing.T) {
	adapter := &fakeAdapter{
		kind:   enums.PaymentKindYookassa,
		result: CheckResult{OrderStatus: int(enums.PaymentStatusPaid), DepositAmount: 99900},
	}
	order := testOrder(enums.PaymentKindYookassa, "100.00")
	captured := decimal.RequireFromString("100.00")
	order.Income = &captured
	store := &fakeOrderStore{order: order}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	reconciled, err := rec.Reconcile(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reconciled.Income.Equal(captured), "income %s", reconciled.Income)
}

func TestReconcilePodeliAcceptsPartialCapture(t *testing.T) {
	adapter := &fakeCommitAdapter{fakeAdapter: fakeAdapter{
		kind:   enums.PaymentKindPodeli,
		result: CheckResult{OrderStatus: int(enums.PaymentStatusPaidPartially), DepositAmount: 25000},
	}}
	store := &fakeOrderStore{order: testOrder(enums.PaymentKindPodeli, "500.00")}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	order, err := rec.Reconcile(context.Background(), store.order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, adapter.commits)
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.Income)
	assert.True(t, order.Income.Equal(decimal.RequireFromString("250.00")))
}

func TestReconcileCommitProviderStatusIsNonFatal(t *testing.T) {
	adapter := &fakeCommitAdapter{fakeAdapter: fakeAdapter{
		kind:      enums.PaymentKindPodeli,
		result:    CheckResult{OrderStatus: int(enums.PaymentStatusPaid), DepositAmount: 50000},
		commitErr: fmt.Errorf("%w: already committed", ErrProviderStatus),
	}}
	store := &fakeOrderStore{order: testOrder(enums.PaymentKindPodeli, "500.00")}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	order, err := rec.Reconcile(context.Background(), store.order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, adapter.checks)
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
}

func TestReconcileCommitFailureAborts(t *testing.T) {
	adapter := &fakeCommitAdapter{fakeAdapter: fakeAdapter{
		kind:      enums.PaymentKindPodeli,
		commitErr: fmt.Errorf("connection reset"),
	}}
	store := &fakeOrderStore{order: testOrder(enums.PaymentKindPodeli, "500.00")}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	_, err := rec.Reconcile(context.Background(), store.order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Zero(t, adapter.checks)
}

func TestReconcilePersistsGatewayErrors(t *testing.T) {
	adapter := &fakeAdapter{
		kind:   enums.PaymentKindYookassa,
		result: CheckResult{ErrorCode: "canceled", ErrorMessage: "expired_on_confirmation"},
	}
	store := &fakeOrderStore{order: testOrder(enums.PaymentKindYookassa, "100.00")}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	order, err := rec.Reconcile(context.Background(), store.order.ID)
	require.NoError(t, err)

	require.NotNil(t, order.PaymentErrorCode)
	assert.Equal(t, "canceled", *order.PaymentErrorCode)
	require.NotNil(t, order.PaymentErrorMessage)
	assert.Equal(t, "expired_on_confirmation", *order.PaymentErrorMessage)
	assert.Equal(t, enums.PaymentStatusNotPaid, order.PaymentStatus)
	assert.Equal(t, 1, store.saves, "error fields and status should land in a single write")
}

func TestReconcileGarbledGatewayResponse(t *testing.T) {
	adapter := &fakeAdapter{
		kind:     enums.PaymentKindYookassa,
		checkErr: fmt.Errorf("decoding gateway response: invalid character '<'"),
	}
	store := &fakeOrderStore{order: testOrder(enums.PaymentKindYookassa, "100.00")}
	rec := newTestReconciler(t, store, &fakeAdapter{kind: enums.PaymentKindAlfabank}, adapter)

	_, err := rec.Reconcile(context.Background(), store.order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, enums.PaymentStatusNotPaid, store.order.PaymentStatus)
}

func TestRegistryFallback(t *testing.T) {
	fallback := &fakeAdapter{kind: enums.PaymentKindAlfabank}
	dedicated := &fakeAdapter{kind: enums.PaymentKindPodeli}

	registry, err := NewRegistry(fallback)
	require.NoError(t, err)
	require.NoError(t, registry.Register(dedicated))

	assert.Same(t, GatewayAdapter(dedicated), registry.Resolve(enums.PaymentKindPodeli))
	assert.Same(t, GatewayAdapter(fallback), registry.Resolve(enums.PaymentKindYookassa))

	require.Error(t, registry.Register(dedicated))
	require.Error(t, registry.Register(&fakeAdapter{kind: enums.PaymentKindCash}))
}
