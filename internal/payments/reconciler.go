package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/milnali/shop-backend/internal/orders"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
	pkgerrors "github.com/milnali/shop-backend/pkg/errors"
	"github.com/milnali/shop-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Reconciler pulls an order's payment state from its gateway and applies it.
type Reconciler interface {
	Reconcile(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type reconciler struct {
	tx       txRunner
	repo     orders.Repository
	registry *Registry
	logg     *logger.Logger
}

// NewReconciler builds the payment status reconciler.
func NewReconciler(tx txRunner, repo orders.Repository, registry *Registry, logg *logger.Logger) (Reconciler, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if registry == nil {
		return nil, fmt.Errorf("adapter registry required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &reconciler{tx: tx, repo: repo, registry: registry, logg: logg}, nil
}

// Reconcile runs one order through its gateway inside a single transaction.
// Zero-total orders are marked paid without a gateway call. The paid state is
// forward-only and a captured income is never overwritten.
func (r *reconciler) Reconcile(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var reconciled *models.Order

	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := r.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		if order.PaymentType == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no payment type")
		}

		ctx := r.logg.WithOrderNumber(ctx, order.OrderNumber)

		result, err := r.checkOrder(ctx, order)
		if err != nil {
			return err
		}

		if result.ErrorCode != "" || result.ErrorMessage != "" {
			order.PaymentErrorCode = strPtrOrNil(result.ErrorCode)
			order.PaymentErrorMessage = strPtrOrNil(result.ErrorMessage)
		}

		r.applyResult(ctx, order, result)

		if err := repo.SaveOrder(ctx, order); err != nil {
			return err
		}

		reconciled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reconciled, nil
}

func (r *reconciler) checkOrder(ctx context.Context, order *models.Order) (CheckResult, error) {
	// Nothing is owed, so there is nothing to ask a gateway about.
	if order.TotalAmount.IsZero() {
		return CheckResult{OrderStatus: int(enums.PaymentStatusPaid)}, nil
	}

	kind := order.PaymentType.PaymentKind
	ctx = r.logg.WithGateway(ctx, kind.String())
	adapter := r.registry.Resolve(kind)

	if committer, ok := adapter.(Committer); ok {
		if err := committer.Commit(ctx, order); err != nil {
			if !errors.Is(err, ErrProviderStatus) {
				return CheckResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway commit failed")
			}
			r.logg.Warn(ctx, "gateway commit rejected for current order state")
		}
	}

	result, err := adapter.CheckOrder(ctx, order)
	if err != nil {
		return CheckResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway status check failed")
	}
	return result, nil
}

func (r *reconciler) applyResult(ctx context.Context, order *models.Order, result CheckResult) {
	isPodeli := order.PaymentType.PaymentKind == enums.PaymentKindPodeli
	status := enums.PaymentStatus(result.OrderStatus)

	// Podeli settles in installments, so partial capture already counts.
	accepted := status == enums.PaymentStatusPaid
	if isPodeli {
		accepted = status == enums.PaymentStatusPaid || status == enums.PaymentStatusPaidPartially
	}
	if !accepted {
		return
	}

	if !order.HasIncome() && result.DepositAmount > 0 {
		income := decimal.NewFromInt(result.DepositAmount).Div(decimal.NewFromInt(100))
		order.Income = &income
	}

	if order.PaymentStatus != enums.PaymentStatusPaid {
		order.PaymentStatus = enums.PaymentStatusPaid
		r.logg.Info(ctx, "payment accepted")
	}
}

func strPtrOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
