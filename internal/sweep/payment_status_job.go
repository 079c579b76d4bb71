package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
	"github.com/milnali/shop-backend/pkg/logger"
	"github.com/milnali/shop-backend/pkg/metrics"
)

const paymentStatusJobName = "payment_status"

type paymentReconciler interface {
	Reconcile(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type unpaidOrderSource interface {
	FindUnpaidOnlineSince(ctx context.Context, since time.Time, kinds []enums.PaymentKind) ([]models.Order, error)
}

// PaymentStatusJobParams configure the payment reconciliation pass.
type PaymentStatusJobParams struct {
	Orders     unpaidOrderSource
	Reconciler paymentReconciler
	Logger     *logger.Logger
	Metrics    *metrics.SweepMetrics

	// Window bounds how far back unpaid orders are re-checked.
	Window time.Duration
	// IterationDelay separates consecutive gateway calls.
	IterationDelay time.Duration
}

// PaymentStatusJob re-checks every recent unpaid online order against its
// gateway. Orders are reconciled one at a time; a failing order is skipped
// and the pass continues.
type PaymentStatusJob struct {
	orders     unpaidOrderSource
	reconciler paymentReconciler
	logg       *logger.Logger
	metrics    *metrics.SweepMetrics
	window     time.Duration
	delay      time.Duration
	now        func() time.Time
}

// NewPaymentStatusJob builds the job.
func NewPaymentStatusJob(params PaymentStatusJobParams) (*PaymentStatusJob, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order source required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	window := params.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &PaymentStatusJob{
		orders:     params.Orders,
		reconciler: params.Reconciler,
		logg:       params.Logger,
		metrics:    params.Metrics,
		window:     window,
		delay:      params.IterationDelay,
		now:        time.Now,
	}, nil
}

func (j *PaymentStatusJob) Name() string { return paymentStatusJobName }

func (j *PaymentStatusJob) Run(ctx context.Context) error {
	since := j.now().Add(-j.window)
	orders, err := j.orders.FindUnpaidOnlineSince(ctx, since, enums.OnlinePaymentKinds())
	if err != nil {
		return fmt.Errorf("listing unpaid orders: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "count", len(orders)), "checking payment statuses")

	var errs error
	for i, order := range orders {
		if i > 0 && j.delay > 0 {
			time.Sleep(j.delay)
		}

		reconciled, recErr := j.reconciler.Reconcile(ctx, order.ID)
		if recErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, recErr))
			continue
		}
		if reconciled.PaymentStatus == enums.PaymentStatusPaid && order.PaymentStatus != enums.PaymentStatusPaid {
			j.metrics.IncOrdersPaid()
			j.logg.Info(j.logg.WithOrderNumber(ctx, order.OrderNumber), "order marked paid")
		}
	}
	return errs
}
