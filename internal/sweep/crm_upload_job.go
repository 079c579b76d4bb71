package sweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/logger"
	"github.com/milnali/shop-backend/pkg/metrics"
)

const crmUploadJobName = "crm_upload"

// syntheticOrderPrefixes mark imported and test order numbers that must
// never be uploaded as new CRM orders.
var syntheticOrderPrefixes = []string{"m", "t"}

type orderUploader interface {
	UploadOrder(ctx context.Context, order *models.Order) error
}

type unsyncedOrderSource interface {
	FindUnsyncedWithCRM(ctx context.Context, excludedPrefixes []string) ([]models.Order, error)
}

// CRMUploadJobParams configure the CRM upload pass.
type CRMUploadJobParams struct {
	Orders         unsyncedOrderSource
	Uploader       orderUploader
	Logger         *logger.Logger
	Metrics        *metrics.SweepMetrics
	IterationDelay time.Duration
}

// CRMUploadJob pushes orders with no CRM id yet. A rejected order keeps its
// diagnostic log and is retried on the next cycle.
type CRMUploadJob struct {
	orders   unsyncedOrderSource
	uploader orderUploader
	logg     *logger.Logger
	metrics  *metrics.SweepMetrics
	delay    time.Duration
}

// NewCRMUploadJob builds the job.
func NewCRMUploadJob(params CRMUploadJobParams) (*CRMUploadJob, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order source required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &CRMUploadJob{
		orders:   params.Orders,
		uploader: params.Uploader,
		logg:     params.Logger,
		metrics:  params.Metrics,
		delay:    params.IterationDelay,
	}, nil
}

func (j *CRMUploadJob) Name() string { return crmUploadJobName }

func (j *CRMUploadJob) Run(ctx context.Context) error {
	orders, err := j.orders.FindUnsyncedWithCRM(ctx, syntheticOrderPrefixes)
	if err != nil {
		return fmt.Errorf("listing unsynced orders: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "count", len(orders)), "uploading orders to crm")

	var errs error
	for i := range orders {
		if i > 0 && j.delay > 0 {
			time.Sleep(j.delay)
		}

		order := orders[i]
		if upErr := j.uploader.UploadOrder(ctx, &order); upErr != nil {
			j.metrics.IncCRMUpload("failure")
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, upErr))
			continue
		}
		j.metrics.IncCRMUpload("success")
	}
	return errs
}
