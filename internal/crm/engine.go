// Package crm synchronizes orders with RetailCRM: it uploads new orders
// together with their customers and pulls status changes back into the
// local status log.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milnali/shop-backend/internal/orders"
	"github.com/milnali/shop-backend/pkg/db/models"
	pkgerrors "github.com/milnali/shop-backend/pkg/errors"
	"github.com/milnali/shop-backend/pkg/logger"
	"github.com/milnali/shop-backend/pkg/retailcrm"
)

const (
	// statusBatchSize stays under the CRM's 500-filter cap per request.
	statusBatchSize = 490
	// statusLookback bounds the status pull to roughly half a year of
	// orders; everything older is considered settled.
	statusLookback = 183 * 24 * time.Hour

	defaultBatchPause = 100 * time.Millisecond
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// crmClient is the slice of the RetailCRM API the sync engine consumes.
type crmClient interface {
	SiteCode() string
	Customer(ctx context.Context, externalID string) (*retailcrm.CustomerResponse, error)
	CustomerCreate(ctx context.Context, customer retailcrm.Customer) (*retailcrm.Response, error)
	CustomerEdit(ctx context.Context, customer retailcrm.Customer) (*retailcrm.Response, error)
	OrderCreate(ctx context.Context, order retailcrm.Order) (*retailcrm.Response, error)
	OrdersStatuses(ctx context.Context, ids []int64) (*retailcrm.OrdersStatusesResponse, error)
}

// Engine drives the two sync directions.
type Engine interface {
	// UploadOrder pushes one order to the CRM. The exchange log is
	// persisted on the order whether the upload succeeds or not.
	UploadOrder(ctx context.Context, order *models.Order) error
	// PullStatuses reads current CRM statuses for recently synced orders
	// and appends a status log entry for every change.
	PullStatuses(ctx context.Context) error
}

type engine struct {
	tx     txRunner
	repo   orders.Repository
	orders orders.Service
	crm    crmClient
	logg   *logger.Logger

	now        func() time.Time
	batchPause time.Duration
}

// NewEngine builds the sync engine.
func NewEngine(tx txRunner, repo orders.Repository, ordersSvc orders.Service, client crmClient, logg *logger.Logger) (Engine, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if client == nil {
		return nil, fmt.Errorf("retailcrm client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &engine{
		tx:         tx,
		repo:       repo,
		orders:     ordersSvc,
		crm:        client,
		logg:       logg,
		now:        time.Now,
		batchPause: defaultBatchPause,
	}, nil
}

func (e *engine) UploadOrder(ctx context.Context, order *models.Order) error {
	ctx = e.logg.WithOrderNumber(ctx, order.OrderNumber)

	if err := e.ensureCustomer(ctx, order); err != nil {
		return err
	}

	payload := buildOrderPayload(order, e.crm.SiteCode())
	resp, err := e.crm.OrderCreate(ctx, payload)
	if err != nil {
		e.persistLog(ctx, order, exchangeLog(payload, err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crm order create")
	}

	if txErr := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)
		if resp.ID != 0 {
			claimed, claimErr := repo.ClaimRetailCRMID(ctx, order.ID, resp.ID)
			if claimErr != nil {
				return claimErr
			}
			if claimed {
				order.RetailCRMID = &resp.ID
			}
		}
		return e.writeLog(ctx, repo, order, exchangeLog(payload, resp))
	}); txErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "persisting crm exchange")
	}

	if !resp.Success {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("crm rejected order: %s", resp.ErrorMsg))
	}

	e.logg.Info(ctx, "order uploaded to crm")
	return nil
}

// ensureCustomer makes sure the order's owner exists in the CRM before the
// order references them. A profile that exists without a first name gets an
// edit; any failure aborts the upload and leaves the detail on the order.
func (e *engine) ensureCustomer(ctx context.Context, order *models.Order) error {
	if order.UserID == nil {
		return nil
	}

	lookup, err := e.crm.Customer(ctx, order.UserID.String())
	if err != nil {
		e.persistLog(ctx, order, fmt.Sprintf("customer lookup failed: %s", err))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crm customer lookup")
	}

	if !lookup.Success {
		return e.writeCustomer(ctx, order, e.crm.CustomerCreate, "create")
	}
	if lookup.Customer == nil || lookup.Customer.FirstName == "" {
		return e.writeCustomer(ctx, order, e.crm.CustomerEdit, "update")
	}
	return nil
}

func (e *engine) writeCustomer(ctx context.Context, order *models.Order, write func(context.Context, retailcrm.Customer) (*retailcrm.Response, error), action string) error {
	customer := buildCustomer(order, e.crm.SiteCode())
	resp, err := write(ctx, customer)
	if err != nil {
		e.persistLog(ctx, order, fmt.Sprintf("customer %s failed: %s", action, err))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crm customer "+action)
	}
	if !resp.Success {
		e.persistLog(ctx, order, exchangeLog(customer, resp))
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("crm customer %s rejected: %s", action, resp.ErrorMsg))
	}
	return nil
}

func (e *engine) PullStatuses(ctx context.Context) error {
	since := e.now().Add(-statusLookback)
	ids, err := e.repo.FindSyncedCRMIDs(ctx, since)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing synced orders")
	}
	if len(ids) == 0 {
		return nil
	}

	statuses, err := e.repo.StatusesByRetailCode(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading status handbook")
	}

	for start := 0; start < len(ids); start += statusBatchSize {
		end := start + statusBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := e.pullBatch(ctx, ids[start:end], statuses); err != nil {
			return err
		}
		if end < len(ids) && e.batchPause > 0 {
			time.Sleep(e.batchPause)
		}
	}
	return nil
}

func (e *engine) pullBatch(ctx context.Context, ids []int64, statuses map[string]models.OrderStatus) error {
	resp, err := e.crm.OrdersStatuses(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crm orders statuses")
	}

	for _, item := range resp.Orders {
		status, known := statuses[item.Status]
		if !known {
			e.logg.Debug(ctx, fmt.Sprintf("skipping unmapped crm status %q", item.Status))
			continue
		}

		order, findErr := e.findOrder(ctx, item)
		if findErr != nil || order == nil {
			continue
		}
		if order.StatusID == status.ID {
			continue
		}

		loopStatus := status
		applyErr := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := e.orders.AppendStatusLog(ctx, tx, order, &loopStatus, nil, true)
			return err
		})
		if applyErr != nil {
			e.logg.Error(ctx, "applying crm status change", applyErr)
		}
	}
	return nil
}

// findOrder resolves a CRM status entry to a local order, preferring our own
// identifier when the CRM echoes it back.
func (e *engine) findOrder(ctx context.Context, item retailcrm.OrderStatusItem) (*models.Order, error) {
	if item.ExternalID != "" {
		if id, parseErr := uuid.Parse(item.ExternalID); parseErr == nil {
			return e.repo.FindByID(ctx, id)
		}
	}
	if item.ID != 0 {
		return e.repo.FindByRetailCRMID(ctx, item.ID)
	}
	return nil, nil
}

// persistLog records the exchange outside of any transaction so failure
// detail survives the aborted upload.
func (e *engine) persistLog(ctx context.Context, order *models.Order, log string) {
	if err := e.writeLog(ctx, e.repo, order, log); err != nil {
		e.logg.Error(ctx, "persisting crm log", err)
	}
}

func (e *engine) writeLog(ctx context.Context, repo orders.Repository, order *models.Order, log string) error {
	if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"retail_crm_log": log}); err != nil {
		return err
	}
	order.RetailCRMLog = &log
	return nil
}

// exchangeLog renders the request and response pair kept on the order for
// support debugging.
func exchangeLog(request any, response any) string {
	return fmt.Sprintf("Sent:\n%s\n\nResponse:\n%s", compactJSON(request), compactJSON(response))
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(raw)
}
