package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/milnali/shop-backend/internal/payments"
	"github.com/milnali/shop-backend/pkg/config"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// Alfabank checks orders against the acquiring REST API. It also serves as
// the registry fallback: any online payment kind without a dedicated adapter
// is routed through the same order-status endpoint.
type Alfabank struct {
	cfg      config.AlfabankConfig
	client   *http.Client
	testMode bool
}

// NewAlfabank builds the adapter.
func NewAlfabank(cfg config.AlfabankConfig, timeout time.Duration, testMode bool) (*Alfabank, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("alfabank base url required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("alfabank credentials required")
	}
	return &Alfabank{cfg: cfg, client: newHTTPClient(timeout), testMode: testMode}, nil
}

func (a *Alfabank) Kind() enums.PaymentKind {
	return enums.PaymentKindAlfabank
}

type alfabankStatusResponse struct {
	OrderStatus   int    `json:"OrderStatus"`
	ErrorCode     string `json:"ErrorCode"`
	ErrorMessage  string `json:"ErrorMessage"`
	DepositAmount int64  `json:"depositAmount"`
}

// CheckOrder calls getOrderStatusExtended for the order's gateway id. The
// provider's numeric order states are used as-is; 2 means deposited.
func (a *Alfabank) CheckOrder(ctx context.Context, order *models.Order) (payments.CheckResult, error) {
	if order.PaymentGatewayOrderID == nil {
		return payments.CheckResult{}, fmt.Errorf("order %s has no gateway order id", order.OrderNumber)
	}

	form := url.Values{}
	form.Set("userName", a.cfg.Username)
	form.Set("password", a.cfg.Password)
	form.Set("orderId", *order.PaymentGatewayOrderID)
	form.Set("orderNumber", order.GatewayReference(a.testMode))

	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") + "/getOrderStatusExtended.do"
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return payments.CheckResult{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var status alfabankStatusResponse
	if err := doJSON(ctx, a.client, req, &status); err != nil {
		return payments.CheckResult{}, err
	}

	return payments.CheckResult{
		OrderStatus:   status.OrderStatus,
		ErrorCode:     status.ErrorCode,
		ErrorMessage:  status.ErrorMessage,
		DepositAmount: status.DepositAmount,
	}, nil
}
