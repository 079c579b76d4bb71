package gateways

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milnali/shop-backend/internal/payments"
	"github.com/milnali/shop-backend/pkg/config"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// Yookassa checks orders against the payments API using basic auth.
type Yookassa struct {
	cfg    config.YookassaConfig
	client *http.Client
}

// NewYookassa builds the adapter.
func NewYookassa(cfg config.YookassaConfig, timeout time.Duration) (*Yookassa, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("yookassa base url required")
	}
	if cfg.ShopID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("yookassa credentials required")
	}
	return &Yookassa{cfg: cfg, client: newHTTPClient(timeout)}, nil
}

func (y *Yookassa) Kind() enums.PaymentKind {
	return enums.PaymentKindYookassa
}

type yookassaPayment struct {
	Status string `json:"status"`
	Amount struct {
		Value string `json:"value"`
	} `json:"amount"`
	CancellationDetails struct {
		Reason string `json:"reason"`
	} `json:"cancellation_details"`
}

// CheckOrder reads the payment object and maps its lifecycle status onto the
// local vocabulary: succeeded counts as deposited, everything else as unpaid.
func (y *Yookassa) CheckOrder(ctx context.Context, order *models.Order) (payments.CheckResult, error) {
	if order.PaymentGatewayOrderID == nil {
		return payments.CheckResult{}, fmt.Errorf("order %s has no gateway order id", order.OrderNumber)
	}

	endpoint := strings.TrimRight(y.cfg.BaseURL, "/") + "/payments/" + *order.PaymentGatewayOrderID
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return payments.CheckResult{}, err
	}
	req.SetBasicAuth(y.cfg.ShopID, y.cfg.SecretKey)

	var payment yookassaPayment
	if err := doJSON(ctx, y.client, req, &payment); err != nil {
		return payments.CheckResult{}, err
	}

	result := payments.CheckResult{}
	switch payment.Status {
	case "succeeded":
		result.OrderStatus = int(enums.PaymentStatusPaid)
		if amount, err := decimal.NewFromString(payment.Amount.Value); err == nil {
			result.DepositAmount = amount.Mul(decimal.NewFromInt(100)).IntPart()
		}
	case "canceled":
		result.ErrorCode = "canceled"
		result.ErrorMessage = payment.CancellationDetails.Reason
	}
	return result, nil
}
