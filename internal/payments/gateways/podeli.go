package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/milnali/shop-backend/internal/payments"
	"github.com/milnali/shop-backend/pkg/config"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// Podeli checks installment orders. The provider requires an explicit commit
// before the status reflects captured money; installments land in part, so a
// partial capture is still an accepted payment.
type Podeli struct {
	cfg      config.PodeliConfig
	client   *http.Client
	testMode bool
}

// NewPodeli builds the adapter.
func NewPodeli(cfg config.PodeliConfig, timeout time.Duration, testMode bool) (*Podeli, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("podeli base url required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("podeli api key required")
	}
	return &Podeli{cfg: cfg, client: newHTTPClient(timeout), testMode: testMode}, nil
}

func (p *Podeli) Kind() enums.PaymentKind {
	return enums.PaymentKindPodeli
}

type podeliCommitResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type podeliOrderResponse struct {
	Status        string `json:"status"`
	ErrorCode     string `json:"errorCode"`
	ErrorMessage  string `json:"errorMessage"`
	DepositAmount int64  `json:"depositAmount"`
}

// Commit asks the provider to capture the order. A commit refused because of
// the order's provider-side state is reported as ErrProviderStatus so the
// caller can proceed to the status check.
func (p *Podeli) Commit(ctx context.Context, order *models.Order) error {
	payload, err := json.Marshal(map[string]string{
		"orderNumber": order.GatewayReference(p.testMode),
		"shopCode":    p.cfg.ShopCode,
	})
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/orders/commit"
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	var commit podeliCommitResponse
	if err := doJSON(ctx, p.client, req, &commit); err != nil {
		return err
	}
	if !commit.Success {
		return fmt.Errorf("%w: %s %s", payments.ErrProviderStatus, commit.Code, commit.Message)
	}
	return nil
}

// CheckOrder reads the installment order state.
func (p *Podeli) CheckOrder(ctx context.Context, order *models.Order) (payments.CheckResult, error) {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/orders/" + order.GatewayReference(p.testMode)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return payments.CheckResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	var info podeliOrderResponse
	if err := doJSON(ctx, p.client, req, &info); err != nil {
		return payments.CheckResult{}, err
	}

	result := payments.CheckResult{
		ErrorCode:     info.ErrorCode,
		ErrorMessage:  info.ErrorMessage,
		DepositAmount: info.DepositAmount,
	}
	switch info.Status {
	case "completed":
		result.OrderStatus = int(enums.PaymentStatusPaid)
	case "partially_completed":
		result.OrderStatus = int(enums.PaymentStatusPaidPartially)
	}
	return result, nil
}
