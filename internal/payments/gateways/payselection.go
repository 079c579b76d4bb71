package gateways

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/milnali/shop-backend/internal/payments"
	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// Payselection checks orders against the transaction status endpoint. The
// same API serves two legal entities with separate credentials, so the
// adapter is instantiated once per payment kind.
type Payselection struct {
	kind      enums.PaymentKind
	baseURL   string
	siteID    string
	secretKey string
	client    *http.Client
}

// PayselectionParams collects the per-entity credentials.
type PayselectionParams struct {
	Kind      enums.PaymentKind
	BaseURL   string
	SiteID    string
	SecretKey string
	Timeout   time.Duration
}

// NewPayselection builds the adapter for one legal entity.
func NewPayselection(params PayselectionParams) (*Payselection, error) {
	if params.Kind != enums.PaymentKindPayselection && params.Kind != enums.PaymentKindPayselectionRu {
		return nil, fmt.Errorf("unexpected payselection kind %q", params.Kind)
	}
	if params.BaseURL == "" {
		return nil, fmt.Errorf("payselection base url required")
	}
	if params.SiteID == "" || params.SecretKey == "" {
		return nil, fmt.Errorf("payselection credentials required")
	}
	return &Payselection{
		kind:      params.Kind,
		baseURL:   strings.TrimRight(params.BaseURL, "/"),
		siteID:    params.SiteID,
		secretKey: params.SecretKey,
		client:    newHTTPClient(params.Timeout),
	}, nil
}

func (p *Payselection) Kind() enums.PaymentKind {
	return p.kind
}

type payselectionStatusResponse struct {
	TransactionState string `json:"TransactionState"`
	Code             string `json:"Code"`
	Description      string `json:"Description"`
	Amount           int64  `json:"Amount"`
}

// CheckOrder reads the transaction state; requests are signed per the
// provider's header scheme.
func (p *Payselection) CheckOrder(ctx context.Context, order *models.Order) (payments.CheckResult, error) {
	if order.PaymentGatewayOrderID == nil {
		return payments.CheckResult{}, fmt.Errorf("order %s has no gateway order id", order.OrderNumber)
	}

	path := "/transactions/" + *order.PaymentGatewayOrderID
	req, err := http.NewRequest(http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return payments.CheckResult{}, err
	}

	requestID := uuid.NewString()
	req.Header.Set("X-SITE-ID", p.siteID)
	req.Header.Set("X-REQUEST-ID", requestID)
	req.Header.Set("X-REQUEST-SIGNATURE", p.sign(http.MethodGet, path, requestID))

	var status payselectionStatusResponse
	if err := doJSON(ctx, p.client, req, &status); err != nil {
		return payments.CheckResult{}, err
	}

	result := payments.CheckResult{DepositAmount: status.Amount}
	switch status.TransactionState {
	case "success":
		result.OrderStatus = int(enums.PaymentStatusPaid)
	case "declined", "expired":
		result.ErrorCode = status.Code
		result.ErrorMessage = status.Description
	}
	return result, nil
}

func (p *Payselection) sign(method, path, requestID string) string {
	mac := hmac.New(sha256.New, []byte(p.secretKey))
	mac.Write([]byte(strings.Join([]string{method, path, p.siteID, requestID}, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
