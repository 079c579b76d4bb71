package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
)

// ErrProviderStatus marks a provider-side state that blocks a commit but must
// not block the subsequent status check.
var ErrProviderStatus = errors.New("provider rejected commit for current order state")

// CheckResult is the normalized answer of a gateway status check.
// DepositAmount is in minor currency units.
type CheckResult struct {
	OrderStatus   int
	ErrorCode     string
	ErrorMessage  string
	DepositAmount int64
}

// GatewayAdapter checks an order's payment state against its provider.
type GatewayAdapter interface {
	Kind() enums.PaymentKind
	CheckOrder(ctx context.Context, order *models.Order) (CheckResult, error)
}

// Committer is implemented by adapters whose provider requires an explicit
// capture step before the status check reflects the payment.
type Committer interface {
	Commit(ctx context.Context, order *models.Order) error
}

// Registry resolves the adapter for a payment kind. Unknown online kinds fall
// back to the default adapter.
type Registry struct {
	adapters map[enums.PaymentKind]GatewayAdapter
	fallback GatewayAdapter
}

// NewRegistry builds a registry with the given fallback adapter.
func NewRegistry(fallback GatewayAdapter) (*Registry, error) {
	if fallback == nil {
		return nil, fmt.Errorf("fallback adapter required")
	}
	return &Registry{
		adapters: make(map[enums.PaymentKind]GatewayAdapter),
		fallback: fallback,
	}, nil
}

// Register binds an adapter to its payment kind. Binding the same kind twice
// is a wiring bug.
func (r *Registry) Register(adapter GatewayAdapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter required")
	}
	kind := adapter.Kind()
	if !kind.IsOnline() {
		return fmt.Errorf("payment kind %q is not gateway-settled", kind)
	}
	if _, exists := r.adapters[kind]; exists {
		return fmt.Errorf("adapter for %q already registered", kind)
	}
	r.adapters[kind] = adapter
	return nil
}

// Resolve returns the adapter for the kind, or the fallback for online kinds
// without a dedicated adapter.
func (r *Registry) Resolve(kind enums.PaymentKind) GatewayAdapter {
	if adapter, ok := r.adapters[kind]; ok {
		return adapter
	}
	return r.fallback
}
