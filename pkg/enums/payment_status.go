package enums

import "fmt"

// PaymentStatus is the local integer vocabulary for an order's payment state.
// The values deliberately line up with the "deposited" order-state code the
// card gateway reports, so a synthetic fully-paid result and a real gateway
// response share the same code.
type PaymentStatus int16

const (
	PaymentStatusNotPaid       PaymentStatus = 0
	PaymentStatusPaid          PaymentStatus = 2
	PaymentStatusPaidPartially PaymentStatus = 3
)

var paymentStatusNames = map[PaymentStatus]string{
	PaymentStatusNotPaid:       "not_paid",
	PaymentStatusPaid:          "paid",
	PaymentStatusPaidPartially: "paid_partially",
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	if name, ok := paymentStatusNames[p]; ok {
		return name
	}
	return fmt.Sprintf("payment_status(%d)", int16(p))
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	_, ok := paymentStatusNames[p]
	return ok
}
