package enums

import "fmt"

// PaymentKind distinguishes the payment providers an order can be settled
// through. Online kinds are checked against their gateway by the
// reconciliation sweep; offline kinds never are.
type PaymentKind string

const (
	PaymentKindCash           PaymentKind = "cash"
	PaymentKindCourierCard    PaymentKind = "courier_card"
	PaymentKindAlfabank       PaymentKind = "alfabank"
	PaymentKindYookassa       PaymentKind = "yookassa"
	PaymentKindPodeli         PaymentKind = "podeli"
	PaymentKindPayselection   PaymentKind = "payselection"
	PaymentKindPayselectionRu PaymentKind = "payselection_rus"
)

var validPaymentKinds = []PaymentKind{
	PaymentKindCash,
	PaymentKindCourierCard,
	PaymentKindAlfabank,
	PaymentKindYookassa,
	PaymentKindPodeli,
	PaymentKindPayselection,
	PaymentKindPayselectionRu,
}

var onlinePaymentKinds = map[PaymentKind]struct{}{
	PaymentKindAlfabank:       {},
	PaymentKindYookassa:       {},
	PaymentKindPodeli:         {},
	PaymentKindPayselection:   {},
	PaymentKindPayselectionRu: {},
}

// String implements fmt.Stringer.
func (p PaymentKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentKind.
func (p PaymentKind) IsValid() bool {
	for _, candidate := range validPaymentKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsOnline reports whether the kind is settled through a payment gateway.
func (p PaymentKind) IsOnline() bool {
	_, ok := onlinePaymentKinds[p]
	return ok
}

// OnlinePaymentKinds returns the kinds eligible for gateway reconciliation.
func OnlinePaymentKinds() []PaymentKind {
	kinds := make([]PaymentKind, 0, len(onlinePaymentKinds))
	for _, candidate := range validPaymentKinds {
		if candidate.IsOnline() {
			kinds = append(kinds, candidate)
		}
	}
	return kinds
}

// ParsePaymentKind converts raw input into a PaymentKind.
func ParsePaymentKind(value string) (PaymentKind, error) {
	for _, candidate := range validPaymentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment kind %q", value)
}
