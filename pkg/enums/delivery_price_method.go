package enums

import "fmt"

// DeliveryPriceMethod selects how a delivery type's cost is computed.
type DeliveryPriceMethod string

const (
	DeliveryPriceAlwaysFree DeliveryPriceMethod = "always_free"
	DeliveryPriceFixed      DeliveryPriceMethod = "fixed_price"
	DeliveryPricePerRegion  DeliveryPriceMethod = "region_price"
)

var validDeliveryPriceMethods = []DeliveryPriceMethod{
	DeliveryPriceAlwaysFree,
	DeliveryPriceFixed,
	DeliveryPricePerRegion,
}

// String implements fmt.Stringer.
func (d DeliveryPriceMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryPriceMethod.
func (d DeliveryPriceMethod) IsValid() bool {
	for _, candidate := range validDeliveryPriceMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryPriceMethod converts raw input into a DeliveryPriceMethod.
func ParseDeliveryPriceMethod(value string) (DeliveryPriceMethod, error) {
	for _, candidate := range validDeliveryPriceMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery price method %q", value)
}
