package crm

import (
	"strings"

	"github.com/milnali/shop-backend/pkg/db/models"
	"github.com/milnali/shop-backend/pkg/enums"
	"github.com/milnali/shop-backend/pkg/retailcrm"
)

// crmTimeLayout is the timestamp format the CRM API expects.
const crmTimeLayout = "2006-01-02 15:04:05"

const orderType = "eshop-individual"

// buildAddress maps the order's address columns onto the CRM address block.
// The CRM swaps two of the storefront's fields: our housing is its building,
// and our building is its house.
func buildAddress(order *models.Order) *retailcrm.CustomerAddress {
	address := &retailcrm.CustomerAddress{
		Text: order.AddressFull(),
	}
	if order.Postcode != nil {
		address.Index = *order.Postcode
	}
	if order.Region != nil {
		address.Region = order.Region.Title
	}
	if order.Locality != nil {
		address.City = *order.Locality
	}
	if order.Street != nil {
		address.Street = *order.Street
	}
	if order.Housing != nil {
		address.Building = *order.Housing
	}
	if order.Building != nil {
		address.House = *order.Building
	}
	if order.Apartment != nil {
		address.Flat = *order.Apartment
	}
	return address
}

// buildDelivery resolves the delivery block by precedence: partner pickup
// point first, then self pickup, then courier with the full street address.
func buildDelivery(order *models.Order) retailcrm.OrderDelivery {
	delivery := retailcrm.OrderDelivery{}
	if order.DeliveryAmount != nil {
		delivery.Cost = order.DeliveryAmount.InexactFloat64()
	}

	switch {
	case order.PickupPoint != nil:
		delivery.Code = order.PickupPoint.Code
		delivery.Address = &retailcrm.CustomerAddress{Text: order.PickupPoint.Address}
		delivery.PickuppointAddress = order.PickupPoint.Address
	case order.SelfPickupPoint != nil:
		delivery.Address = &retailcrm.CustomerAddress{Text: order.SelfPickupPoint.Address}
	default:
		delivery.Address = buildAddress(order)
	}
	return delivery
}

func buildItems(order *models.Order) []retailcrm.OrderItem {
	items := make([]retailcrm.OrderItem, 0, len(order.Items))
	for _, line := range order.Items {
		item := retailcrm.OrderItem{
			InitialPrice: line.Price.InexactFloat64(),
			CreatedAt:    line.CreatedAt.Format(crmTimeLayout),
			Quantity:     line.Quantity,
		}
		if line.Size != "" {
			item.Properties = append(item.Properties, retailcrm.ItemProperty{
				Name:  "Размер",
				Value: line.Size,
			})
		}
		if line.Offer != nil {
			if line.Offer.ColorValue != nil {
				item.Properties = append(item.Properties, retailcrm.ItemProperty{
					Name:  "Цвет",
					Value: *line.Offer.ColorValue,
				})
			}
			item.Offer = retailcrm.ItemOffer{
				ExternalID: line.Offer.ID.String(),
				XMLID:      line.Offer.XMLID(),
			}
		}
		items = append(items, item)
	}
	return items
}

// buildPayment assembles the single payment block. Payment types owned by a
// CRM-side integration report no status at all, so the integration's own
// webhook stays authoritative there.
func buildPayment(order *models.Order) retailcrm.OrderPayment {
	paymentType := order.PaymentType
	payment := retailcrm.OrderPayment{
		ID:     order.AltID,
		Amount: order.TotalAmount.InexactFloat64(),
	}
	if paymentType.RetailCode != nil {
		payment.Type = *paymentType.RetailCode
	}

	if !paymentType.IsIntegrationPayment {
		payment.Status = "not-paid"
		if paymentType.PaymentKind.IsOnline() && order.PaymentStatus == enums.PaymentStatusPaid {
			payment.Status = "paid"
		}
	}

	if paymentType.PaymentKind.IsOnline() && order.PaymentGatewayOrderID != nil {
		payment.ExternalID = *order.PaymentGatewayOrderID
	}
	if paymentType.PaymentKind.IsOnline() && order.LastPaymentAttempt != nil {
		payment.PaidAt = order.LastPaymentAttempt.Format(crmTimeLayout)
	}
	return payment
}

// buildOrderPayload maps a persisted order with preloaded relations onto the
// CRM order payload. All CRM orders land in the "new" funnel status; the CRM
// operators move them from there.
func buildOrderPayload(order *models.Order, siteCode string) retailcrm.Order {
	payload := retailcrm.Order{
		Number:         order.OrderNumber,
		CreatedAt:      order.CreatedAt.Format(crmTimeLayout),
		DiscountAmount: order.DiscountAmount.InexactFloat64(),
		FirstName:      order.FirstName,
		Phone:          order.Phone,
		Status:         "new",
		Items:          buildItems(order),
		Delivery:       buildDelivery(order),
		Payments:       []retailcrm.OrderPayment{},
		OrderType:      orderType,
		Site:           siteCode,
	}

	if order.PaymentType != nil {
		payload.Payments = append(payload.Payments, buildPayment(order))
	}

	if order.LastName != nil {
		payload.LastName = *order.LastName
	}
	if order.Email != nil {
		payload.Email = strings.ToLower(*order.Email)
	}
	if order.Comment != nil {
		payload.CustomerComment = *order.Comment
	}

	if order.Coupon != nil {
		payload.CustomFields = map[string]any{"coupon": order.Coupon.Passphrase}
	}

	if order.UserID != nil {
		customer := &retailcrm.OrderCustomer{ExternalID: order.UserID.String()}
		if order.User != nil && order.User.RetailCRMID != nil {
			customer.ID = *order.User.RetailCRMID
		}
		payload.Customer = customer
	}

	if order.UTMSource != nil {
		payload.Source = &retailcrm.OrderSource{
			Source:   *order.UTMSource,
			Medium:   strValue(order.UTMMedium),
			Campaign: strValue(order.UTMCampaign),
			Keyword:  strValue(order.UTMTerm),
			Content:  strValue(order.UTMContent),
		}
	}

	return payload
}

// buildCustomer maps the order's owner onto the CRM customer record, filling
// contact fields from the order when the profile misses them.
func buildCustomer(order *models.Order, siteCode string) retailcrm.Customer {
	user := order.User
	customer := retailcrm.Customer{
		ExternalID: order.UserID.String(),
		FirstName:  order.FirstName,
		Address:    buildAddress(order),
		Site:       siteCode,
	}
	if order.LastName != nil {
		customer.LastName = *order.LastName
	}
	if order.Email != nil {
		customer.Email = strings.ToLower(*order.Email)
	}
	phone := order.Phone

	if user != nil {
		if user.FirstName != "" {
			customer.FirstName = user.FirstName
		}
		if user.LastName != nil && *user.LastName != "" {
			customer.LastName = *user.LastName
		}
		if user.Email != nil && *user.Email != "" {
			customer.Email = strings.ToLower(*user.Email)
		}
		if user.Phone != nil && *user.Phone != "" {
			phone = *user.Phone
		}
		if user.BirthDate != nil {
			customer.Birthday = user.BirthDate.Format("2006-01-02")
		}
		if !user.CreatedAt.IsZero() {
			customer.CreatedAt = user.CreatedAt.Format(crmTimeLayout)
		}
	}
	if phone != "" {
		customer.Phones = []retailcrm.CustomerPhone{{Number: phone}}
	}
	return customer
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
