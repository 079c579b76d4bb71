package retailcrm

// Response is the common v5 write envelope.
type Response struct {
	Success  bool           `json:"success"`
	ID       int64          `json:"id,omitempty"`
	ErrorMsg string         `json:"errorMsg,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

// Customer is the CRM customer record.
type Customer struct {
	ExternalID string           `json:"externalId"`
	FirstName  string           `json:"firstName,omitempty"`
	LastName   string           `json:"lastName,omitempty"`
	Email      string           `json:"email,omitempty"`
	Phones     []CustomerPhone  `json:"phones,omitempty"`
	Address    *CustomerAddress `json:"address,omitempty"`
	Birthday   string           `json:"birthday,omitempty"`
	CreatedAt  string           `json:"createdAt,omitempty"`
	Site       string           `json:"site,omitempty"`
}

type CustomerPhone struct {
	Number string `json:"number"`
}

// CustomerAddress mirrors the structured address block of the CRM.
type CustomerAddress struct {
	Index    string `json:"index,omitempty"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Street   string `json:"street,omitempty"`
	Building string `json:"building,omitempty"`
	House    string `json:"house,omitempty"`
	Flat     string `json:"flat,omitempty"`
	Text     string `json:"text,omitempty"`
}

// CustomerResponse wraps a customer read.
type CustomerResponse struct {
	Success  bool      `json:"success"`
	ErrorMsg string    `json:"errorMsg,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
}

// Order is the CRM order payload.
type Order struct {
	Number          string         `json:"number"`
	CreatedAt       string         `json:"createdAt"`
	DiscountAmount  float64        `json:"discountAmount"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName,omitempty"`
	Phone           string         `json:"phone"`
	Email           string         `json:"email,omitempty"`
	CustomerComment string         `json:"customerComment,omitempty"`
	Status          string         `json:"status"`
	Items           []OrderItem    `json:"items"`
	Delivery        OrderDelivery  `json:"delivery"`
	Payments        []OrderPayment `json:"payments"`
	Customer        *OrderCustomer `json:"customer,omitempty"`
	CustomFields    map[string]any `json:"customFields,omitempty"`
	Source          *OrderSource   `json:"source,omitempty"`
	OrderType       string         `json:"orderType"`
	Site            string         `json:"site"`
}

// OrderCustomer links the order to an existing CRM customer.
type OrderCustomer struct {
	ExternalID string `json:"externalId,omitempty"`
	ID         int64  `json:"id,omitempty"`
}

// OrderItem is one order line.
type OrderItem struct {
	InitialPrice float64        `json:"initialPrice"`
	CreatedAt    string         `json:"createdAt"`
	Quantity     int            `json:"quantity"`
	Properties   []ItemProperty `json:"properties,omitempty"`
	Offer        ItemOffer      `json:"offer"`
}

type ItemProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ItemOffer struct {
	ExternalID string `json:"externalId,omitempty"`
	XMLID      string `json:"xmlId,omitempty"`
}

// OrderDelivery carries the resolved delivery block.
type OrderDelivery struct {
	Address            *CustomerAddress `json:"address,omitempty"`
	Cost               float64          `json:"cost"`
	Code               string           `json:"code,omitempty"`
	PickuppointAddress string           `json:"pickuppointAddress,omitempty"`
}

// OrderPayment is one payment block; Status is omitted for payment types the
// CRM-side integration owns.
type OrderPayment struct {
	ID         string  `json:"id"`
	Status     string  `json:"status,omitempty"`
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
	ExternalID string  `json:"externalId,omitempty"`
	PaidAt     string  `json:"paidAt,omitempty"`
}

// OrderSource is the UTM attribution block.
type OrderSource struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	Keyword  string `json:"keyword"`
	Content  string `json:"content"`
}

// OrdersStatusesResponse wraps the bulk status read.
type OrdersStatusesResponse struct {
	Success  bool              `json:"success"`
	ErrorMsg string            `json:"errorMsg,omitempty"`
	Orders   []OrderStatusItem `json:"orders"`
}

// OrderStatusItem is one entry of a bulk status read.
type OrderStatusItem struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"externalId,omitempty"`
	Number     string `json:"number,omitempty"`
	Status     string `json:"status"`
}
