package order

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order actions the storefront gates on the client.
var (
	ErrNotCancelable    = errors.New("only processing orders can be cancelled")
	ErrNotReturnable    = errors.New("only delivered orders without a pending return can be returned")
	ErrEmptyReturnCause = errors.New("a reason is required to request a return")
)

// Status is the fulfilment state of an order.
type Status string

// Order statuses as shown in the admin console.
const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// AdminStatuses lists the statuses an admin may assign.
var AdminStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// Valid reports whether s is one of the statuses an admin may assign.
func (s Status) Valid() bool {
	for _, v := range AdminStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order represents a placed customer order.
type Order struct {
	ID              string          `json:"_id"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Total           decimal.Decimal `json:"totalPrice"`
	Status          Status          `json:"orderStatus"`
	ReturnRequested bool            `json:"returnRequested"`
	ReturnReason    string          `json:"returnReason,omitempty"`
	User            Customer        `json:"user"`
	CreatedAt       time.Time       `json:"createdAt"`

	// LegacyStatus is the status key some admin listings still send.
	LegacyStatus Status `json:"status,omitempty"`
}

// Customer is the user who placed an order. Listings that do not populate
// the user send only its id.
type Customer struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UnmarshalJSON accepts a user id, a user object or null.
func (c *Customer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*c = Customer{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return errors.Wrap(err, "customer id")
		}
		*c = Customer{ID: id}
		return nil
	}
	type plain Customer
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "customer object")
	}
	*c = Customer(v)
	return nil
}

// EffectiveStatus returns the order status, treating an unset one as
// Processing the way the order page displays it.
func (o *Order) EffectiveStatus() Status {
	switch {
	case o.Status != "":
		return o.Status
	case o.LegacyStatus != "":
		return o.LegacyStatus
	default:
		return StatusProcessing
	}
}

// Cancelable reports whether the customer may cancel the order.
func (o *Order) Cancelable() bool {
	return o.EffectiveStatus() == StatusProcessing
}

// Returnable reports whether the customer may request a return.
func (o *Order) Returnable() bool {
	return o.EffectiveStatus() == StatusDelivered && !o.ReturnRequested
}

// Item represents a single line item in an order.
type Item struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ShippingAddress is where an order ships to.
type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// PlaceRequest is the body sent to create an order from the current cart.
type PlaceRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}
