// Package orders implements the customer order flow: stock-checked, atomic
// creation of an order with its line items, plus status management.
package orders

import (
	"fmt"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Status enumerates order lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a caller-supplied status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidStatus, s)
}

// Order models an order header with its line items.
type Order struct {
	ID              int64     `json:"id"`
	OrderNumber     string    `json:"order_number"`
	CustomerID      int64     `json:"customer_id"`
	Status          Status    `json:"status"`
	TotalAmount     float64   `json:"total_amount"`
	ShippingAddress string    `json:"shipping_address"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Items           []Item    `json:"items"`
}

// Item is one immutable order line. UnitPrice snapshots the medicine price at
// transaction time; MedicineName is resolved at read time, never stored.
type Item struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"-"`
	MedicineID   int64   `json:"medicine_id"`
	MedicineName string  `json:"medicine_name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
}

// ListFilter narrows order listings. CustomerID zero means all customers.
type ListFilter struct {
	CustomerID int64
	Status     Status
	Skip       int
	Limit      int
}
