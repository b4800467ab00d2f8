// Package sales implements the point-of-sale flow: stock-checked, atomic
// creation of a sale with its line items. Sales are terminal on creation.
package sales

import "time"

// Sale models a completed in-store sale. There is no status lifecycle.
type Sale struct {
	ID            int64     `json:"id"`
	SaleNumber    string    `json:"sale_number"`
	UserID        int64     `json:"user_id"`
	CustomerName  string    `json:"customer_name,omitempty"`
	TotalAmount   float64   `json:"total_amount"`
	PaymentMethod string    `json:"payment_method"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Items         []Item    `json:"items"`
}

// Item is one immutable sale line. UnitPrice and Discount come from the
// point-of-sale entry; MedicineName is resolved at read time, never stored.
type Item struct {
	ID           int64   `json:"id"`
	SaleID       int64   `json:"-"`
	MedicineID   int64   `json:"medicine_id"`
	MedicineName string  `json:"medicine_name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Discount     float64 `json:"discount"`
	TotalPrice   float64 `json:"total_price"`
}

// ListFilter narrows sale listings.
type ListFilter struct {
	Skip  int
	Limit int
}
