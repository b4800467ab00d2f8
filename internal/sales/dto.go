package sales

// CreateSaleRequest is the payload for POST /sales.
type CreateSaleRequest struct {
	CustomerName  string                  `json:"customer_name"`
	PaymentMethod string                  `json:"payment_method" validate:"required"`
	Notes         string                  `json:"notes"`
	Items         []CreateSaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateSaleItemRequest is one requested line. Unlike orders, unit price and
// discount are entered at the register rather than read from the catalog.
type CreateSaleItemRequest struct {
	MedicineID int64   `json:"medicine_id" validate:"required,gt=0"`
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" validate:"required,gt=0"`
	Discount   float64 `json:"discount" validate:"gte=0"`
}
