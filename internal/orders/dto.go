package orders

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	ShippingAddress string                   `json:"shipping_address" validate:"required"`
	Notes           string                   `json:"notes"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderItemRequest is one requested line. The unit price is never
// caller-supplied; it is snapshotted from the catalog inside the transaction.
type CreateOrderItemRequest struct {
	MedicineID int64 `json:"medicine_id" validate:"required,gt=0"`
	Quantity   int   `json:"quantity" validate:"required,gt=0"`
}

// UpdateStatusRequest is the payload for PATCH /orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
