package catalog

// CreateMedicineRequest is the payload for POST /medicines.
type CreateMedicineRequest struct {
	Name                 string  `json:"name" validate:"required"`
	Description          string  `json:"description"`
	Price                float64 `json:"price" validate:"required,gt=0"`
	Stock                int     `json:"stock" validate:"gte=0"`
	Category             string  `json:"category" validate:"required"`
	Manufacturer         string  `json:"manufacturer" validate:"required"`
	Dosage               string  `json:"dosage"`
	PrescriptionRequired bool    `json:"prescription_required"`
	MinStockLevel        int     `json:"min_stock_level" validate:"gte=0"`
	MaxStockLevel        int     `json:"max_stock_level" validate:"gte=0"`
}

// UpdateMedicineRequest is the payload for PUT /medicines/{id}.
// Only non-nil fields are applied.
type UpdateMedicineRequest struct {
	Name                 *string  `json:"name,omitempty"`
	Description          *string  `json:"description,omitempty"`
	Price                *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock                *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category             *string  `json:"category,omitempty"`
	Manufacturer         *string  `json:"manufacturer,omitempty"`
	Dosage               *string  `json:"dosage,omitempty"`
	PrescriptionRequired *bool    `json:"prescription_required,omitempty"`
	MinStockLevel        *int     `json:"min_stock_level,omitempty" validate:"omitempty,gte=0"`
	MaxStockLevel        *int     `json:"max_stock_level,omitempty" validate:"omitempty,gte=0"`
	IsActive             *bool    `json:"is_active,omitempty"`
}

// StockUpdateRequest is the payload for PATCH /medicines/{id}/stock.
type StockUpdateRequest struct {
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Operation string `json:"operation" validate:"required"`
}
