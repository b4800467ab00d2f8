// Package catalog manages the medicine catalog and its stock ledger.
package catalog

import (
	"errors"
	"time"
)

// Medicine represents a catalog entry. Stock is the authoritative on-hand
// counter; MaxStockLevel is informational and never enforced.
type Medicine struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description,omitempty"`
	Price                float64   `json:"price"`
	Stock                int       `json:"stock"`
	Category             string    `json:"category"`
	Manufacturer         string    `json:"manufacturer"`
	Dosage               string    `json:"dosage,omitempty"`
	PrescriptionRequired bool      `json:"prescription_required"`
	MinStockLevel        int       `json:"min_stock_level"`
	MaxStockLevel        int       `json:"max_stock_level"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// LowStock reports whether the medicine sits at or below its minimum level.
func (m Medicine) LowStock() bool {
	return m.Stock <= m.MinStockLevel
}

// ListFilter narrows catalog listings. Search matches name substrings
// case-insensitively. Soft-deleted medicines are always excluded.
type ListFilter struct {
	Category string
	Search   string
	Skip     int
	Limit    int
}

// ErrInvalidQuantity indicates a non-positive adjustment quantity.
var ErrInvalidQuantity = errors.New("catalog: quantity must be positive")
