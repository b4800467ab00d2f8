package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Service coordinates catalog operations.
type Service struct {
	repo     Repository
	activity shared.ActivityRecorder
}

// NewService builds a Service.
func NewService(repo Repository, activity shared.ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// List returns active medicines matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Medicine, error) {
	window := shared.NewListWindow(filter.Skip, filter.Limit)
	filter.Skip = window.Skip
	filter.Limit = window.Limit
	return s.repo.List(ctx, filter)
}

// Get returns a medicine by id. Soft-deleted rows remain retrievable so
// historical line items can resolve their medicine.
func (s *Service) Get(ctx context.Context, id int64) (Medicine, error) {
	if id <= 0 {
		return Medicine{}, fmt.Errorf("medicine %d: %w", id, shared.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a new medicine.
func (s *Service) Create(ctx context.Context, actorID int64, req CreateMedicineRequest) (Medicine, error) {
	if err := validateCreate(req); err != nil {
		return Medicine{}, err
	}
	m, err := s.repo.Create(ctx, Medicine{
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		Stock:                req.Stock,
		Category:             req.Category,
		Manufacturer:         req.Manufacturer,
		Dosage:               req.Dosage,
		PrescriptionRequired: req.PrescriptionRequired,
		MinStockLevel:        req.MinStockLevel,
		MaxStockLevel:        req.MaxStockLevel,
	})
	if err != nil {
		return Medicine{}, err
	}
	s.record(ctx, actorID, m.ID, "medicine_created", fmt.Sprintf("Medicine %s created", m.Name), nil)
	return m, nil
}

func validateCreate(req CreateMedicineRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: medicine name is required", shared.ErrValidation)
	}
	if strings.TrimSpace(req.Category) == "" {
		return fmt.Errorf("%w: category is required", shared.ErrValidation)
	}
	if strings.TrimSpace(req.Manufacturer) == "" {
		return fmt.Errorf("%w: manufacturer is required", shared.ErrValidation)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", shared.ErrValidation)
	}
	if req.Stock < 0 || req.MinStockLevel < 0 || req.MaxStockLevel < 0 {
		return fmt.Errorf("%w: stock levels must not be negative", shared.ErrValidation)
	}
	return nil
}

// Update applies patch semantics: only non-nil fields change.
func (s *Service) Update(ctx context.Context, actorID, id int64, req UpdateMedicineRequest) (Medicine, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return Medicine{}, fmt.Errorf("%w: price must be positive", shared.ErrValidation)
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return Medicine{}, fmt.Errorf("%w: stock must not be negative", shared.ErrValidation)
		}
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Manufacturer != nil {
		updates["manufacturer"] = *req.Manufacturer
	}
	if req.Dosage != nil {
		updates["dosage"] = *req.Dosage
	}
	if req.PrescriptionRequired != nil {
		updates["prescription_required"] = *req.PrescriptionRequired
	}
	if req.MinStockLevel != nil {
		updates["min_stock_level"] = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		updates["max_stock_level"] = *req.MaxStockLevel
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	m, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return Medicine{}, err
	}
	s.record(ctx, actorID, m.ID, "medicine_updated", fmt.Sprintf("Medicine %s updated", m.Name), nil)
	return m, nil
}

// UpdateStock applies the manual stock endpoint semantics: add increases with
// no upper bound, subtract clamps at zero instead of failing.
func (s *Service) UpdateStock(ctx context.Context, actorID, id int64, req StockUpdateRequest) (Medicine, error) {
	if req.Quantity <= 0 {
		return Medicine{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	var mode AdjustMode
	switch req.Operation {
	case "add":
		mode = AdjustIncrease
	case "subtract":
		mode = AdjustDecreaseClamped
	default:
		return Medicine{}, fmt.Errorf("%w: %q", shared.ErrInvalidOperation, req.Operation)
	}
	m, err := s.repo.AdjustStock(ctx, id, req.Quantity, mode)
	if err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			return Medicine{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
		}
		return Medicine{}, err
	}
	s.record(ctx, actorID, m.ID, "stock_updated",
		fmt.Sprintf("Stock %s %d for %s", req.Operation, req.Quantity, m.Name),
		map[string]any{"operation": req.Operation, "quantity": req.Quantity, "stock": m.Stock})
	return m, nil
}

// LowStock returns active medicines at or below their minimum level.
func (s *Service) LowStock(ctx context.Context) ([]Medicine, error) {
	return s.repo.LowStock(ctx)
}

// Delete soft-deletes a medicine.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, id, "medicine_deleted", fmt.Sprintf("Medicine %d deactivated", id), nil)
	return nil
}

func (s *Service) record(ctx context.Context, userID, medicineID int64, activityType, message string, meta map[string]any) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.Activity{
		UserID:     userID,
		MedicineID: medicineID,
		Type:       activityType,
		Message:    message,
		Meta:       meta,
	})
}
