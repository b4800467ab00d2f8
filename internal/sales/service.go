package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Service coordinates the point-of-sale transaction flow.
type Service struct {
	repo     Repository
	activity shared.ActivityRecorder
	now      func() time.Time
}

// NewService builds a Service.
func NewService(repo Repository, activity shared.ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity, now: time.Now}
}

// Create persists a sale with its line items and decrements stock, all inside
// a single transaction. Prices and discounts come from the register; a
// discount may not exceed the line subtotal. Stock validation runs against
// cumulative per-medicine demand across all lines.
func (s *Service) Create(ctx context.Context, operatorID int64, req CreateSaleRequest) (*Sale, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	if req.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", shared.ErrValidation)
	}
	demand := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
		}
		if item.UnitPrice <= 0 {
			return nil, fmt.Errorf("%w: unit price must be positive", shared.ErrValidation)
		}
		if item.Discount < 0 {
			return nil, fmt.Errorf("%w: discount must not be negative", shared.ErrValidation)
		}
		if item.Discount > item.UnitPrice*float64(item.Quantity) {
			return nil, fmt.Errorf("%w: discount exceeds line subtotal", shared.ErrValidation)
		}
		demand[item.MedicineID] += item.Quantity
	}
	medicineIDs := make([]int64, 0, len(demand))
	for id := range demand {
		medicineIDs = append(medicineIDs, id)
	}
	sort.Slice(medicineIDs, func(i, j int) bool { return medicineIDs[i] < medicineIDs[j] })

	var total float64
	for _, item := range req.Items {
		total += item.UnitPrice*float64(item.Quantity) - item.Discount
	}

	saleNumber := fmt.Sprintf("SALE-%d-%d", s.now().UnixNano(), operatorID)

	var saleID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, id := range medicineIDs {
			m, err := tx.MedicineForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if m.Stock < demand[id] {
				return &shared.InsufficientStockError{
					MedicineID: m.ID,
					Name:       m.Name,
					Available:  m.Stock,
					Requested:  demand[id],
				}
			}
		}

		id, err := tx.InsertSale(ctx, Sale{
			SaleNumber:    saleNumber,
			UserID:        operatorID,
			CustomerName:  req.CustomerName,
			TotalAmount:   total,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
		})
		if err != nil {
			return err
		}
		saleID = id

		for _, item := range req.Items {
			if err := tx.InsertItem(ctx, Item{
				SaleID:     saleID,
				MedicineID: item.MedicineID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				Discount:   item.Discount,
				TotalPrice: item.UnitPrice*float64(item.Quantity) - item.Discount,
			}); err != nil {
				return err
			}
		}

		for _, id := range medicineIDs {
			if err := tx.DecrementStock(ctx, id, demand[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, operatorID, "sale_created",
		fmt.Sprintf("Sale %s completed", saleNumber),
		map[string]any{"sale_id": saleID, "total_amount": total})

	return s.repo.Get(ctx, saleID)
}

// Get returns a sale. Sales carry no ownership-based read restriction: any
// authenticated caller may read any sale.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns sales, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	window := shared.NewListWindow(filter.Skip, filter.Limit)
	filter.Skip = window.Skip
	filter.Limit = window.Limit
	return s.repo.List(ctx, filter)
}

func (s *Service) record(ctx context.Context, userID int64, activityType, message string, meta map[string]any) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.Activity{
		UserID:  userID,
		Type:    activityType,
		Message: message,
		Meta:    meta,
	})
}
