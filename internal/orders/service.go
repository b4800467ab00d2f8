package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Service coordinates the order transaction flow.
type Service struct {
	repo     Repository
	activity shared.ActivityRecorder
	now      func() time.Time
}

// NewService builds a Service.
func NewService(repo Repository, activity shared.ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity, now: time.Now}
}

// Create turns the requested line items into a persisted order plus stock
// decrements, all inside a single transaction. Validation runs against
// cumulative per-medicine demand, so duplicate lines for one medicine cannot
// slip past the stock check individually.
func (s *Service) Create(ctx context.Context, customerID int64, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	demand := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
		}
		demand[item.MedicineID] += item.Quantity
	}
	// Lock rows in ascending id order so concurrent orders cannot deadlock.
	medicineIDs := make([]int64, 0, len(demand))
	for id := range demand {
		medicineIDs = append(medicineIDs, id)
	}
	sort.Slice(medicineIDs, func(i, j int) bool { return medicineIDs[i] < medicineIDs[j] })

	orderNumber := fmt.Sprintf("ORD-%d-%d", s.now().UnixNano(), customerID)

	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		medicines := make(map[int64]catalog.Medicine, len(medicineIDs))
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
			medicines[id] = m
		}

		var total float64
		for _, item := range req.Items {
			total += medicines[item.MedicineID].Price * float64(item.Quantity)
		}

		id, err := tx.InsertOrder(ctx, Order{
			OrderNumber:     orderNumber,
			CustomerID:      customerID,
			Status:          StatusPending,
			TotalAmount:     total,
			ShippingAddress: req.ShippingAddress,
			Notes:           req.Notes,
		})
		if err != nil {
			return err
		}
		orderID = id

		for _, item := range req.Items {
			unitPrice := medicines[item.MedicineID].Price
			if err := tx.InsertItem(ctx, Item{
				OrderID:    orderID,
				MedicineID: item.MedicineID,
				Quantity:   item.Quantity,
				UnitPrice:  unitPrice,
				TotalPrice: unitPrice * float64(item.Quantity),
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

	s.record(ctx, customerID, 0, "order_created",
		fmt.Sprintf("Order %s created", orderNumber),
		map[string]any{"order_id": orderID, "items": len(req.Items)})

	return s.repo.Get(ctx, orderID)
}

// Get returns an order. Non-privileged viewers may only read their own.
func (s *Service) Get(ctx context.Context, viewerID int64, privileged bool, id int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !privileged && order.CustomerID != viewerID {
		return nil, fmt.Errorf("order %d: %w", id, shared.ErrForbidden)
	}
	return order, nil
}

// List returns orders visible to the viewer: privileged callers see all,
// everyone else only their own.
func (s *Service) List(ctx context.Context, viewerID int64, privileged bool, filter ListFilter) ([]Order, error) {
	if filter.Status != "" {
		if _, err := ParseStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}
	if !privileged {
		filter.CustomerID = viewerID
	}
	window := shared.NewListWindow(filter.Skip, filter.Limit)
	filter.Skip = window.Skip
	filter.Limit = window.Limit
	return s.repo.List(ctx, filter)
}

// UpdateStatus overwrites the order status after validating the value. Any
// recognized status may replace any other; there is no transition table.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id int64, rawStatus string) (*Order, error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, 0, "order_status_updated",
		fmt.Sprintf("Order %d status set to %s", id, status),
		map[string]any{"order_id": id, "status": string(status)})
	return s.repo.Get(ctx, id)
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
