package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// memoryRepo serializes WithTx with a mutex so concurrent Create calls observe
// the same all-or-nothing behavior the row locks give the real repository.
type memoryRepo struct {
	mu        sync.Mutex
	medicines map[int64]catalog.Medicine
	orders    map[int64]*Order
	nextOrder int64
	nextItem  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		medicines: make(map[int64]catalog.Medicine),
		orders:    make(map[int64]*Order),
	}
}

func (r *memoryRepo) seedMedicine(m catalog.Medicine) catalog.Medicine {
	r.medicines[m.ID] = m
	return m
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &memoryTx{
		repo:      r,
		medicines: make(map[int64]catalog.Medicine, len(r.medicines)),
		orders:    make(map[int64]*Order),
	}
	for id, m := range r.medicines {
		tx.medicines[id] = m
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	// Commit.
	r.medicines = tx.medicines
	for id, o := range tx.orders {
		r.orders[id] = o
	}
	return nil
}

type memoryTx struct {
	repo      *memoryRepo
	medicines map[int64]catalog.Medicine
	orders    map[int64]*Order
}

func (tx *memoryTx) MedicineForUpdate(ctx context.Context, medicineID int64) (catalog.Medicine, error) {
	m, ok := tx.medicines[medicineID]
	if !ok {
		return catalog.Medicine{}, fmt.Errorf("medicine %d: %w", medicineID, shared.ErrNotFound)
	}
	return m, nil
}

func (tx *memoryTx) InsertOrder(ctx context.Context, order Order) (int64, error) {
	tx.repo.nextOrder++
	order.ID = tx.repo.nextOrder
	order.Items = []Item{}
	tx.orders[order.ID] = &order
	return order.ID, nil
}

func (tx *memoryTx) InsertItem(ctx context.Context, item Item) error {
	tx.repo.nextItem++
	item.ID = tx.repo.nextItem
	o, ok := tx.orders[item.OrderID]
	if !ok {
		return fmt.Errorf("order %d: %w", item.OrderID, shared.ErrNotFound)
	}
	item.MedicineName = tx.medicines[item.MedicineID].Name
	o.Items = append(o.Items, item)
	return nil
}

func (tx *memoryTx) DecrementStock(ctx context.Context, medicineID int64, qty int) error {
	m, ok := tx.medicines[medicineID]
	if !ok {
		return fmt.Errorf("medicine %d: %w", medicineID, shared.ErrNotFound)
	}
	if m.Stock < qty {
		return &shared.InsufficientStockError{MedicineID: medicineID, Name: m.Name, Available: m.Stock, Requested: qty}
	}
	m.Stock -= qty
	tx.medicines[medicineID] = m
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.Status = status
	return nil
}

func (r *memoryRepo) stock(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.medicines[id].Stock
}

func TestCreateOrderSnapshotsPricesAndDecrementsStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedMedicine(catalog.Medicine{ID: 1, Name: "Paracetamol 500mg", Price: 2.0, Stock: 100})
	repo.seedMedicine(catalog.Medicine{ID: 2, Name: "Amoxicillin 250mg", Price: 5.0, Stock: 40})
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), 7, CreateOrderRequest{
		ShippingAddress: "12 Mill Road",
		Items: []CreateOrderItemRequest{
			{MedicineID: 1, Quantity: 3},
			{MedicineID: 2, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, int64(7), order.CustomerID)
	require.InDelta(t, 16.0, order.TotalAmount, 0.0001)
	require.Len(t, order.Items, 2)
	require.InDelta(t, 2.0, order.Items[0].UnitPrice, 0.0001)
	require.InDelta(t, 6.0, order.Items[0].TotalPrice, 0.0001)

	require.Equal(t, 97, repo.stock(1))
	require.Equal(t, 38, repo.stock(2))
}

func TestCreateOrderAggregatesDuplicateLines(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedMedicine(catalog.Medicine{ID: 1, Name: "Cetirizine 10mg", Price: 1.8, Stock: 6})
	svc := NewService(repo, nil)

	// 3 and 4 each fit individually but their sum exceeds the stock of 6.
	_, err := svc.Create(context.Background(), 7, CreateOrderRequest{
		ShippingAddress: "12 Mill Road",
		Items: []CreateOrderItemRequest{
			{MedicineID: 1, Quantity: 3},
			{MedicineID: 1, Quantity: 4},
		},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	var stockErr *shared.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 6, stockErr.Available)
	require.Equal(t, 7, stockErr.Requested)
	require.Equal(t, 6, repo.stock(1), "failed order must not touch stock")
}

func TestCreateOrderAllOrNothing(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedMedicine(catalog.Medicine{ID: 1, Name: "Paracetamol 500mg", Price: 2.0, Stock: 100})
	repo.seedMedicine(catalog.Medicine{ID: 2, Name: "Salbutamol Inhaler", Price: 150.0, Stock: 1})
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), 7, CreateOrderRequest{
		ShippingAddress: "12 Mill Road",
		Items: []CreateOrderItemRequest{
			{MedicineID: 1, Quantity: 10},
			{MedicineID: 2, Quantity: 5},
		},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Equal(t, 100, repo.stock(1))
	require.Equal(t, 1, repo.stock(2))

	orders, listErr := svc.List(context.Background(), 1, true, ListFilter{})
	require.NoError(t, listErr)
	require.Empty(t, orders)
}

func TestCreateOrderUnknownMedicine(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), 7, CreateOrderRequest{
		ShippingAddress: "12 Mill Road",
		Items:           []CreateOrderItemRequest{{MedicineID: 99, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedMedicine(catalog.Medicine{ID: 1, Name: "Azithromycin 500mg", Price: 12.0, Stock: 10})
	svc := NewService(repo, nil)

	const buyers = 25
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Create(context.Background(), int64(n+1), CreateOrderRequest{
				ShippingAddress: "12 Mill Road",
				Items:           []CreateOrderItemRequest{{MedicineID: 1, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, shared.ErrInsufficientStock)
		}
	}
	require.Equal(t, 10, succeeded, "exactly the available stock may be sold")
	require.Equal(t, 0, repo.stock(1))
}

func TestOwnershipVisibility(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedMedicine(catalog.Medicine{ID: 1, Name: "Paracetamol 500mg", Price: 2.0, Stock: 100})
	svc := NewService(repo, nil)
	ctx := context.Background()

	mine, err := svc.Create(ctx, 7, CreateOrderRequest{
		ShippingAddress: "12 Mill Road",
		Items:           []CreateOrderItemRequest{{MedicineID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, 8, CreateOrderRequest{
		ShippingAddress: "9 High Street",
		Items:           []CreateOrderItemRequest{{MedicineID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 7, false, theirs.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	got, err := svc.Get(ctx, 7, false, mine.ID)
	require.NoError(t, err)
	require.Equal(t, mine.ID, got.ID)

	got, err = svc.Get(ctx, 99, true, theirs.ID)
	require.NoError(t, err)
	require.Equal(t, theirs.ID, got.ID)

	own, err := svc.List(ctx, 7, false, ListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, int64(7), own[0].CustomerID)

	all, err := svc.List(ctx, 99, true, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestUpdateStatus(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedMedicine(catalog.Medicine{ID: 1, Name: "Paracetamol 500mg", Price: 2.0, Stock: 100})
	svc := NewService(repo, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, 7, CreateOrderRequest{
		ShippingAddress: "12 Mill Road",
		Items:           []CreateOrderItemRequest{{MedicineID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(ctx, 1, order.ID, "shipped")
	require.NoError(t, err)
	require.Equal(t, StatusShipped, got.Status)

	// Any recognized status may replace any other; no transition table.
	got, err = svc.UpdateStatus(ctx, 1, order.ID, "pending")
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)

	_, err = svc.UpdateStatus(ctx, 1, order.ID, "returned")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, 1, 999, "shipped")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.List(context.Background(), 1, true, ListFilter{Status: Status("bogus")})
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}
