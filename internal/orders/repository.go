package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/platform/db"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Repository abstracts order persistence for the service.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// TxRepository exposes the operations that must share one transaction: the
// medicine row lock, the inserts, and the checked stock decrement.
type TxRepository interface {
	MedicineForUpdate(ctx context.Context, medicineID int64) (catalog.Medicine, error)
	InsertOrder(ctx context.Context, order Order) (int64, error)
	InsertItem(ctx context.Context, item Item) error
	DecrementStock(ctx context.Context, medicineID int64, qty int) error
}

// PGRepository persists orders in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// WithTx executes fn inside one RepeatableRead transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

type txRepo struct {
	tx pgx.Tx
}

func (r *txRepo) MedicineForUpdate(ctx context.Context, medicineID int64) (catalog.Medicine, error) {
	return catalog.GetMedicineForUpdate(ctx, r.tx, medicineID)
}

func (r *txRepo) InsertOrder(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO orders (order_number, customer_id, status, total_amount, shipping_address, notes)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		 RETURNING id`,
		order.OrderNumber, order.CustomerID, order.Status, order.TotalAmount,
		order.ShippingAddress, order.Notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (r *txRepo) InsertItem(ctx context.Context, item Item) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO order_items (order_id, medicine_id, quantity, unit_price, total_price)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.OrderID, item.MedicineID, item.Quantity, item.UnitPrice, item.TotalPrice)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *txRepo) DecrementStock(ctx context.Context, medicineID int64, qty int) error {
	_, err := catalog.ApplyStockDelta(ctx, r.tx, medicineID, qty, catalog.AdjustDecreaseChecked)
	return err
}

const orderColumns = `id, order_number, customer_id, status, total_amount, shipping_address, COALESCE(notes, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.Status, &o.TotalAmount,
		&o.ShippingAddress, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Get returns the order with its line items, medicine names resolved by join.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	items, err := r.itemsForOrders(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []Item{}
	}
	return &o, nil
}

// List returns orders matching the filter, newest first, with items attached.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if filter.CustomerID != 0 {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, filter.CustomerID)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d`,
		orderColumns, strings.Join(conditions, " AND "), argPos, argPos+1)
	args = append(args, filter.Skip, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Order
	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return []Order{}, nil
	}

	itemsByOrder, err := r.itemsForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = itemsByOrder[result[i].ID]
		if result[i].Items == nil {
			result[i].Items = []Item{}
		}
	}
	return result, nil
}

func (r *PGRepository) itemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT oi.id, oi.order_id, oi.medicine_id, m.name, oi.quantity, oi.unit_price, oi.total_price
		 FROM order_items oi
		 JOIN medicines m ON m.id = oi.medicine_id
		 WHERE oi.order_id = ANY($1)
		 ORDER BY oi.id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]Item)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MedicineID, &item.MedicineName,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus overwrites the order status.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}
