package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/platform/db"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Repository abstracts sale persistence for the service.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, filter ListFilter) ([]Sale, error)
}

// TxRepository exposes the operations that must share one transaction.
type TxRepository interface {
	MedicineForUpdate(ctx context.Context, medicineID int64) (catalog.Medicine, error)
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertItem(ctx context.Context, item Item) error
	DecrementStock(ctx context.Context, medicineID int64, qty int) error
}

// PGRepository persists sales in PostgreSQL.
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

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO sales (sale_number, user_id, customer_name, total_amount, payment_method, notes)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''))
		 RETURNING id`,
		sale.SaleNumber, sale.UserID, sale.CustomerName, sale.TotalAmount,
		sale.PaymentMethod, sale.Notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert sale: %w", err)
	}
	return id, nil
}

func (r *txRepo) InsertItem(ctx context.Context, item Item) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO sale_items (sale_id, medicine_id, quantity, unit_price, discount, total_price)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.SaleID, item.MedicineID, item.Quantity, item.UnitPrice, item.Discount, item.TotalPrice)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

func (r *txRepo) DecrementStock(ctx context.Context, medicineID int64, qty int) error {
	_, err := catalog.ApplyStockDelta(ctx, r.tx, medicineID, qty, catalog.AdjustDecreaseChecked)
	return err
}

const saleColumns = `id, sale_number, user_id, COALESCE(customer_name, ''), total_amount, payment_method, COALESCE(notes, ''), created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.SaleNumber, &s.UserID, &s.CustomerName, &s.TotalAmount,
		&s.PaymentMethod, &s.Notes, &s.CreatedAt)
	return s, err
}

// Get returns the sale with its line items, medicine names resolved by join.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	items, err := r.itemsForSales(ctx, []int64{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	if s.Items == nil {
		s.Items = []Item{}
	}
	return &s, nil
}

// List returns sales newest first, with items attached.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`,
		filter.Skip, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Sale
	var ids []int64
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return []Sale{}, nil
	}

	itemsBySale, err := r.itemsForSales(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = itemsBySale[result[i].ID]
		if result[i].Items == nil {
			result[i].Items = []Item{}
		}
	}
	return result, nil
}

func (r *PGRepository) itemsForSales(ctx context.Context, saleIDs []int64) (map[int64][]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT si.id, si.sale_id, si.medicine_id, m.name, si.quantity, si.unit_price, si.discount, si.total_price
		 FROM sale_items si
		 JOIN medicines m ON m.id = si.medicine_id
		 WHERE si.sale_id = ANY($1)
		 ORDER BY si.id`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]Item)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.SaleID, &item.MedicineID, &item.MedicineName,
			&item.Quantity, &item.UnitPrice, &item.Discount, &item.TotalPrice); err != nil {
			return nil, err
		}
		items[item.SaleID] = append(items[item.SaleID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
