package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Repository abstracts catalog persistence for the service.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Medicine, error)
	Get(ctx context.Context, id int64) (Medicine, error)
	Create(ctx context.Context, m Medicine) (Medicine, error)
	Update(ctx context.Context, id int64, updates map[string]any) (Medicine, error)
	SoftDelete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, qty int, mode AdjustMode) (Medicine, error)
	LowStock(ctx context.Context) ([]Medicine, error)
}

// PGRepository persists medicines in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const medicineColumns = `id, name, description, price, stock, category, manufacturer, dosage,
	prescription_required, min_stock_level, max_stock_level, is_active, created_at, updated_at`

func scanMedicine(row pgx.Row) (Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Stock, &m.Category, &m.Manufacturer,
		&m.Dosage, &m.PrescriptionRequired, &m.MinStockLevel, &m.MaxStockLevel, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func collectMedicines(rows pgx.Rows) ([]Medicine, error) {
	defer rows.Close()
	var medicines []Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return medicines, nil
}

// List returns active medicines matching the filter.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Medicine, error) {
	conditions := []string{"is_active = TRUE"}
	var args []any
	argPos := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, filter.Category)
		argPos++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	query := fmt.Sprintf(`SELECT %s FROM medicines WHERE %s ORDER BY id OFFSET $%d LIMIT $%d`,
		medicineColumns, strings.Join(conditions, " AND "), argPos, argPos+1)
	args = append(args, filter.Skip, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectMedicines(rows)
}

// Get returns a medicine by id, including soft-deleted rows so historical
// references still resolve.
func (r *PGRepository) Get(ctx context.Context, id int64) (Medicine, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id)
	m, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Medicine{}, fmt.Errorf("medicine %d: %w", id, shared.ErrNotFound)
		}
		return Medicine{}, err
	}
	return m, nil
}

// Create inserts a new medicine.
func (r *PGRepository) Create(ctx context.Context, m Medicine) (Medicine, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO medicines (name, description, price, stock, category, manufacturer, dosage,
			prescription_required, min_stock_level, max_stock_level, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		 RETURNING `+medicineColumns,
		m.Name, m.Description, m.Price, m.Stock, m.Category, m.Manufacturer, m.Dosage,
		m.PrescriptionRequired, m.MinStockLevel, m.MaxStockLevel)
	created, err := scanMedicine(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Medicine{}, fmt.Errorf("medicine %q: %w", m.Name, shared.ErrDuplicate)
		}
		return Medicine{}, err
	}
	return created, nil
}

// Update applies a partial update built from the supplied column/value pairs.
func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]any) (Medicine, error) {
	if len(updates) == 0 {
		return r.Get(ctx, id)
	}
	setClauses := make([]string, 0, len(updates)+1)
	args := []any{id}
	argPos := 2
	for _, column := range updatableColumns {
		value, ok := updates[column]
		if !ok {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE medicines SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(setClauses, ", "), medicineColumns)
	m, err := scanMedicine(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Medicine{}, fmt.Errorf("medicine %d: %w", id, shared.ErrNotFound)
		}
		return Medicine{}, err
	}
	return m, nil
}

// updatableColumns fixes the set (and order) of patchable columns so update
// SQL is never built from caller-supplied keys.
var updatableColumns = []string{
	"name", "description", "price", "stock", "category", "manufacturer", "dosage",
	"prescription_required", "min_stock_level", "max_stock_level", "is_active",
}

// SoftDelete marks the medicine inactive, preserving historical references.
func (r *PGRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE medicines SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("medicine %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// AdjustStock applies a ledger mutation outside any purchase transaction and
// returns the updated medicine.
func (r *PGRepository) AdjustStock(ctx context.Context, id int64, qty int, mode AdjustMode) (Medicine, error) {
	if _, err := ApplyStockDelta(ctx, r.pool, id, qty, mode); err != nil {
		return Medicine{}, err
	}
	return r.Get(ctx, id)
}

// LowStock returns active medicines at or below their minimum stock level.
func (r *PGRepository) LowStock(ctx context.Context) ([]Medicine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE is_active = TRUE AND stock <= min_stock_level ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectMedicines(rows)
}
