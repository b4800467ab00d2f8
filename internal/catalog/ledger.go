package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pharmadesk/pharmadesk/internal/platform/db"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// AdjustMode selects the stock mutation semantics.
type AdjustMode string

const (
	// AdjustIncrease adds quantity with no upper bound.
	AdjustIncrease AdjustMode = "increase"
	// AdjustDecreaseClamped subtracts quantity, flooring at zero. The manual
	// stock endpoint uses this path; shortfall is not an error here.
	AdjustDecreaseClamped AdjustMode = "decrease-clamped"
	// AdjustDecreaseChecked subtracts quantity, failing on shortfall. The
	// purchase flows use this path inside their enclosing transaction.
	AdjustDecreaseChecked AdjustMode = "decrease-checked"
)

// GetMedicineForUpdate loads a medicine row with a row-level lock. It must run
// on a transaction so the lock covers the following check-then-decrement.
func GetMedicineForUpdate(ctx context.Context, q db.Queryer, id int64) (Medicine, error) {
	row := q.QueryRow(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1 FOR UPDATE`, id)
	m, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Medicine{}, fmt.Errorf("medicine %d: %w", id, shared.ErrNotFound)
		}
		return Medicine{}, err
	}
	return m, nil
}

// ApplyStockDelta mutates the stock counter according to mode and returns the
// resulting stock. qty must be positive; the sign is implied by the mode.
func ApplyStockDelta(ctx context.Context, q db.Queryer, id int64, qty int, mode AdjustMode) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	var (
		stock int
		err   error
	)
	switch mode {
	case AdjustIncrease:
		err = q.QueryRow(ctx,
			`UPDATE medicines SET stock = stock + $2, updated_at = NOW() WHERE id = $1 RETURNING stock`,
			id, qty).Scan(&stock)
	case AdjustDecreaseClamped:
		err = q.QueryRow(ctx,
			`UPDATE medicines SET stock = GREATEST(0, stock - $2), updated_at = NOW() WHERE id = $1 RETURNING stock`,
			id, qty).Scan(&stock)
	case AdjustDecreaseChecked:
		err = q.QueryRow(ctx,
			`UPDATE medicines SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2 RETURNING stock`,
			id, qty).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, insufficientOrMissing(ctx, q, id, qty)
		}
	default:
		return 0, fmt.Errorf("catalog: unknown adjust mode %q", mode)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("medicine %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func insufficientOrMissing(ctx context.Context, q db.Queryer, id int64, qty int) error {
	var (
		name  string
		stock int
	)
	err := q.QueryRow(ctx, `SELECT name, stock FROM medicines WHERE id = $1`, id).Scan(&name, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("medicine %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return &shared.InsufficientStockError{MedicineID: id, Name: name, Available: stock, Requested: qty}
}
