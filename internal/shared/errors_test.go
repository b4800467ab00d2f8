package shared

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsufficientStockErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("create order: %w", &InsufficientStockError{
		MedicineID: 3, Name: "Paracetamol 500mg", Available: 2, Requested: 5,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, 2, stockErr.Available)
	require.Contains(t, stockErr.Error(), "Paracetamol 500mg")
}

func TestListWindowNormalization(t *testing.T) {
	w := NewListWindow(-5, 0)
	require.Equal(t, 0, w.Skip)
	require.Equal(t, 100, w.Limit)

	w = NewListWindow(10, 9999)
	require.Equal(t, 10, w.Skip)
	require.Equal(t, 500, w.Limit)

	w = WindowFromQuery(url.Values{"skip": {"20"}, "limit": {"50"}})
	require.Equal(t, 20, w.Skip)
	require.Equal(t, 50, w.Limit)
}
