package kernel_test

import (
	"testing"
	"time"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderID(t *testing.T) {
	t.Run("accepts the canonical form", func(t *testing.T) {
		id, err := kernel.ParseOrderID("SDS-20260101-0001-A")

		require.NoError(t, err)
		assert.Equal(t, "SDS-20260101-0001-A", id.String())
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), id.Date())
		assert.Equal(t, "0001", id.Serial())
		assert.Equal(t, byte('A'), id.Revision())
		assert.NoError(t, id.Validate())
	})

	t.Run("accepts hexadecimal serials", func(t *testing.T) {
		_, err := kernel.ParseOrderID("SDS-20260315-3F9C-B")
		require.NoError(t, err)
	})

	tests := map[string]string{
		"missing prefix":     "ABC-20260101-0001-A",
		"lowercase serial":   "SDS-20260101-00ab-A",
		"impossible date":    "SDS-20260231-0001-A",
		"two-letter version": "SDS-20260101-0001-AB",
		"empty":              "",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := kernel.ParseOrderID(raw)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		})
	}
}

func TestNewOrderID(t *testing.T) {
	id, err := kernel.NewOrderID(time.Date(2026, 10, 19, 15, 4, 0, 0, time.UTC), "00A7", 'C')
	require.NoError(t, err)
	assert.Equal(t, "SDS-20261019-00A7-C", id.String())

	_, err = kernel.NewOrderID(time.Time{}, "0001", 'A')
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = kernel.NewOrderID(time.Now(), "0001", 'a')
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestOrderID_ZeroValue(t *testing.T) {
	var id kernel.OrderID
	assert.ErrorIs(t, id.Validate(), kernel.ErrOrderIDIsNotConstructed)
	assert.True(t, kernel.MustParseOrderID("SDS-20260101-0001-A").IsEqual(kernel.MustParseOrderID("SDS-20260101-0001-A")))
}
