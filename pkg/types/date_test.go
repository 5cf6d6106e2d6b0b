package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateStringFromString(t *testing.T) {
	d, err := NewDateStringFromString("2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", d.String())

	_, err = NewDateStringFromString("01.06.2026")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	_, err = NewDateStringFromString("2026-13-40")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestDateString_DaysUntil(t *testing.T) {
	tests := []struct {
		from     DateString
		to       DateString
		expected int
	}{
		{"2026-06-01", "2026-06-03", 2},
		{"2026-06-01", "2026-06-02", 1},
		{"2026-06-01", "2026-06-01", 0},
		{"2026-06-03", "2026-06-01", -2},
		{"2026-02-28", "2026-03-01", 1}, // не високосный
		{"2028-02-28", "2028-03-01", 2}, // високосный
	}

	for _, tt := range tests {
		days, err := tt.from.DaysUntil(tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, days, "%s -> %s", tt.from, tt.to)
	}
}

func TestDateString_DatesUntil_ExcludesCheckout(t *testing.T) {
	dates, err := DateString("2026-06-01").DatesUntil("2026-06-04")
	require.NoError(t, err)
	assert.Equal(t, []DateString{"2026-06-01", "2026-06-02", "2026-06-03"}, dates)

	empty, err := DateString("2026-06-01").DatesUntil("2026-06-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDateString_Scan(t *testing.T) {
	var d DateString

	require.NoError(t, d.Scan(time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, DateString("2026-06-01"), d)

	require.NoError(t, d.Scan([]byte("2026-07-15")))
	assert.Equal(t, DateString("2026-07-15"), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDateString_Value(t *testing.T) {
	v, err := DateString("2026-06-01").Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", v)

	v, err = DateString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = DateString("garbage").Value()
	assert.Error(t, err)
}
