package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBookingQuote(t *testing.T) {
	tests := []struct {
		name         string
		start        string
		end          string
		pricePerHour float64
		wantHours    float64
		wantTotal    float64
	}{
		{"two hours", "10:00", "12:00", 100, 2, 200},
		{"one hour", "09:00", "10:00", 150, 1, 150},
		{"ninety minutes", "09:00", "10:30", 100, 1.5, 150},
		{"rounds to whole units", "10:00", "10:30", 99, 0.5, 50},
		{"with seconds", "10:00:00", "11:00:00", 80, 1, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ComputeBookingQuote(tt.start, tt.end, tt.pricePerHour)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHours, quote.DurationHours)
			assert.Equal(t, tt.wantTotal, quote.TotalPrice)
			assert.Equal(t, tt.pricePerHour, quote.PricePerHour)
		})
	}
}

func TestComputeBookingQuoteInvalidRange(t *testing.T) {
	_, err := ComputeBookingQuote("12:00", "10:00", 100)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = ComputeBookingQuote("10:00", "10:00", 100)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestComputeBookingQuoteInvalidFormat(t *testing.T) {
	_, err := ComputeBookingQuote("banana", "12:00", 100)
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)

	_, err = ComputeBookingQuote("10:00", "25:99", 100)
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}
