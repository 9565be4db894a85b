package utils

import (
	"errors"
	"math"
	"time"
)

// BookingQuote contains the computed price and its breakdown
type BookingQuote struct {
	DurationHours float64 `json:"durationHours"`
	PricePerHour  float64 `json:"pricePerHour"`
	TotalPrice    float64 `json:"totalPrice"`
}

var (
	ErrInvalidTimeFormat = errors.New("times must be in HH:MM format")
	ErrInvalidTimeRange  = errors.New("end time must be after start time")
)

// parseClock parses a same-day wall-clock time such as "10:00"
func parseClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		// Tolerate seconds, some clients send "10:00:00"
		t, err = time.Parse("15:04:05", value)
	}
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}
	return t, nil
}

// ComputeBookingQuote calculates the total price for a booking window.
// Duration is a same-day wall-clock subtraction and the total is rounded
// to whole currency units.
func ComputeBookingQuote(startTime, endTime string, pricePerHour float64) (*BookingQuote, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return nil, err
	}

	duration := end.Sub(start).Hours()
	if duration <= 0 {
		return nil, ErrInvalidTimeRange
	}

	return &BookingQuote{
		DurationHours: duration,
		PricePerHour:  pricePerHour,
		TotalPrice:    math.Round(duration * pricePerHour),
	}, nil
}
