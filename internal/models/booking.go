package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether the status allows no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusExpired PaymentStatus = "expired"
)

// Booking reserves a field for a time window on a given date. Status only
// leaves pending once the payment callback has marked the booking paid;
// payment fields are written by the payment flow alone.
type Booking struct {
	gorm.Model
	UserID        uint          `json:"user_id" gorm:"not null"`
	User          User          `json:"user,omitempty"`
	FieldID       uint          `json:"field_id" gorm:"not null"`
	Field         Field         `json:"field,omitempty"`
	Date          string        `json:"date" gorm:"not null"`       // 2006-01-02
	StartTime     string        `json:"start_time" gorm:"not null"` // 15:04
	EndTime       string        `json:"end_time" gorm:"not null"`
	TotalPrice    float64       `json:"total_price" gorm:"not null"`
	Status        BookingStatus `json:"status" gorm:"not null;default:'pending'"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"not null;default:'unpaid'"`
	PaymentID     string        `json:"payment_id"`
	PaymentURL    string        `json:"payment_url"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
