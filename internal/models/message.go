package models

import (
	"gorm.io/gorm"
)

// Message is one chat message inside a booking's conversation. The body is
// immutable once created; only is_read changes, via the bulk mark-read path.
type Message struct {
	gorm.Model
	BookingID  uint   `json:"booking_id" gorm:"not null;index"`
	SenderID   uint   `json:"sender_id" gorm:"not null"`
	SenderRole string `json:"sender_role" gorm:"not null"`
	Body       string `json:"message" gorm:"column:message;not null"`
	IsRead     bool   `json:"is_read" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}
