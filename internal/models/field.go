package models

import (
	"gorm.io/gorm"
)

// Field is a bookable sports field with an hourly rate.
type Field struct {
	gorm.Model
	Name         string  `json:"name" gorm:"not null"`
	Type         string  `json:"type"`
	PricePerHour float64 `json:"price_per_hour" gorm:"not null"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
}

// TableName specifies the table name
func (Field) TableName() string {
	return "fields"
}
