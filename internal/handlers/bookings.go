package handlers

import (
	"errors"
	"time"

	"github.com/courease/courease-backend/internal/models"
	"github.com/courease/courease-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BookInput struct {
	UserID    uint   `json:"user_id" binding:"required"`
	FieldID   uint   `json:"field_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// CreateBooking reserves a field for a time window. The price is computed
// from the field's hourly rate and the booking starts out pending/unpaid.
func CreateBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BookInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if _, err := time.Parse("2006-01-02", input.Date); err != nil {
			c.JSON(400, gin.H{"error": "Date must be in YYYY-MM-DD format"})
			return
		}

		var field models.Field
		if err := db.First(&field, input.FieldID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Field not found"})
			return
		}

		quote, err := utils.ComputeBookingQuote(input.StartTime, input.EndTime, field.PricePerHour)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking := models.Booking{
			UserID:        input.UserID,
			FieldID:       input.FieldID,
			Date:          input.Date,
			StartTime:     input.StartTime,
			EndTime:       input.EndTime,
			TotalPrice:    quote.TotalPrice,
			Status:        models.BookingStatusPending,
			PaymentStatus: models.PaymentStatusUnpaid,
		}

		if err := db.Create(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create booking"})
			return
		}

		c.JSON(200, gin.H{
			"message":     "Booking created successfully!",
			"booking":     booking,
			"total_price": booking.TotalPrice,
		})
	}
}

func bookingRow(b *models.Booking) gin.H {
	return gin.H{
		"id":             b.ID,
		"date":           b.Date,
		"start_time":     b.StartTime,
		"end_time":       b.EndTime,
		"status":         b.Status,
		"field_name":     b.Field.Name,
		"field_type":     b.Field.Type,
		"price_per_hour": b.Field.PricePerHour,
		"user_name":      b.User.Name,
		"user_email":     b.User.Email,
	}
}

// GetUserBookings lists a user's bookings with field and user details
func GetUserBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(400, gin.H{"error": "user_id query parameter required"})
			return
		}

		var bookings []models.Booking
		if err := db.Where("user_id = ?", userID).
			Preload("Field").
			Preload("User").
			Order("date DESC, start_time ASC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		rows := make([]gin.H, 0, len(bookings))
		for i := range bookings {
			rows = append(rows, bookingRow(&bookings[i]))
		}

		c.JSON(200, rows)
	}
}

// GetAdminBookings lists every booking for the admin dashboard
func GetAdminBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bookings []models.Booking
		if err := db.Preload("Field").
			Preload("User").
			Order("date DESC, start_time ASC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		rows := make([]gin.H, 0, len(bookings))
		for i := range bookings {
			rows = append(rows, bookingRow(&bookings[i]))
		}

		c.JSON(200, rows)
	}
}

// UpdateBookingStatus lets an admin move a paid booking to confirmed,
// completed or cancelled. Unpaid bookings are rejected, and completed or
// cancelled bookings are terminal.
func UpdateBookingStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingId := c.Param("id")

		var input struct {
			Status string `json:"status" binding:"required,oneof=confirmed completed cancelled"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, bookingId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Booking not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to fetch booking"})
			return
		}

		if booking.PaymentStatus != models.PaymentStatusPaid {
			c.JSON(400, gin.H{"error": "Booking has not been paid for yet"})
			return
		}

		// Conditional update: the payment callback may be racing us, and a
		// terminal status must never be overwritten.
		result := db.Model(&models.Booking{}).
			Where("id = ? AND payment_status = ? AND status NOT IN ?",
				booking.ID, models.PaymentStatusPaid,
				[]models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled}).
			Update("status", input.Status)
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update booking status"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(400, gin.H{"error": "Booking is already finalized"})
			return
		}

		c.JSON(200, gin.H{"message": "Booking " + input.Status})
	}
}
