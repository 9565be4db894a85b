package handlers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/courease/courease-backend/internal/models"
	"github.com/courease/courease-backend/internal/services"
	"github.com/courease/courease-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreatePaymentInput struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	UserEmail string `json:"user_email" binding:"required,email"`
	UserName  string `json:"user_name" binding:"required"`
}

func frontendURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

func backendURL() string {
	if url := os.Getenv("BACKEND_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

// CreatePayment asks the provider for a hosted payment link and records it
// on the booking. On provider failure nothing is persisted, so the call is
// safe to retry.
func CreatePayment(db *gorm.DB, payments *services.PaymentClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreatePaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.Preload("Field").First(&booking, input.BookingID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		request := services.PaymentLinkRequest{
			Name: fmt.Sprintf("Booking %s", booking.Field.Name),
			Description: fmt.Sprintf("Booking for %s (%s) on %s at %s-%s",
				booking.Field.Name, booking.Field.Type, booking.Date, booking.StartTime, booking.EndTime),
			Amount: int64(math.Round(booking.TotalPrice)),
			Customer: services.PaymentCustomer{
				Name:  input.UserName,
				Email: input.UserEmail,
			},
			ReturnURL:   fmt.Sprintf("%s/payment/success?booking_id=%d", frontendURL(), booking.ID),
			CallbackURL: backendURL() + "/payment/callback",
			Metadata: map[string]string{
				"booking_id": strconv.FormatUint(uint64(booking.ID), 10),
			},
		}

		link, err := payments.CreatePaymentLink(c.Request.Context(), request)
		if err != nil {
			c.JSON(500, gin.H{
				"error":   "Failed to create payment link",
				"details": err.Error(),
			})
			return
		}

		err = db.Model(&booking).Updates(map[string]interface{}{
			"payment_id":     link.ID,
			"payment_url":    link.Link,
			"payment_status": models.PaymentStatusPending,
		}).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to save payment details"})
			return
		}

		c.JSON(200, gin.H{
			"success":     true,
			"payment_url": link.Link,
			"payment_id":  link.ID,
		})
	}
}

type PaymentCallbackInput struct {
	Status        string            `json:"status"`
	PaymentLinkID string            `json:"payment_link_id"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentCallback ingests the provider's webhook. Correlation is by
// payment_id; unmatched or unknown callbacks are acked and dropped so the
// provider does not keep retrying. Always answers 200.
func PaymentCallback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input PaymentCallbackInput
		if err := c.ShouldBindJSON(&input); err != nil {
			log.Printf("Malformed payment callback: %v", err)
			c.JSON(200, gin.H{"success": true})
			return
		}

		switch input.Status {
		case string(models.PaymentStatusPaid):
			now := time.Now()
			// Compare-and-set so a re-delivered callback is a no-op
			result := db.Model(&models.Booking{}).
				Where("payment_id = ? AND payment_status <> ?", input.PaymentLinkID, models.PaymentStatusPaid).
				Updates(map[string]interface{}{
					"payment_status": models.PaymentStatusPaid,
					"paid_at":        now,
					"status":         models.BookingStatusConfirmed,
				})
			if result.Error != nil {
				log.Printf("Payment callback update failed for %s: %v", input.PaymentLinkID, result.Error)
				break
			}
			if result.RowsAffected == 0 {
				log.Printf("Payment callback for %s matched no pending booking, dropping", input.PaymentLinkID)
				break
			}

			confirmPayment(c, db, input.PaymentLinkID)

		case string(models.PaymentStatusExpired):
			// Only the payment dies; the booking stays pending with no retry path
			err := db.Model(&models.Booking{}).
				Where("payment_id = ? AND payment_status = ?", input.PaymentLinkID, models.PaymentStatusPending).
				Update("payment_status", models.PaymentStatusExpired).Error
			if err != nil {
				log.Printf("Payment expiry update failed for %s: %v", input.PaymentLinkID, err)
			}

		default:
			log.Printf("Ignoring payment callback with status %q for %s", input.Status, input.PaymentLinkID)
		}

		c.JSON(200, gin.H{"success": true})
	}
}

// confirmPayment runs the best-effort side effects of a successful payment:
// a pub/sub notification and a confirmation email. Failures are logged only.
func confirmPayment(c *gin.Context, db *gorm.DB, paymentID string) {
	var booking models.Booking
	err := db.Preload("User").Preload("Field").
		Where("payment_id = ?", paymentID).
		First(&booking).Error
	if err != nil {
		log.Printf("Failed to load booking for payment %s: %v", paymentID, err)
		return
	}

	log.Printf("Payment successful for booking %d (payment %s)", booking.ID, paymentID)

	if err := services.PublishPaymentUpdate(c.Request.Context(), booking.ID, paymentID, string(models.PaymentStatusPaid)); err != nil {
		log.Printf("Failed to publish payment update for booking %d: %v", booking.ID, err)
	}

	err = utils.SendPaymentConfirmation(
		booking.User.Email, booking.User.Name, booking.Field.Name,
		booking.Date, booking.StartTime, booking.EndTime, booking.TotalPrice)
	if err != nil {
		log.Printf("Failed to send payment confirmation for booking %d: %v", booking.ID, err)
	}
}

// GetPaymentStatus returns the payment projection of a booking
func GetPaymentStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := db.First(&booking, c.Param("booking_id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Booking not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to fetch booking"})
			return
		}

		c.JSON(200, gin.H{
			"payment_status": booking.PaymentStatus,
			"payment_url":    booking.PaymentURL,
			"total_price":    booking.TotalPrice,
			"paid_at":        booking.PaidAt,
		})
	}
}
