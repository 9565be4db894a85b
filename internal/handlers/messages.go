package handlers

import (
	"time"

	"github.com/courease/courease-backend/internal/models"
	"github.com/courease/courease-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MessageView is a message row with the sender's display name joined in
type MessageView struct {
	ID         uint      `json:"id"`
	BookingID  uint      `json:"booking_id"`
	SenderID   uint      `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
	SenderName string    `json:"sender_name"`
}

// GetMessages returns a booking's chat history, oldest first
func GetMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var messages []MessageView
		err := db.Raw(`
			SELECT m.id, m.booking_id, m.sender_id, m.sender_role, m.message,
			       m.created_at, m.is_read, u.name AS sender_name
			FROM messages m
			LEFT JOIN users u ON u.id = m.sender_id
			WHERE m.booking_id = ?
			ORDER BY m.created_at ASC, m.id ASC`,
			c.Param("booking_id")).Scan(&messages).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch messages"})
			return
		}

		c.JSON(200, messages)
	}
}

type SendMessageInput struct {
	BookingID  uint   `json:"booking_id" binding:"required"`
	SenderID   uint   `json:"sender_id" binding:"required"`
	SenderRole string `json:"sender_role" binding:"required,oneof=user admin"`
	Message    string `json:"message" binding:"required"`
}

// SendMessage persists a chat message over HTTP and broadcasts it to the
// booking's room, as an alternative to the websocket send_message event.
func SendMessage(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SendMessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, input.BookingID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		message := models.Message{
			BookingID:  input.BookingID,
			SenderID:   input.SenderID,
			SenderRole: input.SenderRole,
			Body:       input.Message,
		}

		if err := db.Create(&message).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to send message"})
			return
		}

		var sender models.User
		db.First(&sender, input.SenderID)

		hub.BroadcastNewMessage(&message, sender.Name)

		c.JSON(200, gin.H{
			"message": "Message sent",
			"data":    services.NewMessageEvent(&message, sender.Name),
		})
	}
}

// ChatSummary is one admin chat list entry: a booking with at least one
// message, its latest message preview and the unread user-message count.
type ChatSummary struct {
	BookingID         uint      `json:"booking_id"`
	UserID            uint      `json:"user_id"`
	UserName          string    `json:"user_name"`
	UserEmail         string    `json:"user_email"`
	FieldName         string    `json:"field_name"`
	BookingDate       string    `json:"booking_date"`
	BookingTime       string    `json:"booking_time"`
	Status            string    `json:"status"`
	LatestMessage     string    `json:"latest_message"`
	LatestMessageTime time.Time `json:"latest_message_time"`
	LatestSender      string    `json:"latest_sender"`
	UnreadCount       int64     `json:"unread_count"`
}

// GetAdminChats lists every booking conversation, most recently active
// first. A single aggregating query; message ids break timestamp ties.
func GetAdminChats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var chats []ChatSummary
		err := db.Raw(`
			SELECT b.id AS booking_id,
			       b.user_id,
			       u.name AS user_name,
			       u.email AS user_email,
			       f.name AS field_name,
			       b.date AS booking_date,
			       b.start_time AS booking_time,
			       b.status,
			       lm.message AS latest_message,
			       lm.created_at AS latest_message_time,
			       lm.sender_role AS latest_sender,
			       (SELECT COUNT(*) FROM messages mu
			         WHERE mu.booking_id = b.id
			           AND mu.sender_role = 'user'
			           AND mu.is_read = ?) AS unread_count
			FROM bookings b
			JOIN users u ON u.id = b.user_id
			JOIN fields f ON f.id = b.field_id
			JOIN messages lm ON lm.booking_id = b.id
			 AND lm.id = (SELECT m2.id FROM messages m2
			               WHERE m2.booking_id = b.id
			               ORDER BY m2.created_at DESC, m2.id DESC
			               LIMIT 1)
			ORDER BY lm.created_at DESC, lm.id DESC`,
			false).Scan(&chats).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch chats"})
			return
		}

		c.JSON(200, chats)
	}
}
