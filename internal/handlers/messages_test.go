package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/courease/courease-backend/internal/models"
	"github.com/courease/courease-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createMessage(t *testing.T, db *gorm.DB, bookingID, senderID uint, role, body string, at time.Time) *models.Message {
	t.Helper()

	m := &models.Message{
		Model:      gorm.Model{CreatedAt: at, UpdatedAt: at},
		BookingID:  bookingID,
		SenderID:   senderID,
		SenderRole: role,
		Body:       body,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestGetMessagesOrdering(t *testing.T) {
	db := setupTestDB(t)
	r, _ := newTestRouter(db)
	user := createUser(t, db, "Alice", "alice@example.com", models.UserRoleUser)
	admin := createUser(t, db, "Boss", "boss@example.com", models.UserRoleAdmin)
	field := createField(t, db, "Court 1", 100)

	booking := models.Booking{
		UserID: user.ID, FieldID: field.ID,
		Date: "2026-09-05", StartTime: "10:00", EndTime: "11:00",
		TotalPrice: 100,
		Status:     models.BookingStatusPending, PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&booking).Error)

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	createMessage(t, db, booking.ID, user.ID, "user", "hi, is the field free?", base)
	createMessage(t, db, booking.ID, admin.ID, "admin", "yes, all yours", base.Add(time.Minute))
	createMessage(t, db, booking.ID, user.ID, "user", "great, see you", base.Add(2*time.Minute))

	w := performRequest(r, "GET", fmt.Sprintf("/messages/%d", booking.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var messages []MessageView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 3)

	assert.Equal(t, "hi, is the field free?", messages[0].Message)
	assert.Equal(t, "Alice", messages[0].SenderName)
	assert.Equal(t, "yes, all yours", messages[1].Message)
	assert.Equal(t, "Boss", messages[1].SenderName)
	assert.Equal(t, "great, see you", messages[2].Message)
}

func TestSendMessageBroadcasts(t *testing.T) {
	db := setupTestDB(t)
	r, hub := newTestRouter(db)
	user := createUser(t, db, "Alice", "alice@example.com", models.UserRoleUser)
	field := createField(t, db, "Court 1", 100)

	booking := models.Booking{
		UserID: user.ID, FieldID: field.ID,
		Date: "2026-09-05", StartTime: "10:00", EndTime: "11:00",
		TotalPrice: 100,
		Status:     models.BookingStatusPending, PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&booking).Error)

	roomClient := &services.Client{ID: 98, Send: make(chan []byte, 4)}
	adminClient := &services.Client{ID: 99, Send: make(chan []byte, 4)}
	hub.JoinBooking(roomClient, booking.ID)
	hub.JoinAdmin(adminClient)

	w := performRequest(r, "POST", "/messages", map[string]interface{}{
		"booking_id":  booking.ID,
		"sender_id":   user.ID,
		"sender_role": "user",
		"message":     "hello from rest",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var persisted models.Message
	require.NoError(t, db.Where("booking_id = ?", booking.ID).First(&persisted).Error)
	assert.Equal(t, "hello from rest", persisted.Body)
	assert.Equal(t, user.ID, persisted.SenderID)

	var event services.WebSocketMessage
	select {
	case data := <-roomClient.Send:
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, "receive_message", event.Type)
	default:
		t.Fatal("room client received no broadcast")
	}

	// User-authored messages also notify the admin room
	select {
	case data := <-adminClient.Send:
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, "new_user_message", event.Type)
	default:
		t.Fatal("admin client received no notification")
	}
}

func TestSendMessageAdminSkipsAdminNotice(t *testing.T) {
	db := setupTestDB(t)
	r, hub := newTestRouter(db)
	user := createUser(t, db, "Alice", "alice@example.com", models.UserRoleUser)
	admin := createUser(t, db, "Boss", "boss@example.com", models.UserRoleAdmin)
	field := createField(t, db, "Court 1", 100)

	booking := models.Booking{
		UserID: user.ID, FieldID: field.ID,
		Date: "2026-09-05", StartTime: "10:00", EndTime: "11:00",
		TotalPrice: 100,
		Status:     models.BookingStatusPending, PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&booking).Error)

	adminClient := &services.Client{ID: 99, Send: make(chan []byte, 4)}
	hub.JoinAdmin(adminClient)

	w := performRequest(r, "POST", "/messages", map[string]interface{}{
		"booking_id":  booking.ID,
		"sender_id":   admin.ID,
		"sender_role": "admin",
		"message":     "we are on it",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case data := <-adminClient.Send:
		t.Fatalf("admin room should stay quiet for admin messages, got %s", data)
	default:
	}
}

func TestSendMessageBookingNotFound(t *testing.T) {
	db := setupTestDB(t)
	r, _ := newTestRouter(db)
	user := createUser(t, db, "Alice", "alice@example.com", models.UserRoleUser)

	w := performRequest(r, "POST", "/messages", map[string]interface{}{
		"booking_id":  999,
		"sender_id":   user.ID,
		"sender_role": "user",
		"message":     "anyone there?",
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetAdminChats(t *testing.T) {
	db := setupTestDB(t)
	r, _ := newTestRouter(db)
	alice := createUser(t, db, "Alice", "alice@example.com", models.UserRoleUser)
	bob := createUser(t, db, "Bob", "bob@example.com", models.UserRoleUser)
	admin := createUser(t, db, "Boss", "boss@example.com", models.UserRoleAdmin)
	field := createField(t, db, "Court 1", 100)

	bookingA := models.Booking{
		UserID: alice.ID, FieldID: field.ID,
		Date: "2026-09-05", StartTime: "10:00", EndTime: "11:00",
		TotalPrice: 100,
		Status:     models.BookingStatusPending, PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&bookingA).Error)
	bookingB := models.Booking{
		UserID: bob.ID, FieldID: field.ID,
		Date: "2026-09-06", StartTime: "08:00", EndTime: "09:00",
		TotalPrice: 100,
		Status:     models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusPaid,
	}
	require.NoError(t, db.Create(&bookingB).Error)

	// Booking without messages, must not appear in the list
	bookingC := models.Booking{
		UserID: alice.ID, FieldID: field.ID,
		Date: "2026-09-07", StartTime: "08:00", EndTime: "09:00",
		TotalPrice: 100,
		Status:     models.BookingStatusPending, PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&bookingC).Error)

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	createMessage(t, db, bookingA.ID, alice.ID, "user", "first question", base)
	read := createMessage(t, db, bookingA.ID, alice.ID, "user", "second question", base.Add(time.Minute))
	require.NoError(t, db.Model(read).Update("is_read", true).Error)
	createMessage(t, db, bookingB.ID, bob.ID, "user", "can I reschedule?", base.Add(2*time.Minute))
	createMessage(t, db, bookingB.ID, admin.ID, "admin", "sure, which slot?", base.Add(3*time.Minute))

	w := performRequest(r, "GET", "/admin/chats", nil, authToken(t, admin))
	require.Equal(t, http.StatusOK, w.Code)

	var chats []ChatSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chats))
	require.Len(t, chats, 2)

	// Bob's chat has the newest message, so it comes first
	assert.Equal(t, bookingB.ID, chats[0].BookingID)
	assert.Equal(t, "Bob", chats[0].UserName)
	assert.Equal(t, "sure, which slot?", chats[0].LatestMessage)
	assert.Equal(t, "admin", chats[0].LatestSender)
	assert.Equal(t, int64(1), chats[0].UnreadCount)

	assert.Equal(t, bookingA.ID, chats[1].BookingID)
	assert.Equal(t, "Alice", chats[1].UserName)
	assert.Equal(t, "second question", chats[1].LatestMessage)
	assert.Equal(t, int64(1), chats[1].UnreadCount)
}
