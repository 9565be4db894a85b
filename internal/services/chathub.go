package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/courease/courease-backend/internal/models"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client
type Client struct {
	ID   uint
	Name string
	Role string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub

	bookingID uint // joined booking room, zero when none
	admin     bool // subscribed to the admin broadcast room
}

// Hub maintains chat rooms keyed by booking id plus one admin broadcast
// room. Subscriptions live only as long as the connection; a reconnecting
// client must join again.
type Hub struct {
	db         *gorm.DB
	clients    map[*Client]bool
	rooms      map[uint]map[*Client]bool
	adminRoom  map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new chat hub
func NewHub(db *gorm.DB) *Hub {
	return &Hub{
		db:         db,
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		adminRoom:  make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Chat client %d (%s) connected", client.ID, client.Role)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				h.removeClientLocked(client)
			}
			h.mutex.Unlock()
			log.Printf("Chat client %d disconnected", client.ID)
		}
	}
}

// removeClientLocked drops a client and all its subscriptions. Caller holds
// the write lock.
func (h *Hub) removeClientLocked(client *Client) {
	delete(h.clients, client)
	delete(h.adminRoom, client)
	if room, ok := h.rooms[client.bookingID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.bookingID)
		}
	}
	close(client.Send)
}

// JoinBooking subscribes a client to a booking's room. A client is in at
// most one booking room, joining again moves it.
func (h *Hub) JoinBooking(client *Client, bookingID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, ok := h.rooms[client.bookingID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.bookingID)
		}
	}

	if h.rooms[bookingID] == nil {
		h.rooms[bookingID] = make(map[*Client]bool)
	}
	h.rooms[bookingID][client] = true
	client.bookingID = bookingID
}

// JoinAdmin subscribes a client to the admin broadcast room
func (h *Hub) JoinAdmin(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.adminRoom[client] = true
	client.admin = true
}

// BroadcastToBooking sends a message to every subscriber of a booking room
func (h *Hub) BroadcastToBooking(bookingID uint, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.rooms[bookingID] {
		select {
		case client.Send <- message:
		default:
			// Client's send channel is full, skip
			log.Printf("Warning: Could not send to client %d (channel full)", client.ID)
		}
	}
}

// BroadcastToAdmins sends a message to the admin broadcast room
func (h *Hub) BroadcastToAdmins(message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.adminRoom {
		select {
		case client.Send <- message:
		default:
			log.Printf("Warning: Could not send to admin client %d (channel full)", client.ID)
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of subscribers in a booking room
func (h *Hub) RoomSize(bookingID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[bookingID])
}

// AdminRoomSize returns the number of subscribers in the admin room
func (h *Hub) AdminRoomSize() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.adminRoom)
}

// WebSocketMessage is the envelope for every chat event in both directions
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type chatEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// JoinChatPayload subscribes the connection to a booking room
type JoinChatPayload struct {
	BookingID uint `json:"booking_id"`
}

// SendMessagePayload carries an outgoing chat message
type SendMessagePayload struct {
	BookingID uint   `json:"booking_id"`
	Message   string `json:"message"`
}

// MarkReadPayload marks a booking's messages as read for this reader
type MarkReadPayload struct {
	BookingID uint `json:"booking_id"`
}

// MessageEvent is the payload delivered with receive_message
type MessageEvent struct {
	ID         uint      `json:"id"`
	BookingID  uint      `json:"booking_id"`
	SenderID   uint      `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
	SenderName string    `json:"sender_name"`
}

// NewMessageEvent builds the wire representation of a persisted message
func NewMessageEvent(m *models.Message, senderName string) MessageEvent {
	return MessageEvent{
		ID:         m.ID,
		BookingID:  m.BookingID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Message:    m.Body,
		CreatedAt:  m.CreatedAt,
		IsRead:     m.IsRead,
		SenderName: senderName,
	}
}

// BroadcastNewMessage delivers a persisted message to its booking room and,
// for user-authored messages, a summary notification to the admin room.
func (h *Hub) BroadcastNewMessage(m *models.Message, senderName string) {
	event := NewMessageEvent(m, senderName)

	data, err := json.Marshal(WebSocketMessage{Type: "receive_message", Data: event})
	if err != nil {
		log.Printf("Error marshaling receive_message: %v", err)
		return
	}
	h.BroadcastToBooking(m.BookingID, data)

	if m.SenderRole == string(models.UserRoleUser) {
		notice, err := json.Marshal(WebSocketMessage{
			Type: "new_user_message",
			Data: map[string]interface{}{
				"booking_id": m.BookingID,
				"message":    event,
			},
		})
		if err != nil {
			log.Printf("Error marshaling new_user_message: %v", err)
			return
		}
		h.BroadcastToAdmins(notice)
	}
}

// BroadcastMessagesRead tells a booking room that messages were read
func (h *Hub) BroadcastMessagesRead(bookingID uint) {
	data, err := json.Marshal(WebSocketMessage{
		Type: "messages_read",
		Data: map[string]interface{}{"booking_id": bookingID},
	})
	if err != nil {
		log.Printf("Error marshaling messages_read: %v", err)
		return
	}
	h.BroadcastToBooking(bookingID, data)
}

// HandleWebSocket handles WebSocket connections
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, userName, userRole string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   userID,
		Name: userName,
		Role: userRole,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	client.Hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var envelope chatEnvelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			log.Printf("Error unmarshaling WebSocket message: %v", err)
			continue
		}

		switch envelope.Type {
		case "join_chat":
			var payload JoinChatPayload
			if err := json.Unmarshal(envelope.Data, &payload); err != nil {
				c.sendError("Invalid join_chat payload")
				continue
			}
			c.handleJoinChat(payload)
		case "admin_join":
			c.handleAdminJoin()
		case "send_message":
			var payload SendMessagePayload
			if err := json.Unmarshal(envelope.Data, &payload); err != nil {
				c.sendError("Invalid send_message payload")
				continue
			}
			c.handleSendMessage(payload)
		case "mark_read":
			var payload MarkReadPayload
			if err := json.Unmarshal(envelope.Data, &payload); err != nil {
				c.sendError("Invalid mark_read payload")
				continue
			}
			c.handleMarkRead(payload)
		default:
			log.Printf("Unknown chat event %q from client %d", envelope.Type, c.ID)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}

	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// canAccessBooking reports whether this connection may use a booking's room:
// admins always, users only for their own booking.
func (c *Client) canAccessBooking(bookingID uint) bool {
	if c.Role == string(models.UserRoleAdmin) {
		return true
	}

	var booking models.Booking
	if err := c.Hub.db.First(&booking, bookingID).Error; err != nil {
		return false
	}
	return booking.UserID == c.ID
}

func (c *Client) handleJoinChat(payload JoinChatPayload) {
	if !c.canAccessBooking(payload.BookingID) {
		c.sendError("Not allowed to join this chat")
		return
	}

	c.Hub.JoinBooking(c, payload.BookingID)
}

func (c *Client) handleAdminJoin() {
	if c.Role != string(models.UserRoleAdmin) {
		c.sendError("Admin access required")
		return
	}

	c.Hub.JoinAdmin(c)
}

func (c *Client) handleSendMessage(payload SendMessagePayload) {
	if !c.canAccessBooking(payload.BookingID) {
		c.sendError("Not allowed to message this chat")
		return
	}

	message := models.Message{
		BookingID:  payload.BookingID,
		SenderID:   c.ID,
		SenderRole: c.Role,
		Body:       payload.Message,
	}

	// Persist before broadcasting so no client sees a message that was
	// never durably recorded.
	if err := c.Hub.db.Create(&message).Error; err != nil {
		log.Printf("Error saving message from client %d: %v", c.ID, err)
		c.sendError("Failed to send message")
		return
	}

	c.Hub.BroadcastNewMessage(&message, c.Name)
}

func (c *Client) handleMarkRead(payload MarkReadPayload) {
	err := c.Hub.db.Model(&models.Message{}).
		Where("booking_id = ? AND sender_id <> ?", payload.BookingID, c.ID).
		Update("is_read", true).Error
	if err != nil {
		log.Printf("Error marking messages read for client %d: %v", c.ID, err)
		c.sendError("Failed to mark messages as read")
		return
	}

	c.Hub.BroadcastMessagesRead(payload.BookingID)
}

func (c *Client) sendError(errMsg string) {
	data, err := json.Marshal(WebSocketMessage{
		Type: "message_error",
		Data: map[string]string{"error": errMsg},
	})
	if err != nil {
		return
	}

	select {
	case c.Send <- data:
	default:
	}
}
