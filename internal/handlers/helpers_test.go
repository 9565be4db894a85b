package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/courease/courease-backend/internal/middleware"
	"github.com/courease/courease-backend/internal/models"
	"github.com/courease/courease-backend/internal/services"
	"github.com/courease/courease-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testDBSeq int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Field{},
		&models.Booking{},
		&models.Message{},
	))
	return db
}

// newTestRouter wires the routes the way cmd/api does, minus the websocket
// endpoint and static file serving.
func newTestRouter(db *gorm.DB) (*gin.Engine, *services.Hub) {
	hub := services.NewHub(db)
	go hub.Run()

	payments := services.NewPaymentClient()

	r := gin.New()

	r.POST("/register", Register(db))
	r.POST("/register-admin", RegisterAdmin(db))
	r.POST("/login", Login(db))
	r.GET("/fields", GetFields(db))

	r.POST("/book", CreateBooking(db))
	r.GET("/bookings", GetUserBookings(db))

	r.POST("/payment/create", CreatePayment(db, payments))
	r.POST("/payment/callback", PaymentCallback(db))
	r.GET("/payment/status/:booking_id", GetPaymentStatus(db))

	r.GET("/messages/:booking_id", GetMessages(db))
	r.POST("/messages", SendMessage(db, hub))

	r.PUT("/user/:id", UpdateProfile(db))

	admin := r.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/bookings", GetAdminBookings(db))
		admin.PATCH("/bookings/:id", UpdateBookingStatus(db))
		admin.GET("/chats", GetAdminChats(db))
		admin.POST("/fields", CreateField(db))
		admin.PUT("/fields/:id", UpdateField(db))
	}

	return r, hub
}

func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const testPassword = "password123"

func createUser(t *testing.T, db *gorm.DB, name, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email, Password: testPassword, Role: role}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)
	return user
}

func authToken(t *testing.T, user *models.User) string {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	token, err := utils.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func createField(t *testing.T, db *gorm.DB, name string, pricePerHour float64) *models.Field {
	t.Helper()

	field := &models.Field{Name: name, Type: "futsal", PricePerHour: pricePerHour}
	require.NoError(t, db.Create(field).Error)
	return field
}
