package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"quickshop/config"
	"quickshop/models"
	"quickshop/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter builds a router over a fresh seeded database. Tests in this
// package share the config.DB global and therefore never run in parallel.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	config.Seed(db)
	config.DB = db

	r := gin.New()
	routes.SetupRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, bearer string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w, out
}

// staffToken logs in with the seeded staff account.
func staffToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "admin123"}, "")
	require.Equal(t, http.StatusOK, w.Code, "login: %v", body)
	return body["token"].(string)
}

type orderPayload struct {
	Phone        string                   `json:"phone"`
	Items        []map[string]interface{} `json:"items"`
	Total        float64                  `json:"total"`
	DeliveryType models.DeliveryType      `json:"delivery_type,omitempty"`
	DeliveryTime models.DeliveryTime      `json:"delivery_time,omitempty"`
	Address      *models.Address          `json:"address,omitempty"`
}

// twoItemPayload orders 2× product 1 (₹28) and 1× product 3 (₹85) → ₹141.
func twoItemPayload() orderPayload {
	return orderPayload{
		Phone: "9876543210",
		Items: []map[string]interface{}{
			{"product_id": 1, "quantity": 2},
			{"product_id": 3, "quantity": 1},
		},
		Total: 141,
	}
}

func deliveryAddress() *models.Address {
	return &models.Address{Flat: "12B", Building: "Shanti Heights", Road: "MG Road", Area: "Kothrud", Pincode: "411038"}
}

// placeOrder submits a payload and returns the response body on 201.
func placeOrder(t *testing.T, r *gin.Engine, payload orderPayload) map[string]interface{} {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/orders", payload, "")
	require.Equal(t, http.StatusCreated, w.Code, "place order: %v", body)
	return body
}

// transition issues a staff status command for the given token.
func transition(t *testing.T, r *gin.Engine, bearer, token string, status models.OrderStatus, otp string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := map[string]string{"status": string(status)}
	if otp != "" {
		req["otp"] = otp
	}
	return doJSON(t, r, http.MethodPut, "/api/admin/orders/"+token+"/status", req, bearer)
}

func orderStatus(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	w, body := doJSON(t, r, http.MethodGet, "/api/orders/"+token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	return body["order"].(map[string]interface{})["status"].(string)
}
