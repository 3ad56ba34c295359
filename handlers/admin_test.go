package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"quickshop/config"
	"quickshop/middleware"
	"quickshop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFulfillment_PickupFlow(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)
	token := placeOrder(t, r, twoItemPayload())["token"].(string)
	require.Equal(t, string(models.StatusProcessing), orderStatus(t, r, token))

	// Advance to the counter
	w, body := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
	require.Equal(t, http.StatusOK, w.Code, "advance: %v", body)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, string(models.StatusReadyForPickup), order["status"])
	assert.Nil(t, order["delivered_at"])

	// Hand over — pickup orders need no OTP
	w, body = transition(t, r, bearer, token, models.StatusDelivered, "")
	require.Equal(t, http.StatusOK, w.Code, "deliver: %v", body)
	order = body["order"].(map[string]interface{})
	assert.Equal(t, string(models.StatusDelivered), order["status"])
	assert.NotNil(t, order["delivered_at"], "delivered_at must be set on the Delivered transition")
}

func TestFulfillment_DeliveryOtpFlow(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)

	payload := twoItemPayload()
	payload.DeliveryType = models.DeliveryHome
	payload.Address = deliveryAddress()
	created := placeOrder(t, r, payload)
	token := created["token"].(string)
	otp := created["delivery_otp"].(string)

	w, _ := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Wrong OTP: rejected, status unchanged
	wrong := "1234"
	if wrong == otp {
		wrong = "4321"
	}
	w, body := transition(t, r, bearer, token, models.StatusDelivered, wrong)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "otp_mismatch", body["code"])
	assert.Equal(t, string(models.StatusReadyForPickup), orderStatus(t, r, token))

	// Retry with the real OTP succeeds
	w, body = transition(t, r, bearer, token, models.StatusDelivered, otp)
	require.Equal(t, http.StatusOK, w.Code, "deliver retry: %v", body)
	assert.Equal(t, string(models.StatusDelivered), body["order"].(map[string]interface{})["status"])
}

func TestFulfillment_RepeatCommandRejected(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)
	token := placeOrder(t, r, twoItemPayload())["token"].(string)

	w, _ := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
	require.Equal(t, http.StatusOK, w.Code)

	// The retried command finds the order already advanced
	w, body := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_transition", body["code"])
	assert.Equal(t, string(models.StatusReadyForPickup), orderStatus(t, r, token))
}

func TestFulfillment_RevertReopensCancellation(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)
	token := placeOrder(t, r, twoItemPayload())["token"].(string)

	w, _ := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = transition(t, r, bearer, token, models.StatusProcessing, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Back in Processing, the cancellation window is open again
	w, _ = doJSON(t, r, http.MethodPut, "/api/orders/"+token+"/cancel", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFulfillment_NoSkipToDelivered(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)
	token := placeOrder(t, r, twoItemPayload())["token"].(string)

	w, body := transition(t, r, bearer, token, models.StatusDelivered, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_transition", body["code"])
	assert.Equal(t, string(models.StatusProcessing), orderStatus(t, r, token))
}

func TestFulfillment_HistoryRecordsStaffAccount(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)
	token := placeOrder(t, r, twoItemPayload())["token"].(string)

	w, _ := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
	require.Equal(t, http.StatusOK, w.Code)

	var staff models.StaffUser
	require.NoError(t, config.DB.First(&staff, "username = ?", "admin").Error)

	// The audit row names both the actor kind and the staff account behind it
	var entry models.OrderStatusHistory
	require.NoError(t, config.DB.
		Where("to_status = ?", models.StatusReadyForPickup).
		Order("id desc").First(&entry).Error)
	assert.Equal(t, "staff", entry.Actor)
	assert.Equal(t, staff.ID, entry.ActorID)
}

func TestAdminListOrders(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)

	first := placeOrder(t, r, twoItemPayload())["token"].(string)
	second := placeOrder(t, r, twoItemPayload())["token"].(string)
	w, _ := transition(t, r, bearer, second, models.StatusReadyForPickup, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodGet, "/api/admin/orders", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])

	summary := body["order_summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary[string(models.StatusProcessing)])
	assert.EqualValues(t, 1, summary[string(models.StatusReadyForPickup)])

	// Status filter
	w, body = doJSON(t, r, http.MethodGet, "/api/admin/orders?status=Processing", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	orders := body["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, first, orders[0].(map[string]interface{})["token"])
}

func TestAdminAuth_MissingToken(t *testing.T) {
	r := setupRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "auth_required", body["code"])
}

func TestAdminAuth_ExpiredTokenIsDistinct(t *testing.T) {
	r := setupRouter(t)

	var staff models.StaffUser
	require.NoError(t, config.DB.First(&staff, "username = ?", "admin").Error)
	expired, err := middleware.GenerateTokenWithTTL(&staff, -time.Minute)
	require.NoError(t, err)

	// Expiry must not look like a generic auth failure: the console uses
	// the code to route the operator back to login.
	w, body := doJSON(t, r, http.MethodGet, "/api/admin/orders", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_expired", body["code"])

	w, body = doJSON(t, r, http.MethodGet, "/api/admin/orders", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", body["code"])
}

func TestAdminListCustomers(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/setup-pin",
		map[string]string{"phone": "9876543210", "pin": "4821"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodGet, "/api/admin/customers", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
	customers := body["customers"].([]interface{})
	assert.Equal(t, "9876543210", customers[0].(map[string]interface{})["phone"])
}
