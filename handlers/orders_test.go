package handlers_test

import (
	"net/http"
	"sync"
	"testing"

	"quickshop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_Pickup(t *testing.T) {
	r := setupRouter(t)

	body := placeOrder(t, r, twoItemPayload())

	// Token sequence starts above the seeded counter value of 100
	assert.Equal(t, "STORE-101", body["token"])
	assert.Equal(t, string(models.StatusProcessing), body["status"])
	assert.Equal(t, "141", body["total"])
	// Pickup orders never get a hand-off OTP
	assert.NotContains(t, body, "delivery_otp")
}

func TestPlaceOrder_ServerRepricesItems(t *testing.T) {
	r := setupRouter(t)

	// A stale client price does not survive: items are re-priced and the
	// stored order snapshots the catalog values.
	body := placeOrder(t, r, twoItemPayload())

	w, got := doJSON(t, r, http.MethodGet, "/api/orders/"+body["token"].(string), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := got["order"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Taza Milk (500ml)", first["name"])
	assert.Equal(t, "28", first["unit_price"])
	assert.Equal(t, "56", first["subtotal"])
}

func TestPlaceOrder_TotalMismatchRejected(t *testing.T) {
	r := setupRouter(t)

	payload := twoItemPayload()
	payload.Total = 99 // drifts more than ₹1 from the real ₹141
	w, body := doJSON(t, r, http.MethodPost, "/api/orders", payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "Total mismatch")
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	r := setupRouter(t)

	payload := twoItemPayload()
	payload.Items = []map[string]interface{}{{"product_id": 9999, "quantity": 1}}
	payload.Total = 0
	w, body := doJSON(t, r, http.MethodPost, "/api/orders", payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "not found")
}

func TestPlaceOrder_InvalidPhone(t *testing.T) {
	r := setupRouter(t)

	payload := twoItemPayload()
	payload.Phone = "12345"
	w, body := doJSON(t, r, http.MethodPost, "/api/orders", payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "phone", body["field"])
}

func TestPlaceOrder_PhoneNormalization(t *testing.T) {
	r := setupRouter(t)

	payload := twoItemPayload()
	payload.Phone = "+91 98765-43210"
	body := placeOrder(t, r, payload)

	w, got := doJSON(t, r, http.MethodGet, "/api/orders/"+body["token"].(string), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9876543210", got["order"].(map[string]interface{})["phone"])
}

func TestPlaceOrder_DeliveryRequiresAddress(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name      string
		address   *models.Address
		wantField string
	}{
		{"no address", nil, "address"},
		{"missing flat", &models.Address{Road: "MG Road", Area: "Kothrud", Pincode: "411038"}, "flat"},
		{"missing road", &models.Address{Flat: "12B", Area: "Kothrud", Pincode: "411038"}, "road"},
		{"missing area", &models.Address{Flat: "12B", Road: "MG Road", Pincode: "411038"}, "area"},
		{"short pincode", &models.Address{Flat: "12B", Road: "MG Road", Area: "Kothrud", Pincode: "4110"}, "pincode"},
		{"non-numeric pincode", &models.Address{Flat: "12B", Road: "MG Road", Area: "Kothrud", Pincode: "41103a"}, "pincode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := twoItemPayload()
			payload.DeliveryType = models.DeliveryHome
			payload.Address = tt.address
			w, body := doJSON(t, r, http.MethodPost, "/api/orders", payload, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantField, body["field"])
		})
	}
}

func TestPlaceOrder_LegacyFreeTextAddress(t *testing.T) {
	r := setupRouter(t)

	payload := twoItemPayload()
	payload.DeliveryType = models.DeliveryHome
	payload.Address = &models.Address{Line: "Behind the old temple, Kothrud"}
	body := placeOrder(t, r, payload)
	assert.NotEmpty(t, body["delivery_otp"])
}

func TestPlaceOrder_DeliveryGetsOTP(t *testing.T) {
	r := setupRouter(t)

	payload := twoItemPayload()
	payload.DeliveryType = models.DeliveryHome
	payload.DeliveryTime = models.DeliveryNextDay
	payload.Address = deliveryAddress()
	body := placeOrder(t, r, payload)

	otp, ok := body["delivery_otp"].(string)
	require.True(t, ok, "delivery order must return an OTP")
	assert.Len(t, otp, 4)
}

func TestGetOrder_NeverLeaksOTP(t *testing.T) {
	r := setupRouter(t)

	payload := twoItemPayload()
	payload.DeliveryType = models.DeliveryHome
	payload.Address = deliveryAddress()
	body := placeOrder(t, r, payload)

	w, got := doJSON(t, r, http.MethodGet, "/api/orders/"+body["token"].(string), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	order := got["order"].(map[string]interface{})
	assert.NotContains(t, order, "delivery_otp")
	assert.NotContains(t, order, "DeliveryOTP")
}

func TestGetOrder_UnknownToken(t *testing.T) {
	r := setupRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/orders/STORE-999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["code"])
}

func TestCancelOrder_Window(t *testing.T) {
	r := setupRouter(t)
	token := placeOrder(t, r, twoItemPayload())["token"].(string)

	// Cancel while Processing succeeds
	w, _ := doJSON(t, r, http.MethodPut, "/api/orders/"+token+"/cancel", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.StatusCancelled), orderStatus(t, r, token))

	// A second cancel is blocked: the order is no longer Processing
	w, body := doJSON(t, r, http.MethodPut, "/api/orders/"+token+"/cancel", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cancellation_blocked", body["code"])
}

func TestCancelOrder_BlockedAfterAdvance(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)
	token := placeOrder(t, r, twoItemPayload())["token"].(string)

	w, _ := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodPut, "/api/orders/"+token+"/cancel", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cancellation_blocked", body["code"])
	assert.Equal(t, string(models.StatusReadyForPickup), orderStatus(t, r, token))
}

func TestCancelOrder_RacingAdvanceNeverBothSucceed(t *testing.T) {
	r := setupRouter(t)
	bearer := staffToken(t, r)

	// A cancel and a staff advance racing on a fresh order must resolve to
	// exactly one winner, and the stored status must match that winner.
	for round := 0; round < 15; round++ {
		token := placeOrder(t, r, twoItemPayload())["token"].(string)

		var wg sync.WaitGroup
		var cancelCode, advanceCode int
		wg.Add(2)
		go func() {
			defer wg.Done()
			w, _ := doJSON(t, r, http.MethodPut, "/api/orders/"+token+"/cancel", nil, "")
			cancelCode = w.Code
		}()
		go func() {
			defer wg.Done()
			w, _ := transition(t, r, bearer, token, models.StatusReadyForPickup, "")
			advanceCode = w.Code
		}()
		wg.Wait()

		cancelled := cancelCode == http.StatusOK
		advanced := advanceCode == http.StatusOK
		require.False(t, cancelled && advanced,
			"round %d: cancel and advance both returned 200", round)

		final := orderStatus(t, r, token)
		if cancelled {
			require.Equal(t, string(models.StatusCancelled), final, "round %d", round)
		}
		if advanced {
			require.Equal(t, string(models.StatusReadyForPickup), final, "round %d", round)
		}
	}
}

func TestCancelOrder_UnknownToken(t *testing.T) {
	r := setupRouter(t)

	w, body := doJSON(t, r, http.MethodPut, "/api/orders/STORE-999/cancel", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["code"])
}
