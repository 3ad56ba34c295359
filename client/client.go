// Package client is the typed HTTP client for the storefront API, shared by
// the tracking view and the fulfillment console.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quickshop/models"

	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetAuthToken attaches a staff bearer token to subsequent requests.
func (c *Client) SetAuthToken(token string) { c.authToken = token }

// OrderDraft is the create-order payload built from a cart snapshot.
type OrderDraft struct {
	Phone        string              `json:"phone"`
	Items        []DraftItem         `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	DeliveryType models.DeliveryType `json:"delivery_type"`
	DeliveryTime models.DeliveryTime `json:"delivery_time"`
	Address      *models.Address     `json:"address,omitempty"`
}

type DraftItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderReceipt is everything worth keeping from a successful submission.
// The delivery OTP appears here and nowhere else.
type OrderReceipt struct {
	Token       string             `json:"token"`
	Total       decimal.Decimal    `json:"total"`
	Status      models.OrderStatus `json:"status"`
	DeliveryOTP string             `json:"delivery_otp"`
}

// do runs one request and decodes the response into out (when non-nil).
// Non-2xx responses become *APIError; transport failures wrap ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Products fetches the catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// PlaceOrder submits a draft and returns the receipt.
func (c *Client) PlaceOrder(ctx context.Context, draft OrderDraft) (*OrderReceipt, error) {
	var receipt OrderReceipt
	if err := c.do(ctx, http.MethodPost, "/api/orders", draft, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Order fetches one order by tracking token.
func (c *Client) Order(ctx context.Context, token string) (*models.Order, error) {
	var resp struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// CancelOrder requests a customer cancellation.
func (c *Client) CancelOrder(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPut, "/api/orders/"+token+"/cancel", nil, nil)
}

// Login authenticates a staff account and returns the bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ListOrders fetches the full order set — staff only.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// ListCustomers fetches the customer list — staff only.
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var resp struct {
		Customers []models.Customer `json:"customers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/customers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Customers, nil
}

// TransitionOrder issues a fulfillment transition command. The returned
// order reflects the post-transition state.
func (c *Client) TransitionOrder(ctx context.Context, token string, status models.OrderStatus, otp string) (*models.Order, error) {
	body := map[string]string{"status": string(status)}
	if otp != "" {
		body["otp"] = otp
	}
	var resp struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/admin/orders/"+token+"/status", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}
