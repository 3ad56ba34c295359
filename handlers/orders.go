package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"

	"quickshop/config"
	"quickshop/models"
	"quickshop/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

// totalTolerance allows the client-computed total to drift from the
// server-computed one by at most one rupee before the order is rejected.
var totalTolerance = decimal.NewFromInt(1)

type PlaceOrderRequest struct {
	Phone string `json:"phone" binding:"required"`
	Items []struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1,max=100"`
	} `json:"items" binding:"required,min=1"`
	Total        decimal.Decimal     `json:"total"`
	DeliveryType models.DeliveryType `json:"delivery_type"`
	DeliveryTime models.DeliveryTime `json:"delivery_time"`
	Address      *models.Address     `json:"address"`
}

// cleanPhone strips +91, spaces and dashes, returning the bare 10-digit number.
func cleanPhone(phone string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "", "+", "").Replace(phone)
	if strings.HasPrefix(cleaned, "91") && len(cleaned) == 12 {
		cleaned = cleaned[2:]
	}
	return cleaned
}

// validateAddress enforces the delivery-address requirements. The legacy
// free-text Line is accepted on its own for older clients.
func validateAddress(addr *models.Address) (field, reason string) {
	if addr.IsZero() {
		return "address", "delivery orders require an address"
	}
	if addr.Line != "" {
		return "", ""
	}
	switch {
	case addr.Flat == "":
		return "flat", "flat/house number is required"
	case addr.Road == "":
		return "road", "road is required"
	case addr.Area == "":
		return "area", "area is required"
	case !pincodePattern.MatchString(addr.Pincode):
		return "pincode", "pincode must be exactly 6 digits"
	}
	return "", ""
}

// generateOTP mints the 4-digit delivery hand-off code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// nextToken increments the order token counter and formats the token.
// Must run inside the order-creation transaction.
func nextToken(tx *gorm.DB) (string, error) {
	if err := tx.Model(&models.Counter{}).
		Where("name = ?", "order_token").
		UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return "", err
	}
	var counter models.Counter
	if err := tx.First(&counter, "name = ?", "order_token").Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("STORE-%d", counter.Value), nil
}

// PlaceOrder creates a new order from a cart snapshot.
//
// Items are re-priced from the live catalog; the client total is only used
// as a staleness check. The delivery OTP in the response is the single time
// it is revealed to the customer.
func PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := cleanPhone(req.Phone)
	if !phonePattern.MatchString(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid 10-digit Indian phone number", "field": "phone"})
		return
	}

	deliveryType := req.DeliveryType
	if deliveryType == "" {
		deliveryType = models.DeliveryPickup
	}
	if deliveryType != models.DeliveryPickup && deliveryType != models.DeliveryHome {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delivery_type must be 'pickup' or 'delivery'", "field": "delivery_type"})
		return
	}
	deliveryTime := req.DeliveryTime
	if deliveryTime == "" {
		deliveryTime = models.DeliverySameDay
	}

	var address *models.Address
	if deliveryType == models.DeliveryHome {
		if field, reason := validateAddress(req.Address); field != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": reason, "field": field})
			return
		}
		address = req.Address
	}

	// Re-price every line from the catalog
	var orderItems []models.OrderItem
	total := decimal.Zero
	for _, reqItem := range req.Items {
		var product models.Product
		if err := config.DB.First(&product, reqItem.ProductID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product ID %d not found", reqItem.ProductID)})
			return
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(reqItem.Quantity)))
		total = total.Add(subtotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  reqItem.Quantity,
			Subtotal:  subtotal,
		})
	}

	if total.Sub(req.Total).Abs().GreaterThan(totalTolerance) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Total mismatch — please refresh and retry"})
		return
	}

	var deliveryOTP string
	if deliveryType == models.DeliveryHome {
		otp, err := generateOTP()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}
		deliveryOTP = otp
	}

	order := models.Order{
		Phone:        phone,
		Items:        orderItems,
		Total:        total,
		DeliveryType: deliveryType,
		DeliveryTime: deliveryTime,
		Address:      address,
		DeliveryOTP:  deliveryOTP,
		Status:       models.StatusProcessing,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		token, err := nextToken(tx)
		if err != nil {
			return err
		}
		order.Token = token
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:  order.ID,
			ToStatus: models.StatusProcessing,
			Actor:    string(statemachine.ActorCustomer),
			Note:     "Order placed",
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	resp := gin.H{
		"message":       "Order placed successfully",
		"token":         order.Token,
		"total":         order.Total,
		"status":        order.Status,
		"delivery_type": order.DeliveryType,
		"delivery_time": order.DeliveryTime,
	}
	if deliveryOTP != "" {
		resp["delivery_otp"] = deliveryOTP
	}
	c.JSON(http.StatusCreated, resp)
}

// GetOrder returns a single order by its tracking token.
func GetOrder(c *gin.Context) {
	token := c.Param("token")
	var order models.Order
	if err := config.DB.Preload("Items").First(&order, "token = ?", token).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found", "code": "not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels an order while it is still Processing. Possession of
// the tracking token authorizes the call.
//
// The window check and the update run in one transaction, and the update
// itself is guarded on the current status: a staff advance committing after
// our read cannot be overwritten by a late cancel.
func CancelOrder(c *gin.Context) {
	token := c.Param("token")

	var order models.Order
	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "token = ?", token).Error; err != nil {
			return err
		}
		if err := statemachine.Check(&order, models.StatusCancelled, statemachine.ActorCustomer, ""); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.StatusProcessing).
			Update("status", models.StatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return statemachine.ErrCancellationBlocked
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: models.StatusProcessing,
			ToStatus:   models.StatusCancelled,
			Actor:      string(statemachine.ActorCustomer),
			Note:       "Order cancelled by customer",
		}).Error
	})

	switch {
	case txErr == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "token": order.Token})
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found", "code": "not_found"})
	case errors.Is(txErr, statemachine.ErrCancellationBlocked), errors.Is(txErr, statemachine.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Order can no longer be cancelled",
			"code":           "cancellation_blocked",
			"current_status": order.Status,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
	}
}
