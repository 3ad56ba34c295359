package handlers

import (
	"errors"
	"net/http"
	"time"

	"quickshop/config"
	"quickshop/middleware"
	"quickshop/models"
	"quickshop/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminListOrders returns every order, newest first — staff only
func AdminListOrders(c *gin.Context) {
	var orders []models.Order
	query := config.DB.Preload("Items")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&orders)

	// Dashboard summary: counts per lane
	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// AdminListCustomers returns all customer accounts — staff only
func AdminListCustomers(c *gin.Context) {
	var customers []models.Customer
	config.DB.Order("created_at desc").Find(&customers)
	c.JSON(http.StatusOK, gin.H{"count": len(customers), "customers": customers})
}

type TransitionOrderRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	OTP    string             `json:"otp"`
	Note   string             `json:"note"`
}

// AdminTransitionOrder moves an order through the fulfillment pipeline.
//
// The response always reflects the post-transition order or an explicit
// rejection, never a stale pre-transition state, so optimistic console
// patches cannot disagree with the next poll.
func AdminTransitionOrder(c *gin.Context) {
	token := c.Param("token")

	var req TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "token = ?", token).Error; err != nil {
			return err
		}
		if err := statemachine.Check(&order, req.Status, statemachine.ActorStaff, req.OTP); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": req.Status}
		if req.Status == models.StatusDelivered {
			updates["delivered_at"] = time.Now()
		}
		prevStatus := order.Status
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prevStatus,
			ToStatus:   req.Status,
			Actor:      string(statemachine.ActorStaff),
			ActorID:    middleware.GetUserID(c),
			Note:       noteOr(req.Note, "Status updated by "+middleware.GetUsername(c)),
		}).Error
	})

	switch {
	case txErr == nil:
		config.DB.Preload("Items").First(&order, order.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found", "code": "not_found"})
	case errors.Is(txErr, statemachine.ErrOtpMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Delivery OTP does not match",
			"code":  "otp_mismatch",
		})
	case errors.Is(txErr, statemachine.ErrInvalidTransition), errors.Is(txErr, statemachine.ErrCancellationBlocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"code":              "invalid_transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
	}
}

func noteOr(note, fallback string) string {
	if note != "" {
		return note
	}
	return fallback
}
