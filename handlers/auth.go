package handlers

import (
	"net/http"

	"quickshop/config"
	"quickshop/middleware"
	"quickshop/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type StaffLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StaffLogin authenticates a store operator and returns a bearer token
func StaffLogin(c *gin.Context) {
	var req StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.StaffUser
	if err := config.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    gin.H{"id": user.ID, "username": user.Username},
	})
}

type CustomerAuthRequest struct {
	Phone string `json:"phone" binding:"required"`
	PIN   string `json:"pin" binding:"required,len=4,numeric"`
}

// SetupPIN sets or updates a customer's 4-digit security PIN
func SetupPIN(c *gin.Context) {
	var req CustomerAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := cleanPhone(req.Phone)
	if !phonePattern.MatchString(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid 10-digit Indian phone number", "field": "phone"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set PIN"})
		return
	}

	var customer models.Customer
	if err := config.DB.Where("phone = ?", phone).First(&customer).Error; err == nil {
		config.DB.Model(&customer).Update("pin_hash", string(hash))
	} else {
		config.DB.Create(&models.Customer{Phone: phone, PINHash: string(hash)})
	}

	c.JSON(http.StatusOK, gin.H{"message": "PIN set successfully", "phone": phone})
}

// VerifyPIN checks a phone + PIN pair
func VerifyPIN(c *gin.Context) {
	var req CustomerAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := cleanPhone(req.Phone)
	var customer models.Customer
	if err := config.DB.Where("phone = ?", phone).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account found for this number"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PINHash), []byte(req.PIN)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect PIN"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true, "phone": phone})
}

// OrderHistory returns all orders for a verified customer, newest first
func OrderHistory(c *gin.Context) {
	phone := cleanPhone(c.Query("phone"))
	pin := c.Query("pin")
	if !phonePattern.MatchString(phone) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid phone number"})
		return
	}
	var customer models.Customer
	if err := config.DB.Where("phone = ?", phone).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account found for this number. Place an order first and set a PIN."})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PINHash), []byte(pin)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect PIN. Please try again."})
		return
	}

	var orders []models.Order
	config.DB.Preload("Items").Where("phone = ?", phone).Order("created_at desc").Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}
