package config

import (
	"log"
	"os"

	"quickshop/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign staff session tokens — read from env or fallback
var JWTSecret = []byte(getEnv("JWT_SECRET", "quickshop-secret-key-change-in-production"))

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	path := getEnv("DATABASE_PATH", "store.db")
	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	Seed(DB)

	log.Println("Database connected and migrated successfully")
}

// Migrate runs the schema auto-migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Customer{},
		&models.StaffUser{},
		&models.Counter{},
	)
}

// Seed inserts the token counter, the default staff account and the product
// catalog when they are missing. Safe to call on every startup.
func Seed(db *gorm.DB) {
	db.Where(models.Counter{Name: "order_token"}).
		FirstOrCreate(&models.Counter{Name: "order_token", Value: 100})

	var staffCount int64
	db.Model(&models.StaffUser{}).Count(&staffCount)
	if staffCount == 0 {
		password := getEnv("ADMIN_PASSWORD", "admin123")
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("Failed to hash admin password:", err)
		}
		db.Create(&models.StaffUser{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: string(hash),
		})
	}

	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	if productCount == 0 {
		seedProducts(db)
	}
}

func seedProducts(db *gorm.DB) {
	type p struct {
		name     string
		price    int64
		desc     string
		image    string
		category string
	}
	catalog := []p{
		{"Taza Milk (500ml)", 28, "Fresh pasteurized toned milk, daily delivery", "https://images.unsplash.com/photo-1563636619-e9143da7973b?w=400&h=300&fit=crop", "Dairy"},
		{"White Bread Loaf", 45, "Soft sliced white bread, freshly baked", "https://images.unsplash.com/photo-1598373182133-52452f7691ef?w=400&h=300&fit=crop", "Bakery"},
		{"Basmati Rice (1kg)", 85, "Premium aged long-grain basmati rice", "https://images.unsplash.com/photo-1586201375761-83865001e31c?w=400&h=300&fit=crop", "Grains"},
		{"Sunflower Oil (1L)", 150, "Refined sunflower cooking oil, heart-healthy", "https://images.unsplash.com/photo-1474979266404-7eadbdf060bf?w=400&h=300&fit=crop", "Cooking"},
		{"Toor Dal (1kg)", 120, "Split pigeon peas, protein-rich staple", "https://images.unsplash.com/photo-1585937421612-70a008356fbe?w=400&h=300&fit=crop", "Pulses"},
		{"Sugar (1kg)", 48, "Fine crystal white sugar", "https://images.unsplash.com/photo-1558642452-9d2a7deb7f62?w=400&h=300&fit=crop", "Essentials"},
		{"Amul Butter (100g)", 56, "Pasteurized salted butter, creamy & fresh", "https://images.unsplash.com/photo-1589985270826-4b7bb135bc0d?w=400&h=300&fit=crop", "Dairy"},
		{"Red Chilli Powder (200g)", 65, "Spicy Kashmiri red chilli powder", "https://images.unsplash.com/photo-1596040033229-a9821ebd058d?w=400&h=300&fit=crop", "Spices"},
		{"Turmeric Powder (200g)", 42, "Pure haldi powder for cooking & health", "https://images.unsplash.com/photo-1615485500704-8e990f9900f7?w=400&h=300&fit=crop", "Spices"},
		{"Tea Leaves (250g)", 110, "Premium CTC Assam tea leaves", "https://images.unsplash.com/photo-1564890369478-c89ca6d9cde9?w=400&h=300&fit=crop", "Beverages"},
		{"Wheat Atta (5kg)", 220, "Whole wheat flour, stone-ground fresh", "https://images.unsplash.com/photo-1574323347407-f5e1ad6d020b?w=400&h=300&fit=crop", "Grains"},
		{"Salt (1kg)", 20, "Iodized refined salt, daily essential", "https://images.unsplash.com/photo-1518110925495-5fe2c8215e5d?w=400&h=300&fit=crop", "Essentials"},
		{"Eggs (12 pcs)", 78, "Farm-fresh brown eggs, protein-packed", "https://images.unsplash.com/photo-1582722872445-44dc5f7e3c8f?w=400&h=300&fit=crop", "Dairy"},
		{"Onion (1kg)", 35, "Fresh red onions, kitchen staple", "https://images.unsplash.com/photo-1618512496248-a07fe83aa8cb?w=400&h=300&fit=crop", "Vegetables"},
		{"Potato (1kg)", 30, "Fresh aloo, versatile and nutritious", "https://images.unsplash.com/photo-1518977676601-b53f82ber157?w=400&h=300&fit=crop", "Vegetables"},
		{"Tomato (1kg)", 40, "Ripe red tomatoes for gravy and salad", "https://images.unsplash.com/photo-1546470427-0d4db154ceb8?w=400&h=300&fit=crop", "Vegetables"},
		{"Maggi Noodles (4 pack)", 56, "2-minute instant masala noodles", "https://images.unsplash.com/photo-1612929633738-8fe44f7ec841?w=400&h=300&fit=crop", "Snacks"},
		{"Biscuits Pack (200g)", 30, "Crunchy glucose biscuits, tea-time snack", "https://images.unsplash.com/photo-1558961363-fa8fdf82db35?w=400&h=300&fit=crop", "Snacks"},
		{"Curd (400g)", 35, "Thick creamy dahi, probiotic-rich", "https://images.unsplash.com/photo-1488477181946-6428a0291777?w=400&h=300&fit=crop", "Dairy"},
		{"Soap Bar (3 pack)", 99, "Neem antibacterial bath soap, pack of 3", "https://images.unsplash.com/photo-1600857544200-b2f666a9a2ec?w=400&h=300&fit=crop", "Personal Care"},
	}
	for _, item := range catalog {
		db.Create(&models.Product{
			Name:        item.name,
			Price:       decimal.NewFromInt(item.price),
			Description: item.desc,
			ImageURL:    item.image,
			Category:    item.category,
		})
	}
}
