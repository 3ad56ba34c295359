package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a storefront order
type OrderStatus string

const (
	StatusProcessing     OrderStatus = "Processing"
	StatusReadyForPickup OrderStatus = "Ready for Pickup"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
)

// DeliveryType selects between counter pickup and home delivery
type DeliveryType string

const (
	DeliveryPickup DeliveryType = "pickup"
	DeliveryHome   DeliveryType = "delivery"
)

// DeliveryTime is informational only; it never gates a transition
type DeliveryTime string

const (
	DeliverySameDay DeliveryTime = "same_day"
	DeliveryNextDay DeliveryTime = "next_day"
)

type Order struct {
	ID           uint            `json:"-" gorm:"primaryKey"`
	Token        string          `json:"token" gorm:"uniqueIndex;not null"`
	Phone        string          `json:"phone" gorm:"not null;index"`
	Items        []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Total        decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	DeliveryType DeliveryType    `json:"delivery_type" gorm:"not null;default:'pickup'"`
	DeliveryTime DeliveryTime    `json:"delivery_time" gorm:"not null;default:'same_day'"`
	Address      *Address        `json:"address,omitempty" gorm:"embedded;embeddedPrefix:addr_"`
	// DeliveryOTP is shown to the customer exactly once, in the create-order
	// response. It never appears on any other read path.
	DeliveryOTP   string               `json:"-" gorm:"column:delivery_otp"`
	Status        OrderStatus          `json:"status" gorm:"not null;default:'Processing';index"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time            `json:"created_at"`
	DeliveredAt   *time.Time           `json:"delivered_at,omitempty"`
}

// OrderItem is a snapshot of a catalog line at placement time.
// Prices are never re-read from the live catalog — the order is history.
type OrderItem struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	OrderID   uint            `json:"-" gorm:"not null;index"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
}

// Address holds the structured delivery address. Line is a legacy free-text
// fallback accepted from older clients that predate the structured fields.
type Address struct {
	Flat     string `json:"flat,omitempty"`
	Building string `json:"building,omitempty"`
	Road     string `json:"road,omitempty"`
	Area     string `json:"area,omitempty"`
	Landmark string `json:"landmark,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Line     string `json:"line,omitempty"`
}

// IsZero reports whether no address field was supplied at all.
func (a *Address) IsZero() bool {
	if a == nil {
		return true
	}
	return a.Flat == "" && a.Building == "" && a.Road == "" && a.Area == "" &&
		a.Landmark == "" && a.Pincode == "" && a.Line == ""
}

// OrderStatusHistory tracks every status change — audit trail.
// ActorID is the staff account behind a staff transition; customer rows
// leave it zero (customers have no account id on this path).
type OrderStatusHistory struct {
	ID         uint        `json:"-" gorm:"primaryKey"`
	OrderID    uint        `json:"-" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	Actor      string      `json:"actor"`
	ActorID    uint        `json:"actor_id,omitempty"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Counter backs the order token sequence. Tokens are STORE-<n> with the
// sequence starting above 100 so they look nothing like row ids.
type Counter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null;default:100"`
}
