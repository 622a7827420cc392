package model

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name     string `gorm:"size:255" json:"name"`
	IsSeller bool   `gorm:"index" json:"isSeller"`

	IsSubscribed      bool       `json:"isSubscribed"`
	SubscriptionTier  string     `gorm:"size:32" json:"subscriptionTier"`
	SubscriptionStart *time.Time `json:"subscriptionStart"`
	SubscriptionEnd   *time.Time `json:"subscriptionEnd"`
	IsTrial           bool       `json:"isTrial"`

	// off, 30s, 30m or 1h. Controls pending-shipment reminder emails.
	ReminderFrequency  string     `gorm:"size:8;default:off" json:"reminderFrequency"`
	LastReminderSentAt *time.Time `json:"lastReminderSentAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	SellerID      uint    `gorm:"index;not null" json:"sellerId"`
	Name          string  `gorm:"size:255;not null" json:"name"`
	Price         float64 `gorm:"not null" json:"price"`
	ShippingPrice float64 `json:"shippingPrice"`
	Stock         int     `gorm:"not null" json:"stock"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Order struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProductID uint `gorm:"index;not null" json:"productId"`
	BuyerID   uint `gorm:"index;not null" json:"buyerId"`
	Quantity  int  `gorm:"not null" json:"quantity"`

	// Price snapshot taken at purchase time; the product row may change later.
	UnitPrice     float64 `gorm:"not null" json:"unitPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TotalAmount   float64 `gorm:"not null" json:"totalAmount"`

	Status        OrderStatus `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus string      `gorm:"size:16;index;not null" json:"paymentStatus"` // pending, paid, failed
	PaymentMethod string      `gorm:"size:32" json:"paymentMethod"`
	PaymentID     *uint       `gorm:"index" json:"paymentId"`

	PaymentDate    *time.Time `json:"paymentDate"`
	ActualDelivery *time.Time `json:"actualDelivery"`

	RecipientName    string `gorm:"size:255" json:"recipientName"`
	RecipientPhone   string `gorm:"size:32" json:"recipientPhone"`
	ShippingAddress  string `gorm:"size:512" json:"shippingAddress"`
	ShippingCity     string `gorm:"size:128" json:"shippingCity"`
	ShippingPostcode string `gorm:"size:16" json:"shippingPostcode"`
	TrackingNumber   string `gorm:"size:64" json:"trackingNumber"`
	Courier          string `gorm:"size:64" json:"courier"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Payment struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index" json:"userId"` // nil for order-scoped payments

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"size:8;not null" json:"currency"`
	Status   string  `gorm:"size:16;index;not null" json:"status"` // pending, completed, failed

	// Gateway-assigned bill id, used to locate the payment on callback.
	ExternalBillID string `gorm:"size:64;index" json:"externalBillId"`
	// Locally generated idempotency key round-tripped through the gateway.
	Reference string `gorm:"size:64;uniqueIndex;not null" json:"reference"`

	PaidAmount *float64   `json:"paidAmount"`
	PaidAt     *time.Time `json:"paidAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderStatusHistory is append-only; rows are never updated.
type OrderStatusHistory struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderID     uint        `gorm:"index;not null" json:"orderId"`
	Status      OrderStatus `gorm:"size:32;not null" json:"status"`
	Description string      `gorm:"size:512" json:"description"`
	Location    string      `gorm:"size:255" json:"location"`
	UpdatedBy   string      `gorm:"size:64" json:"updatedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index;not null" json:"userId"`
	OrderID *uint  `gorm:"index" json:"orderId"`
	Type    string `gorm:"size:32;not null" json:"type"`
	Title   string `gorm:"size:255" json:"title"`
	Message string `gorm:"size:1024" json:"message"`
	IsRead  bool   `gorm:"index" json:"isRead"`

	CreatedAt time.Time `json:"createdAt"`
}

type Payout struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	OrderID  uint `gorm:"index;not null" json:"orderId"`
	SellerID uint `gorm:"index;not null" json:"sellerId"`

	// Net of the platform fee.
	Amount float64 `gorm:"not null" json:"amount"`
	Status string  `gorm:"size:16;index;not null" json:"status"` // pending, processing, completed

	CreatedAt time.Time `json:"createdAt"`
}

type Receipt struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"index;not null" json:"orderId"`
	BuyerID uint   `gorm:"index;not null" json:"buyerId"`
	FileURL string `gorm:"size:512" json:"fileUrl"`

	CreatedAt time.Time `json:"createdAt"`
}
