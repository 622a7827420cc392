package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

type CheckoutRequest struct {
	ProductID        uint   `json:"productId"`
	BuyerID          uint   `json:"buyerId"`
	Quantity         int    `json:"quantity"`
	RecipientName    string `json:"recipientName"`
	RecipientPhone   string `json:"recipientPhone"`
	ShippingAddress  string `json:"shippingAddress"`
	ShippingCity     string `json:"shippingCity"`
	ShippingPostcode string `json:"shippingPostcode"`
}

type CheckoutResponse struct {
	OrderID uint   `json:"orderId,omitempty"`
	BillID  string `json:"billId"`
	PayURL  string `json:"payUrl"`
}

type SubscribeRequest struct {
	UserID uint    `json:"userId"`
	Plan   string  `json:"plan"`
	Amount float64 `json:"amount"`
}

type UpdateStatusRequest struct {
	OrderID     uint   `json:"orderId"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	UpdatedBy   string `json:"updatedBy,omitempty"`
}

type SweepResponse struct {
	Success         bool      `json:"success"`
	CancelledOrders int       `json:"cancelledOrders"`
	Timestamp       time.Time `json:"timestamp"`
}

type SellerReminderSetting struct {
	SellerID          uint   `json:"sellerId"`
	ReminderFrequency string `json:"reminderFrequency"`
	PendingOrders     int    `json:"pendingOrders"`
}

type ReminderCheckResponse struct {
	Success             bool                    `json:"success"`
	TotalEmailsSent     int                     `json:"totalEmailsSent"`
	TotalSellersChecked int                     `json:"totalSellersChecked"`
	SellerSettings      []SellerReminderSetting `json:"sellerSettings"`
}

type PendingPayoutsRequest struct {
	SellerID uint `json:"sellerId"`
}

type PendingPayoutOrder struct {
	OrderID      uint    `json:"orderId"`
	ProductName  string  `json:"productName"`
	TotalAmount  float64 `json:"totalAmount"`
	PlatformFee  float64 `json:"platformFee"`
	SellerAmount float64 `json:"sellerAmount"`
	Status       string  `json:"status"`
}

type PendingPayoutsResponse struct {
	Orders     []PendingPayoutOrder `json:"orders"`
	TotalCount int                  `json:"totalCount"`
}

type RequestPayoutRequest struct {
	SellerID uint `json:"sellerId"`
	OrderID  uint `json:"orderId"`
}

type ReminderFrequencyRequest struct {
	ReminderFrequency string `json:"reminderFrequency"`
}

type ReminderFrequencyResponse struct {
	UserID            uint   `json:"userId"`
	ReminderFrequency string `json:"reminderFrequency"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WebhookPayload is the gateway callback body. The reference fields are
// free-form metadata round-tripped through the gateway and carry either a
// subscription activation or a product purchase.
type WebhookPayload struct {
	ID         string `json:"id"`
	State      string `json:"state"` // paid or failed
	PaidAmount string `json:"paid_amount"`
	PaidAt     string `json:"paid_at"`
	Reference1 string `json:"reference_1"`
	Reference2 string `json:"reference_2"`
	Reference3 string `json:"reference_3"`
}

// PaymentIntent is the decoded meaning of a webhook's reference fields.
type PaymentIntent interface {
	isPaymentIntent()
}

type SubscriptionIntent struct {
	UserID uint
	Plan   string
}

type PurchaseIntent struct {
	ProductID uint
	Quantity  int
	SellerID  uint
}

func (SubscriptionIntent) isPaymentIntent() {}
func (PurchaseIntent) isPaymentIntent() {}

// Intent decodes the reference fields once, at webhook ingress. reference_1
// set to "subscription" selects the subscription branch; anything else is a
// product purchase with productId/quantity/sellerId in reference_1..3.
func (p *WebhookPayload) Intent() (PaymentIntent, error) {
	if p.Reference1 == "subscription" {
		userID, err := strconv.ParseUint(p.Reference2, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("subscription reference_2 is not a user id: %w", err)
		}
		if p.Reference3 == "" {
			return nil, fmt.Errorf("subscription reference_3 missing plan code")
		}
		return SubscriptionIntent{UserID: uint(userID), Plan: p.Reference3}, nil
	}

	productID, err := strconv.ParseUint(p.Reference1, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("purchase reference_1 is not a product id: %w", err)
	}
	quantity, err := strconv.Atoi(p.Reference2)
	if err != nil || quantity <= 0 {
		return nil, fmt.Errorf("purchase reference_2 is not a positive quantity")
	}
	sellerID, err := strconv.ParseUint(p.Reference3, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("purchase reference_3 is not a seller id: %w", err)
	}

	return PurchaseIntent{
		ProductID: uint(productID),
		Quantity:  quantity,
		SellerID:  uint(sellerID),
	}, nil
}

type OrderResponse struct {
	Order   *model.Order                `json:"order"`
	Payment *model.Payment              `json:"payment,omitempty"`
	History []*model.OrderStatusHistory `json:"history,omitempty"`
}
