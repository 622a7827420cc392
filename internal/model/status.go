package model

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusPaid           OrderStatus = "paid"
	StatusProcessing     OrderStatus = "processing"
	StatusReadyToShip    OrderStatus = "ready_to_ship"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusCompleted = "completed"
)

const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
)

// transitions is the forward edge set of the order lifecycle. Cancellation is
// only reachable while the seller has not shipped; returns only after delivery.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusPaid, StatusCancelled},
	StatusPaid:           {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusReadyToShip, StatusCancelled},
	StatusReadyToShip:    {StatusShipped},
	StatusShipped:        {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {StatusCompleted, StatusReturned},
	StatusCompleted:      {},
	StatusCancelled:      {},
	StatusReturned:       {},
}

var statusDescriptions = map[OrderStatus]string{
	StatusPending:        "Order placed, awaiting payment",
	StatusPaid:           "Payment received",
	StatusProcessing:     "Seller is preparing your order",
	StatusReadyToShip:    "Order packed and ready to ship",
	StatusShipped:        "Order handed to courier",
	StatusOutForDelivery: "Order is out for delivery",
	StatusDelivered:      "Order delivered",
	StatusCompleted:      "Order completed",
	StatusCancelled:      "Order cancelled",
	StatusReturned:       "Order returned",
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Description returns the customer-facing message for a status. The table is
// total over valid statuses; the fallback only fires for corrupt data.
func (s OrderStatus) Description() string {
	if desc, ok := statusDescriptions[s]; ok {
		return desc
	}
	return fmt.Sprintf("Order status updated to %s", s)
}

// AllStatuses lists every valid status, for validation and tests.
func AllStatuses() []OrderStatus {
	all := make([]OrderStatus, 0, len(transitions))
	for s := range transitions {
		all = append(all, s)
	}
	return all
}

// ReminderFrequency is a seller preference for pending-shipment emails.
type ReminderFrequency string

const (
	ReminderOff    ReminderFrequency = "off"
	Reminder30Sec  ReminderFrequency = "30s"
	Reminder30Min  ReminderFrequency = "30m"
	ReminderHourly ReminderFrequency = "1h"
)

var reminderIntervals = map[ReminderFrequency]time.Duration{
	Reminder30Sec:  30 * time.Second,
	Reminder30Min:  30 * time.Minute,
	ReminderHourly: time.Hour,
}

func (f ReminderFrequency) Valid() bool {
	if f == ReminderOff {
		return true
	}
	_, ok := reminderIntervals[f]
	return ok
}

// Interval returns the configured gap between reminder emails and whether the
// frequency is active at all (false for "off" and unknown values).
func (f ReminderFrequency) Interval() (time.Duration, bool) {
	d, ok := reminderIntervals[f]
	return d, ok
}
