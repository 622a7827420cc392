package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{"pending to paid", StatusPending, StatusPaid, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"paid to processing", StatusPaid, StatusProcessing, true},
		{"paid to cancelled", StatusPaid, StatusCancelled, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"delivered to returned", StatusDelivered, StatusReturned, true},
		{"delivered to completed", StatusDelivered, StatusCompleted, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"pending to delivered", StatusPending, StatusDelivered, false},
		{"delivered to paid", StatusDelivered, StatusPaid, false},
		{"shipped to cancelled", StatusShipped, StatusCancelled, false},
		{"paid to returned", StatusPaid, StatusReturned, false},
		{"completed to anything", StatusCompleted, StatusReturned, false},
		{"cancelled to paid", StatusCancelled, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []OrderStatus{StatusCompleted, StatusCancelled, StatusReturned} {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}
	for _, s := range []OrderStatus{StatusPending, StatusPaid, StatusShipped, StatusDelivered} {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

// Every valid status must have an explicit customer-facing description; the
// templated fallback is only for corrupt data.
func TestDescriptionTableIsTotal(t *testing.T) {
	for _, s := range AllStatuses() {
		desc, ok := statusDescriptions[s]
		assert.True(t, ok, "status %s has no description", s)
		assert.NotEmpty(t, desc)
	}
}

func TestDescriptionFallback(t *testing.T) {
	assert.Equal(t, "Order status updated to bogus", OrderStatus("bogus").Description())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusOutForDelivery.Valid())
	assert.False(t, OrderStatus("bogus").Valid())
}

func TestReminderFrequency(t *testing.T) {
	d, active := Reminder30Sec.Interval()
	assert.True(t, active)
	assert.Equal(t, 30*time.Second, d)

	d, active = Reminder30Min.Interval()
	assert.True(t, active)
	assert.Equal(t, 30*time.Minute, d)

	d, active = ReminderHourly.Interval()
	assert.True(t, active)
	assert.Equal(t, time.Hour, d)

	_, active = ReminderOff.Interval()
	assert.False(t, active)

	assert.True(t, ReminderOff.Valid())
	assert.False(t, ReminderFrequency("2h").Valid())
}
