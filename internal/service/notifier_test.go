package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

func (e *testEnv) createSellerWithFrequency(t *testing.T, email string, freq model.ReminderFrequency) *model.User {
	t.Helper()
	seller := e.createUser(t, email, true)
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", seller.ID).
		Update("reminder_frequency", string(freq)).Error)
	return seller
}

func (e *testEnv) seedPaidAwaitingShipment(t *testing.T, seller *model.User, count int) {
	t.Helper()
	buyer := e.createUser(t, "buyer-"+seller.Email, false)
	product := e.createProduct(t, seller.ID, 10, 100)
	for i := 0; i < count; i++ {
		order, _ := e.createPendingOrder(t, buyer, product, 1)
		e.mustTransition(t, order.ID, model.StatusPaid)
	}
}

func TestSendRemindersEmailsDueSellers(t *testing.T) {
	env := newTestEnv(t)

	due := env.createSellerWithFrequency(t, "due@test.local", model.ReminderHourly)
	off := env.createSellerWithFrequency(t, "off@test.local", model.ReminderOff)
	env.seedPaidAwaitingShipment(t, due, 2)
	env.seedPaidAwaitingShipment(t, off, 1)

	resp, err := env.notifierSvc.SendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalSellersChecked)
	assert.Equal(t, 1, resp.TotalEmailsSent)
	require.Equal(t, 1, env.mailer.sentCount())
	assert.Equal(t, "due@test.local", env.mailer.sent[0].To)

	// Both sellers still surface in the settings so the worker can adapt.
	require.Len(t, resp.SellerSettings, 2)
	byID := map[uint]int{}
	for _, s := range resp.SellerSettings {
		byID[s.SellerID] = s.PendingOrders
	}
	assert.Equal(t, 2, byID[due.ID])
	assert.Equal(t, 1, byID[off.ID])

	sent := env.reloadUser(t, due.ID).LastReminderSentAt
	require.NotNil(t, sent)
	assert.WithinDuration(t, time.Now(), *sent, 5*time.Second)
}

func TestSendRemindersRespectsLastSent(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createSellerWithFrequency(t, "seller@test.local", model.ReminderHourly)
	env.seedPaidAwaitingShipment(t, seller, 1)

	recent := time.Now().Add(-time.Minute)
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", seller.ID).
		Update("last_reminder_sent_at", recent).Error)

	resp, err := env.notifierSvc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalEmailsSent)
	assert.Equal(t, 0, env.mailer.sentCount())

	// Once the interval has elapsed the next sweep sends again.
	overdue := time.Now().Add(-2 * time.Hour)
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", seller.ID).
		Update("last_reminder_sent_at", overdue).Error)

	resp, err = env.notifierSvc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalEmailsSent)
}

func TestSendRemindersSkipsSellersWithNothingToShip(t *testing.T) {
	env := newTestEnv(t)

	env.createSellerWithFrequency(t, "idle@test.local", model.ReminderHourly)

	resp, err := env.notifierSvc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalSellersChecked)
	assert.Equal(t, 0, resp.TotalEmailsSent)
	assert.Empty(t, resp.SellerSettings)
}

func TestReminderFrequencyRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createUser(t, "seller@test.local", true)

	got, err := env.notifierSvc.GetReminderFrequency(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.ReminderOff), got.ReminderFrequency)

	got, err = env.notifierSvc.SetReminderFrequency(context.Background(), seller.ID, string(model.Reminder30Min))
	require.NoError(t, err)
	assert.Equal(t, string(model.Reminder30Min), got.ReminderFrequency)
	assert.Equal(t, string(model.Reminder30Min), env.reloadUser(t, seller.ID).ReminderFrequency)

	_, err = env.notifierSvc.SetReminderFrequency(context.Background(), seller.ID, "fortnightly")
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = env.notifierSvc.GetReminderFrequency(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNotificationsListAndMarkRead(t *testing.T) {
	env := newTestEnv(t)

	user := env.createUser(t, "user@test.local", false)
	stranger := env.createUser(t, "stranger@test.local", false)

	require.NoError(t, env.notifierSvc.Notify(context.Background(), env.db, user.ID, nil, "order_update", "Order shipped", "Your order is on its way"))

	list, err := env.notifierSvc.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsRead)

	// Marking as another user is refused.
	err = env.notifierSvc.MarkRead(context.Background(), list[0].ID, stranger.ID)
	assert.Error(t, err)

	require.NoError(t, env.notifierSvc.MarkRead(context.Background(), list[0].ID, user.ID))

	list, err = env.notifierSvc.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, list[0].IsRead)
}
