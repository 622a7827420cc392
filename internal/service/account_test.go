package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

func TestRemoveAccountCascades(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createUser(t, "seller@test.local", true)
	buyer := env.createUser(t, "buyer@test.local", false)
	product := env.createProduct(t, seller.ID, 20, 10)

	order := env.createPaidOrder(t, buyer, product, 1)
	require.NoError(t, env.notifierSvc.Notify(context.Background(), env.db, buyer.ID, &order.ID, "order_update", "Paid", "Payment received"))

	require.NoError(t, env.accountSvc.RemoveAccount(context.Background(), buyer.ID))

	count := func(m any, query string, args ...any) int64 {
		var n int64
		require.NoError(t, env.db.Model(m).Where(query, args...).Count(&n).Error)
		return n
	}

	assert.Zero(t, count(&model.User{}, "id = ?", buyer.ID))
	assert.Zero(t, count(&model.Order{}, "buyer_id = ?", buyer.ID))
	assert.Zero(t, count(&model.OrderStatusHistory{}, "order_id = ?", order.ID))
	assert.Zero(t, count(&model.Notification{}, "user_id = ?", buyer.ID))

	// The seller and their catalog survive a buyer removal.
	assert.Equal(t, int64(1), count(&model.User{}, "id = ?", seller.ID))
	assert.Equal(t, int64(1), count(&model.Product{}, "seller_id = ?", seller.ID))
}

func TestRemoveAccountSeller(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createUser(t, "seller@test.local", true)
	buyer := env.createUser(t, "buyer@test.local", false)
	product := env.createProduct(t, seller.ID, 20, 10)
	order := env.createPaidOrder(t, buyer, product, 1)

	_, err := env.payoutSvc.RequestPayout(context.Background(), seller.ID, order.ID)
	require.NoError(t, err)

	require.NoError(t, env.accountSvc.RemoveAccount(context.Background(), seller.ID))

	var payouts, products int64
	require.NoError(t, env.db.Model(&model.Payout{}).Where("seller_id = ?", seller.ID).Count(&payouts).Error)
	require.NoError(t, env.db.Model(&model.Product{}).Where("seller_id = ?", seller.ID).Count(&products).Error)
	assert.Zero(t, payouts)
	assert.Zero(t, products)
}

func TestRemoveAccountUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	err := env.accountSvc.RemoveAccount(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
