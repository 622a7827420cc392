package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/client"
	"github.com/AfiqSafri/livesales-sub002/internal/model"
	"github.com/AfiqSafri/livesales-sub002/internal/repository"
)

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeBilling struct {
	bills []client.CreateBillRequest
	fail  bool
}

func (f *fakeBilling) CreateBill(ctx context.Context, req *client.CreateBillRequest) (*client.CreateBillResponse, error) {
	if f.fail {
		return nil, errors.New("gateway down")
	}
	f.bills = append(f.bills, *req)
	billID := fmt.Sprintf("bill-%d", len(f.bills))
	return &client.CreateBillResponse{
		BillID: billID,
		PayURL: "https://gateway.test/pay/" + billID,
	}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, client.Migrate(db))
	return db
}

type testEnv struct {
	db *gorm.DB

	userRepo         repository.UserRepository
	productRepo      repository.ProductRepository
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	notificationRepo repository.NotificationRepository
	payoutRepo       repository.PayoutRepository

	mailer  *fakeMailer
	billing *fakeBilling

	orderSvc    OrderService
	webhookSvc  WebhookService
	sweeperSvc  SweeperService
	notifierSvc NotificationService
	payoutSvc   PayoutService
	checkoutSvc CheckoutService
	accountSvc  AccountService
}

const testWebhookSecret = "test-webhook-secret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	logger := zap.NewNop()
	mailer := &fakeMailer{}
	billing := &fakeBilling{}

	env := &testEnv{
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		productRepo:      repository.NewProductRepository(db),
		orderRepo:        repository.NewOrderRepository(db),
		paymentRepo:      repository.NewPaymentRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		payoutRepo:       repository.NewPayoutRepository(db),
		mailer:           mailer,
		billing:          billing,
	}

	env.orderSvc = NewOrderService(db, env.orderRepo, env.productRepo, env.paymentRepo, env.notificationRepo, logger)
	env.webhookSvc = NewWebhookService(db, testWebhookSecret, env.paymentRepo, env.orderRepo, env.productRepo, env.userRepo, env.orderSvc, logger)
	env.sweeperSvc = NewSweeperService(db, 3*time.Minute, env.orderRepo, env.productRepo, env.userRepo, env.orderSvc, mailer, logger)
	env.notifierSvc = NewNotificationService(env.notificationRepo, env.userRepo, env.orderRepo, mailer, logger)

	payoutSvc, err := NewPayoutService(db, "0.05", env.orderRepo, env.productRepo, env.payoutRepo, logger)
	require.NoError(t, err)
	env.payoutSvc = payoutSvc

	env.checkoutSvc = NewCheckoutService(db, billing, "http://localhost:8080", env.productRepo, env.orderRepo, env.paymentRepo, env.userRepo, logger)
	env.accountSvc = NewAccountService(db, env.userRepo, env.orderRepo, env.paymentRepo, env.productRepo, env.payoutRepo, env.notificationRepo, logger)

	return env
}

func (e *testEnv) createUser(t *testing.T, email string, seller bool) *model.User {
	t.Helper()
	user := &model.User{
		Email:             email,
		Name:              email,
		IsSeller:          seller,
		ReminderFrequency: string(model.ReminderOff),
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createProduct(t *testing.T, sellerID uint, price float64, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		SellerID:      sellerID,
		Name:          "test product",
		Price:         price,
		ShippingPrice: 0,
		Stock:         stock,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

// createPendingOrder seeds a purchase intent: pending order plus pending
// payment linked by id, the state checkout leaves behind.
func (e *testEnv) createPendingOrder(t *testing.T, buyer *model.User, product *model.Product, quantity int) (*model.Order, *model.Payment) {
	t.Helper()

	total := float64(quantity)*product.Price + product.ShippingPrice
	payment := &model.Payment{
		Amount:         total,
		Currency:       "MYR",
		Status:         model.PaymentStatusPending,
		ExternalBillID: "bill-" + uuid.NewString(),
		Reference:      uuid.NewString(),
	}
	require.NoError(t, e.db.Create(payment).Error)

	order := &model.Order{
		ProductID:     product.ID,
		BuyerID:       buyer.ID,
		Quantity:      quantity,
		UnitPrice:     product.Price,
		ShippingPrice: product.ShippingPrice,
		TotalAmount:   total,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentID:     &payment.ID,
	}
	require.NoError(t, e.db.Create(order).Error)

	return order, payment
}

func (e *testEnv) reloadOrder(t *testing.T, id uint) *model.Order {
	t.Helper()
	var order model.Order
	require.NoError(t, e.db.First(&order, id).Error)
	return &order
}

func (e *testEnv) reloadUser(t *testing.T, id uint) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, e.db.First(&user, id).Error)
	return &user
}

func (e *testEnv) reloadProduct(t *testing.T, id uint) *model.Product {
	t.Helper()
	var product model.Product
	require.NoError(t, e.db.First(&product, id).Error)
	return &product
}

func (e *testEnv) historyFor(t *testing.T, orderID uint) []*model.OrderStatusHistory {
	t.Helper()
	history, err := e.orderRepo.ListHistory(context.Background(), orderID)
	require.NoError(t, err)
	return history
}
