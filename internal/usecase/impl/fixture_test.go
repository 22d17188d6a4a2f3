package impl

import (
	"testing"

	"ventas/config"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"
	"ventas/internal/infra/auth"
	"ventas/internal/infra/qrcode"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	deviceA = entity.RequestContext{UserAgent: "Mozilla/5.0 (X11; Linux x86_64)", IPAddress: "203.0.113.10", DeviceName: "office-laptop"}
	deviceB = entity.RequestContext{UserAgent: "Mozilla/5.0 (X11; Linux x86_64)", IPAddress: "198.51.100.77", DeviceName: "office-laptop"}
)

// testFixture wires every service against one in-memory store.
type testFixture struct {
	store     *memStore
	txManager *memTxManager
	publisher *recordingPublisher
	notifier  *mockNotifier
	metrics   *fakeRecorder
	gateway   *stubGateway
	tokens    service.TokenService
	hasher    service.PasswordHasher

	sessions *sessionService
	auth     *authService
	orders   *orderService
	payments *paymentService
	products *productService
	users    *userService
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:            10,
			AccessTokenTTLMinutes: 15,
			RefreshTokenTTLDays:   7,
		},
		PasswordStrength: &config.PasswordStrengthConfig{MinLength: 6, MaxLength: 72},
	}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"

	return cfg
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	cfg := newTestConfig()
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	store := newMemStore()
	txManager := &memTxManager{store: store}
	publisher := &recordingPublisher{}
	metrics := newFakeRecorder()
	gateway := &stubGateway{}
	logger := newDiscardLogger()

	notifier := &mockNotifier{}
	notifier.On("SendTopicNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f := &testFixture{
		store:     store,
		txManager: txManager,
		publisher: publisher,
		notifier:  notifier,
		metrics:   metrics,
		gateway:   gateway,
		tokens:    tokens,
		hasher:    auth.NewBcryptHasher(cfg),
	}

	f.sessions = NewSessionService(SessionServiceParams{
		TxManager:   txManager,
		SessionRepo: &memSessionRepo{store: store},
		Publisher:   publisher,
		Notifier:    notifier,
		Metrics:     metrics,
		Logger:      logger,
	}).(*sessionService)

	f.auth = NewAuthService(AuthServiceParams{
		UserRepo:     &memUserRepo{store: store},
		Sessions:     f.sessions,
		Hasher:       f.hasher,
		TokenService: tokens,
		Metrics:      metrics,
		Logger:       logger,
	}).(*authService)

	f.orders = NewOrderService(OrderServiceParams{
		TxManager: txManager,
		OrderRepo: &memOrderRepo{store: store},
		Gateway:   gateway,
		QRCode:    qrcode.NewQRCodeService(128, "M"),
		Publisher: publisher,
		Notifier:  notifier,
		Metrics:   metrics,
		Logger:    logger,
	}).(*orderService)

	f.payments = NewPaymentService(PaymentServiceParams{
		TxManager:   txManager,
		PaymentRepo: &memPaymentRepo{store: store},
		Gateway:     gateway,
		Publisher:   publisher,
		Metrics:     metrics,
		Logger:      logger,
	}).(*paymentService)

	f.products = NewProductService(ProductServiceParams{
		ProductRepo: &memProductRepo{store: store},
		Logger:      logger,
	}).(*productService)

	f.users = NewUserService(UserServiceParams{
		TxManager: txManager,
		UserRepo:  &memUserRepo{store: store},
		Logger:    logger,
	}).(*userService)

	return f
}

// requireAppError asserts err carries a domain error with the given status and code.
func requireAppError(t *testing.T, err error, httpCode int, code string) {
	t.Helper()

	require.Error(t, err)
	appErr, ok := errors.AsType[domainerrors.AppError](err)
	require.True(t, ok, "expected an AppError, got %v", err)
	require.Equal(t, httpCode, appErr.HTTPCode())
	require.Equal(t, code, appErr.ErrorCode())
}
