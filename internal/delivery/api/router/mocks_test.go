package router

import (
	"context"
	"time"

	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// stubTokens accepts a fixed set of access tokens.
type stubTokens map[string]*service.Claims

func (s stubTokens) IssueAccessToken(uuid.UUID, string) (string, error) { return "", nil }
func (s stubTokens) IssueRefreshToken(uuid.UUID) (string, error)        { return "", nil }
func (s stubTokens) RefreshTokenTTL() time.Duration                     { return time.Hour }

func (s stubTokens) Verify(token string, class service.TokenClass) (*service.Claims, error) {
	claims, ok := s[token]
	if !ok || class != service.TokenClassAccess {
		return nil, domainerrors.ErrTokenInvalid
	}

	return claims, nil
}

type mockAuthUC struct{ mock.Mock }

func (m *mockAuthUC) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.RegisterOutput)

	return out, args.Error(1)
}

func (m *mockAuthUC) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.TokenPair, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.TokenPair)

	return out, args.Error(1)
}

func (m *mockAuthUC) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.TokenPair, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.TokenPair)

	return out, args.Error(1)
}

func (m *mockAuthUC) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

type mockSessionUC struct{ mock.Mock }

func (m *mockSessionUC) CreateSession(ctx context.Context, input *usecase.CreateSessionInput) (*entity.Session, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*entity.Session)

	return out, args.Error(1)
}

func (m *mockSessionUC) GetSessionByToken(ctx context.Context, refreshToken string) (*entity.Session, error) {
	args := m.Called(ctx, refreshToken)
	out, _ := args.Get(0).(*entity.Session)

	return out, args.Error(1)
}

func (m *mockSessionUC) ValidateContext(ctx context.Context, stored *entity.Session, reqCtx entity.RequestContext) error {
	return m.Called(ctx, stored, reqCtx).Error(0)
}

func (m *mockSessionUC) RotateSession(ctx context.Context, input *usecase.RotateSessionInput) (*entity.Session, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*entity.Session)

	return out, args.Error(1)
}

func (m *mockSessionUC) ListSessions(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*entity.Session)

	return out, args.Error(1)
}

func (m *mockSessionUC) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, sessionID)

	return args.Bool(0), args.Error(1)
}

func (m *mockSessionUC) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)

	return args.Int(0), args.Error(1)
}

func (m *mockSessionUC) MarkAccountCompromised(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockSessionUC) CleanupExpiredSessions(ctx context.Context, olderThan time.Time) (int, error) {
	args := m.Called(ctx, olderThan)

	return args.Int(0), args.Error(1)
}

type mockOrderUC struct{ mock.Mock }

func (m *mockOrderUC) CreateOrder(ctx context.Context, input *usecase.CreateOrderInput) (*entity.Order, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUC) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUC) ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUC) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (*entity.Order, error) {
	args := m.Called(ctx, id, status)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUC) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderUC) GetPaymentLink(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)

	return args.String(0), args.Error(1)
}

func (m *mockOrderUC) GetPaymentQR(ctx context.Context, id uuid.UUID) (*usecase.PaymentQROutput, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*usecase.PaymentQROutput)

	return out, args.Error(1)
}

type mockProductUC struct{ mock.Mock }

func (m *mockProductUC) CreateProduct(ctx context.Context, input *usecase.ProductInput) (*entity.Product, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUC) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUC) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUC) UpdateProduct(ctx context.Context, id uuid.UUID, input *usecase.ProductInput) (*entity.Product, error) {
	args := m.Called(ctx, id, input)
	out, _ := args.Get(0).(*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUC) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockPaymentUC struct{ mock.Mock }

func (m *mockPaymentUC) HandleWompiEvent(ctx context.Context, body []byte) (*usecase.PaymentEventOutput, error) {
	args := m.Called(ctx, body)
	out, _ := args.Get(0).(*usecase.PaymentEventOutput)

	return out, args.Error(1)
}

func (m *mockPaymentUC) GetPayment(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*entity.Payment)

	return out, args.Error(1)
}

func (m *mockPaymentUC) ListPayments(ctx context.Context, orderID *uuid.UUID) ([]*entity.Payment, error) {
	args := m.Called(ctx, orderID)
	out, _ := args.Get(0).([]*entity.Payment)

	return out, args.Error(1)
}

type mockAnalyticsUC struct{ mock.Mock }

func (m *mockAnalyticsUC) Summary(ctx context.Context, from, to time.Time) (*entity.SalesSummary, error) {
	args := m.Called(ctx, from, to)
	out, _ := args.Get(0).(*entity.SalesSummary)

	return out, args.Error(1)
}

func (m *mockAnalyticsUC) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*entity.ProductSales, error) {
	args := m.Called(ctx, from, to, limit)
	out, _ := args.Get(0).([]*entity.ProductSales)

	return out, args.Error(1)
}

type mockWebhookUC struct{ mock.Mock }

func (m *mockWebhookUC) VerifySubscription(ctx context.Context, input *usecase.VerifySubscriptionInput) (string, error) {
	args := m.Called(ctx, input)

	return args.String(0), args.Error(1)
}

func (m *mockWebhookUC) RelayInboundMessage(ctx context.Context, input *usecase.InboundMessageInput) error {
	return m.Called(ctx, input).Error(0)
}

type mockUserUC struct{ mock.Mock }

func (m *mockUserUC) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(*entity.User)

	return out, args.Error(1)
}

func (m *mockUserUC) UpdateUser(ctx context.Context, actorID, userID uuid.UUID, input *usecase.UpdateUserInput) (*entity.User, error) {
	args := m.Called(ctx, actorID, userID, input)
	out, _ := args.Get(0).(*entity.User)

	return out, args.Error(1)
}

func (m *mockUserUC) ReinstateUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(*entity.User)

	return out, args.Error(1)
}
