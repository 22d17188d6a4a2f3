package impl

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for the database. Rows are held by value so
// a snapshot taken at the start of a transaction can be restored on rollback.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]entity.User
	sessions map[uuid.UUID]entity.Session
	products map[uuid.UUID]entity.Product
	orders   map[uuid.UUID]entity.Order
	payments map[uuid.UUID]entity.Payment
	seq      map[uuid.UUID]int
	nextSeq  int
	failures map[string]error
	hooks    map[string]func()
}

type memSnapshot struct {
	users    map[uuid.UUID]entity.User
	sessions map[uuid.UUID]entity.Session
	products map[uuid.UUID]entity.Product
	orders   map[uuid.UUID]entity.Order
	payments map[uuid.UUID]entity.Payment
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]entity.User{},
		sessions: map[uuid.UUID]entity.Session{},
		products: map[uuid.UUID]entity.Product{},
		orders:   map[uuid.UUID]entity.Order{},
		payments: map[uuid.UUID]entity.Payment{},
		seq:      map[uuid.UUID]int{},
		failures: map[string]error{},
		hooks:    map[string]func(){},
	}
}

// failOn makes the named repository operation, e.g. "orders.Create", return err.
func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *memStore) injected(op string) error {
	return s.failures[op]
}

// beforeWrite runs fn once, just ahead of the named write and outside the
// store lock. It stands in for another transaction committing in between.
func (s *memStore) beforeWrite(op string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[op] = fn
}

func (s *memStore) runBeforeWrite(op string) {
	s.mu.Lock()
	fn := s.hooks[op]
	delete(s.hooks, op)
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return memSnapshot{
		users:    maps.Clone(s.users),
		sessions: maps.Clone(s.sessions),
		products: maps.Clone(s.products),
		orders:   maps.Clone(s.orders),
		payments: maps.Clone(s.payments),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.sessions = snap.sessions
	s.products = snap.products
	s.orders = snap.orders
	s.payments = snap.payments
}

func (s *memStore) addProduct(price string, stock int) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := entity.Product{
		ID:     uuid.New(),
		SKU:    "SKU-" + uuid.NewString()[:8],
		Name:   "Arroz 25kg",
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	s.products[product.ID] = product

	return product
}

func (s *memStore) user(id uuid.UUID) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.users[id]
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.orders)
}

// --- Transaction manager ---

// memTxManager serializes transactions and rolls the store back when fn fails.
type memTxManager struct {
	mu    sync.Mutex
	store *memStore
}

func (m *memTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.store.snapshot()
	if err := fn(memFactory{store: m.store}); err != nil {
		m.store.restore(snap)

		return err
	}

	return nil
}

type memFactory struct {
	store *memStore
}

func (f memFactory) UserRepo() repository.UserRepository       { return &memUserRepo{store: f.store} }
func (f memFactory) SessionRepo() repository.SessionRepository { return &memSessionRepo{store: f.store} }
func (f memFactory) ProductRepo() repository.ProductRepository { return &memProductRepo{store: f.store} }
func (f memFactory) OrderRepo() repository.OrderRepository     { return &memOrderRepo{store: f.store} }
func (f memFactory) PaymentRepo() repository.PaymentRepository { return &memPaymentRepo{store: f.store} }

// --- Users ---

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Email == entity.NormalizeEmail(email) {
			return &user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("users.Create"); err != nil {
		return err
	}
	for _, existing := range r.store.users {
		if existing.Email == entity.NormalizeEmail(user.Email) {
			return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("email already exists")
		}
	}
	r.store.users[user.ID] = *user

	return nil
}

func (r *memUserRepo) UpdateAccess(_ context.Context, id uuid.UUID, change repository.AccessChange, at time.Time) error {
	r.store.runBeforeWrite("users.UpdateAccess")

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("users.UpdateAccess"); err != nil {
		return err
	}
	user, ok := r.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if change.Role != nil {
		user.Role = *change.Role
	}
	if change.Disabled != nil {
		user.Disabled = *change.Disabled
	}
	user.UpdatedAt = at
	r.store.users[id] = user

	return nil
}

func (r *memUserRepo) ClearCompromised(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.store.runBeforeWrite("users.ClearCompromised")

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("users.ClearCompromised"); err != nil {
		return false, err
	}
	user, ok := r.store.users[id]
	if !ok || !user.Compromised {
		return false, nil
	}
	user.Compromised = false
	user.CompromisedAt = nil
	user.UpdatedAt = at
	r.store.users[id] = user

	return true, nil
}

func (r *memUserRepo) MarkCompromised(_ context.Context, id uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Compromised = true
	if user.CompromisedAt == nil {
		user.CompromisedAt = &at
	}
	r.store.users[id] = user

	return nil
}

// --- Sessions ---

type memSessionRepo struct {
	store *memStore
}

func (r *memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("sessions.Create"); err != nil {
		return err
	}
	for _, existing := range r.store.sessions {
		if existing.TokenHash == session.TokenHash {
			return domainerrors.ErrInvalidRefreshToken.WrapMessage("refresh token already exists")
		}
	}
	r.store.sessions[session.ID] = *session
	r.store.nextSeq++
	r.store.seq[session.ID] = r.store.nextSeq

	return nil
}

func (r *memSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, session := range r.store.sessions {
		if session.TokenHash == tokenHash {
			return &session, nil
		}
	}

	return nil, repository.ErrSessionNotFound
}

func (r *memSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	return &session, nil
}

func (r *memSessionRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var sessions []*entity.Session
	for _, session := range r.store.sessions {
		if session.UserID == userID {
			sessions = append(sessions, &session)
		}
	}
	slices.SortFunc(sessions, func(a, b *entity.Session) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return r.store.seq[b.ID] - r.store.seq[a.ID]
	})

	return sessions, nil
}

func (r *memSessionRepo) Revoke(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("sessions.Revoke"); err != nil {
		return false, err
	}
	session, ok := r.store.sessions[id]
	if !ok || session.Revoked {
		return false, nil
	}
	session.Revoked = true
	session.LastUsedAt = &at
	r.store.sessions[id] = session

	return true, nil
}

func (r *memSessionRepo) RevokeForUser(_ context.Context, userID, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	session, ok := r.store.sessions[id]
	if !ok || session.UserID != userID {
		return false, nil
	}
	session.Revoked = true
	r.store.sessions[id] = session

	return true, nil
}

func (r *memSessionRepo) RevokeAllByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("sessions.RevokeAllByUserID"); err != nil {
		return 0, err
	}
	count := 0
	for id, session := range r.store.sessions {
		if session.UserID == userID && !session.Revoked {
			session.Revoked = true
			r.store.sessions[id] = session
			count++
		}
	}

	return count, nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for id, session := range r.store.sessions {
		if session.ExpiresAt.Before(before) {
			delete(r.store.sessions, id)
			count++
		}
	}

	return count, nil
}

// --- Products ---

type memProductRepo struct {
	store *memStore
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return &product, nil
}

func (r *memProductRepo) FindByIDForShare(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) List(_ context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var products []*entity.Product
	for _, product := range r.store.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.OnlyActive && !product.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Search)) {
			continue
		}
		products = append(products, &product)
	}
	slices.SortFunc(products, func(a, b *entity.Product) int { return strings.Compare(a.Name, b.Name) })

	return products, nil
}

func (r *memProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.products {
		if existing.SKU == product.SKU {
			return domainerrors.ErrConflict.WrapMessage("sku already exists")
		}
	}
	r.store.products[product.ID] = *product

	return nil
}

func (r *memProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	r.store.products[product.ID] = *product

	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	for _, order := range r.store.orders {
		if order.ProductID == id {
			return domainerrors.ErrConflict.WrapMessage("product is referenced by orders")
		}
	}
	delete(r.store.products, id)

	return nil
}

// --- Orders ---

type memOrderRepo struct {
	store *memStore
}

func (r *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("orders.Create"); err != nil {
		return err
	}
	r.store.orders[order.ID] = *order

	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return &order, nil
}

func (r *memOrderRepo) List(_ context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var orders []*entity.Order
	for _, order := range r.store.orders {
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		orders = append(orders, &order)
	}
	slices.SortFunc(orders, func(a, b *entity.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}

	return orders, nil
}

func (r *memOrderRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.injected("orders.UpdatePaymentStatus"); err != nil {
		return err
	}
	order, ok := r.store.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.PaymentStatus = status
	r.store.orders[id] = order

	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(r.store.orders, id)

	return nil
}

// --- Payments ---

type memPaymentRepo struct {
	store *memStore
}

func (r *memPaymentRepo) Upsert(_ context.Context, payment *entity.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, existing := range r.store.payments {
		if existing.Provider == payment.Provider && existing.ProviderReference == payment.ProviderReference {
			existing.Status = payment.Status
			existing.ProviderStatus = payment.ProviderStatus
			existing.AmountInCents = payment.AmountInCents
			existing.Currency = payment.Currency
			existing.UpdatedAt = payment.UpdatedAt
			r.store.payments[id] = existing
			*payment = existing

			return nil
		}
	}
	r.store.payments[payment.ID] = *payment

	return nil
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	payment, ok := r.store.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}

	return &payment, nil
}

func (r *memPaymentRepo) List(_ context.Context, orderID *uuid.UUID) ([]*entity.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var payments []*entity.Payment
	for _, payment := range r.store.payments {
		if orderID != nil && payment.OrderID != *orderID {
			continue
		}
		payments = append(payments, &payment)
	}

	return payments, nil
}

// --- Collaborators ---

// recordingPublisher keeps every published event and can be made to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *service.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}

	return types
}

// mockNotifier is a testify mock of the operator push channel.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendTopicNotification(ctx context.Context, topic, title, body string, data map[string]string) error {
	args := m.Called(ctx, topic, title, body, data)

	return args.Error(0)
}

// fakeRecorder counts business metrics.
type fakeRecorder struct {
	mu          sync.Mutex
	auth        map[string]int
	compromised int
	orders      int
	webhooks    map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{auth: map[string]int{}, webhooks: map[string]int{}}
}

func (r *fakeRecorder) AuthAttempt(operation, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth[operation+"/"+result]++
}

func (r *fakeRecorder) SessionCompromised() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compromised++
}

func (r *fakeRecorder) OrderCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders++
}

func (r *fakeRecorder) WebhookEvent(source, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks[source+"/"+result]++
}

// stubGateway returns a fixed event or error from ParseEvent.
type stubGateway struct {
	event *service.PaymentEvent
	err   error
}

func (g *stubGateway) ParseEvent(_ []byte) (*service.PaymentEvent, error) {
	if g.err != nil {
		return nil, g.err
	}

	return g.event, nil
}

func (g *stubGateway) CheckoutURL(orderID uuid.UUID, total decimal.Decimal) (string, error) {
	if g.err != nil {
		return "", g.err
	}

	return "https://checkout.test/?reference=" + orderID.String() + "&total=" + total.StringFixed(2), nil
}

var errStoreDown = errors.New("store unavailable")
