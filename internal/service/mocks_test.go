package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"pharma-portal/internal/domain"
	"pharma-portal/internal/mailer"
	"pharma-portal/internal/repository"
	"pharma-portal/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, t := range m.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}

// mockRoleRepository mirrors the SQL role functions; err makes every call fail
type mockRoleRepository struct {
	mu    sync.Mutex
	roles map[uuid.UUID]map[domain.Role]bool
	err   error
	calls int
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{roles: make(map[uuid.UUID]map[domain.Role]bool)}
}

func (m *mockRoleRepository) HasRole(ctx context.Context, userID uuid.UUID, role domain.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.roles[userID][role], nil
}

func (m *mockRoleRepository) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Role{}
	for r := range m.roles[userID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *mockRoleRepository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return m.HasRole(ctx, userID, domain.RoleAdmin)
}

func (m *mockRoleRepository) CreateAdmin(ctx context.Context, callerID, newAdminID uuid.UUID) (bool, error) {
	ok, err := m.IsAdmin(ctx, callerID)
	if err != nil || !ok {
		return false, err
	}
	return true, m.Add(ctx, newAdminID, domain.RoleAdmin)
}

func (m *mockRoleRepository) Add(ctx context.Context, userID uuid.UUID, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.roles[userID] == nil {
		m.roles[userID] = make(map[domain.Role]bool)
	}
	m.roles[userID][role] = true
	return nil
}

func (m *mockRoleRepository) Remove(ctx context.Context, userID uuid.UUID, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if !m.roles[userID][role] {
		return repository.ErrRoleNotFound
	}
	delete(m.roles[userID], role)
	return nil
}

func (m *mockRoleRepository) List(ctx context.Context) ([]domain.UserRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.UserRole{}
	for userID, roles := range m.roles {
		for r := range roles {
			out = append(out, domain.UserRole{UserID: userID, Role: r})
		}
	}
	return out, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) Patch(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	for c, v := range columns {
		switch c {
		case "name":
			p.Name = v.(string)
		case "stock":
			p.Stock = v.(int)
		case "terpenes":
			p.Terpenes = v.(domain.StringList)
		}
	}
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	out := make(map[uuid.UUID]*domain.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type mockOrderRepository struct {
	orders       map[uuid.UUID]*domain.Order
	statusWrites int
	createErr    error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	c := *o
	return &c, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	m.statusWrites++
	o.Status = status
	return nil
}

func (m *mockOrderRepository) Patch(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	for c, v := range columns {
		var s *string
		if v != nil {
			str := v.(string)
			s = &str
		}
		switch c {
		case "tracking_number":
			o.TrackingNumber = s
		case "notes":
			o.Notes = s
		default:
			return repository.ErrUnknownColumn
		}
	}
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

type mockVerificationRepository struct {
	items map[uuid.UUID]*domain.PharmacyVerification
}

func newMockVerificationRepository() *mockVerificationRepository {
	return &mockVerificationRepository{items: make(map[uuid.UUID]*domain.PharmacyVerification)}
}

func (m *mockVerificationRepository) Create(ctx context.Context, v *domain.PharmacyVerification) error {
	c := *v
	m.items[v.ID] = &c
	return nil
}

func (m *mockVerificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PharmacyVerification, error) {
	v, ok := m.items[id]
	if !ok {
		return nil, repository.ErrVerificationNotFound
	}
	c := *v
	return &c, nil
}

func (m *mockVerificationRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.PharmacyVerification, error) {
	var latest *domain.PharmacyVerification
	for _, v := range m.items {
		if v.UserID == userID && (latest == nil || v.SubmittedAt.After(latest.SubmittedAt)) {
			latest = v
		}
	}
	if latest == nil {
		return nil, repository.ErrVerificationNotFound
	}
	c := *latest
	return &c, nil
}

func (m *mockVerificationRepository) List(ctx context.Context, status domain.VerificationStatus) ([]domain.PharmacyVerification, error) {
	out := []domain.PharmacyVerification{}
	for _, v := range m.items {
		if status == "" || v.Status == status {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *mockVerificationRepository) UpdateReview(ctx context.Context, v *domain.PharmacyVerification) error {
	if _, ok := m.items[v.ID]; !ok {
		return repository.ErrVerificationNotFound
	}
	c := *v
	m.items[v.ID] = &c
	return nil
}

// fakeSender records outgoing mail
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "email-" + uuid.NewString()[:8], nil
}

func (f *fakeSender) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

var errBoom = errors.New("boom")

// newTestStore returns a session store on a fresh miniredis
func newTestStore(t *testing.T) session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewRedisStore(client, session.LanguageGerman)
}
