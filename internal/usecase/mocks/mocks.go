package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
)

// MockTxManager is an in-memory TransactionManager. Begin takes a mutex
// that is held until Commit or Rollback, which serializes transactions the
// way row locks do in the real store and makes concurrency tests
// meaningful.
type MockTxManager struct {
	mu sync.Mutex
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	m.mu.Lock()
	return &MockTx{release: m.mu.Unlock}, nil
}

// MockTx is the transaction handle issued by MockTxManager.
type MockTx struct {
	release func()
	done    bool
	mu      sync.Mutex
}

func (t *MockTx) Commit(ctx context.Context) error {
	t.finish()
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	t.finish()
	return nil
}

func (t *MockTx) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.done = true
		t.release()
	}
}

// MockAccountRepository is an in-memory AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance int64, updatedAt time.Time) error
	ListExpiryDueFunc    func(ctx context.Context, today time.Time) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *account
	m.accounts[account.ID] = &clone
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if account, ok := m.accounts[id]; ok {
		clone := *account
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Balance = balance
	account.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) UpdateExpiryDate(ctx context.Context, tx usecase.Transaction, id string, expiryDate time.Time, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.ExpiryDate = &expiryDate
	account.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) ListExpiryDue(ctx context.Context, today time.Time) ([]*domain.Account, error) {
	if m.ListExpiryDueFunc != nil {
		return m.ListExpiryDueFunc(ctx, today)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var due []*domain.Account
	for _, account := range m.accounts {
		if account.ExpiryDue(today) {
			clone := *account
			due = append(due, &clone)
		}
	}
	sortAccounts(due)
	return due, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]*domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		clone := *account
		all = append(all, &clone)
	}
	sortAccounts(all)
	return page(all, limit, offset), nil
}

func sortAccounts(accounts []*domain.Account) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
}

// MockTransactionRepository is an in-memory TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions []*domain.Transaction

	CreateFunc func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *txn
	m.transactions = append(m.transactions, &clone)
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for i := len(m.transactions) - 1; i >= 0; i-- { // newest first
		if m.transactions[i].AccountID == accountID {
			clone := *m.transactions[i]
			out = append(out, &clone)
		}
	}
	return page(out, limit, offset), nil
}

func (m *MockTransactionRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, txn := range m.transactions {
		if txn.AccountID == accountID {
			sum += txn.Amount
		}
	}
	return sum, nil
}

func (m *MockTransactionRepository) SumByAccountKind(ctx context.Context, accountID string, kind domain.TransactionKind) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, txn := range m.transactions {
		if txn.AccountID == accountID && txn.Kind == kind {
			sum += txn.Amount
		}
	}
	return sum, nil
}

// All returns every stored transaction, for invariant assertions.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.transactions))
	for _, txn := range m.transactions {
		clone := *txn
		out = append(out, &clone)
	}
	return out
}

// MockRequestRepository is an in-memory RequestRepository.
type MockRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.ServiceRequest
	order    []string

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, request *domain.ServiceRequest) error
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, from, to domain.RequestStatus) (bool, error)
	ListOpenFunc     func(ctx context.Context) ([]*domain.ServiceRequest, error)
}

func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{requests: make(map[string]*domain.ServiceRequest)}
}

func (m *MockRequestRepository) Create(ctx context.Context, tx usecase.Transaction, request *domain.ServiceRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, request)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *request
	m.requests[request.ID] = &clone
	m.order = append(m.order, request.ID)
	return nil
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if request, ok := m.requests[id]; ok {
		clone := *request
		return &clone, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (m *MockRequestRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ServiceRequest, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRequestRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.RequestStatus) (bool, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != from {
		return false, nil
	}
	request.Status = to
	return true, nil
}

func (m *MockRequestRepository) ListOpen(ctx context.Context) ([]*domain.ServiceRequest, error) {
	if m.ListOpenFunc != nil {
		return m.ListOpenFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var open []*domain.ServiceRequest
	for _, id := range m.order {
		if request := m.requests[id]; !request.Status.Terminal() {
			clone := *request
			open = append(open, &clone)
		}
	}
	return open, nil
}

func (m *MockRequestRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ServiceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ServiceRequest
	for i := len(m.order) - 1; i >= 0; i-- { // newest first
		if request := m.requests[m.order[i]]; request.AccountID == accountID {
			clone := *request
			out = append(out, &clone)
		}
	}
	return page(out, limit, offset), nil
}

func (m *MockRequestRepository) CountByStatus(ctx context.Context, accountID string) (map[domain.RequestStatus]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.RequestStatus]int64)
	for _, request := range m.requests {
		if request.AccountID == accountID {
			counts[request.Status]++
		}
	}
	return counts, nil
}

// MockIDGenerator returns sequential IDs unless GenerateFunc is set.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "id-" + strconv.Itoa(m.next)
}

// MockNotificationSink records every message it is asked to send.
type MockNotificationSink struct {
	mu   sync.Mutex
	sent []SentMessage

	SendFunc func(ctx context.Context, contact, message string) error
}

// SentMessage is one recorded notification.
type SentMessage struct {
	Contact string
	Message string
}

func NewMockNotificationSink() *MockNotificationSink {
	return &MockNotificationSink{}
}

func (m *MockNotificationSink) Send(ctx context.Context, contact, message string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, contact, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMessage{Contact: contact, Message: message})
	return nil
}

// Sent returns the messages recorded so far.
func (m *MockNotificationSink) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// MockClock is a settable clock.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to an absolute time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
