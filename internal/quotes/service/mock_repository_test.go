package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/repository"
	"sirkap_backend/platform/apperr"

	"github.com/google/uuid"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockState struct {
	quotes map[uuid.UUID]domain.Quote
}

func (s mockState) clone() mockState {
	out := mockState{quotes: make(map[uuid.UUID]domain.Quote, len(s.quotes))}
	for id, q := range s.quotes {
		out.quotes[id] = cloneQuote(q)
	}
	return out
}

func cloneQuote(q domain.Quote) domain.Quote {
	q.Items = append([]domain.LineItem(nil), q.Items...)
	return q
}

// mockRepository serializes transactions behind one mutex and commits a
// transaction's writes only when fn succeeds.
type mockRepository struct {
	mu    sync.Mutex
	state mockState

	clients map[uuid.UUID]repository.Client
	terms   map[uuid.UUID]repository.TermsProfile
	users   map[uuid.UUID]string
	stats   *repository.Stats

	// Error injection
	insertConflicts int
	insertItemsErr  error
	txCount         int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		state:   mockState{quotes: make(map[uuid.UUID]domain.Quote)},
		clients: make(map[uuid.UUID]repository.Client),
		terms:   make(map[uuid.UUID]repository.TermsProfile),
		users:   make(map[uuid.UUID]string),
	}
}

func (m *mockRepository) addClient(name string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.clients[id] = repository.Client{ID: id, CompanyName: name}
	return id
}

func (m *mockRepository) addQuote(q domain.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now()
	}
	m.state.quotes[q.ID] = cloneQuote(q)
}

func (m *mockRepository) quote(id uuid.UUID) domain.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneQuote(m.state.quotes[id])
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, repository.TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	tx := &mockTxRepo{mock: m, state: m.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.get(id)
}

func (m *mockRepository) HasRevision(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.hasRevision(id), nil
}

func (m *mockRepository) List(ctx context.Context, params repository.ListParams) ([]repository.QuoteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.QuoteSummary
	for _, q := range m.state.quotes {
		if params.Status != nil && q.Status != *params.Status {
			continue
		}
		out = append(out, m.summary(q))
	}
	return out, nil
}

func (m *mockRepository) ListVersions(ctx context.Context, quoteNumber string) ([]repository.QuoteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.QuoteSummary
	for _, q := range m.state.quotes {
		if q.QuoteNumber == quoteNumber {
			out = append(out, m.summary(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber < out[j].VersionNumber })
	return out, nil
}

func (m *mockRepository) summary(q domain.Quote) repository.QuoteSummary {
	return repository.QuoteSummary{
		ID:            q.ID,
		ParentQuoteID: q.ParentQuoteID,
		QuoteNumber:   q.QuoteNumber,
		VersionNumber: q.VersionNumber,
		ClientID:      q.ClientID,
		CompanyName:   m.clients[q.ClientID].CompanyName,
		Status:        q.Status,
		GrandTotal:    q.GrandTotal,
		CreatedBy:     q.CreatedBy,
		HasRevision:   m.state.hasRevision(q.ID),
	}
}

func (m *mockRepository) ListNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.numbers(prefix), nil
}

func (m *mockRepository) Stats(ctx context.Context) (*repository.Stats, error) {
	if m.stats == nil {
		return &repository.Stats{}, nil
	}
	return m.stats, nil
}

func (m *mockRepository) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.clients[id]
	return ok, nil
}

func (m *mockRepository) GetClient(ctx context.Context, id uuid.UUID) (*repository.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, apperr.NotFound("client not found")
	}
	return &c, nil
}

func (m *mockRepository) GetTermsProfile(ctx context.Context, id uuid.UUID) (*repository.TermsProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.terms[id]
	if !ok {
		return nil, apperr.NotFound("terms profile not found")
	}
	return &p, nil
}

func (m *mockRepository) GetUserName(ctx context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.users[id]
	if !ok {
		return "", apperr.NotFound("user not found")
	}
	return name, nil
}

var _ repository.Repository = (*mockRepository)(nil)

func (s mockState) get(id uuid.UUID) (*domain.Quote, error) {
	q, ok := s.quotes[id]
	if !ok {
		return nil, apperr.NotFound("quote not found")
	}
	out := cloneQuote(q)
	return &out, nil
}

func (s mockState) hasRevision(id uuid.UUID) bool {
	for _, q := range s.quotes {
		if q.ParentQuoteID != nil && *q.ParentQuoteID == id {
			return true
		}
	}
	return false
}

func (s mockState) numbers(prefix string) []string {
	var out []string
	for _, q := range s.quotes {
		if strings.HasPrefix(q.QuoteNumber, prefix) {
			out = append(out, q.QuoteNumber)
		}
	}
	return out
}

// ============================================================================
// MOCK TX REPOSITORY
// ============================================================================

type mockTxRepo struct {
	mock  *mockRepository
	state mockState
}

func (t *mockTxRepo) LockNumberPrefix(ctx context.Context, prefix string) error { return nil }

func (t *mockTxRepo) ListNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return t.state.numbers(prefix), nil
}

func (t *mockTxRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	return t.state.get(id)
}

func (t *mockTxRepo) HasRevision(ctx context.Context, id uuid.UUID) (bool, error) {
	return t.state.hasRevision(id), nil
}

func (t *mockTxRepo) InsertQuote(ctx context.Context, q *domain.Quote) error {
	if t.mock.insertConflicts > 0 {
		t.mock.insertConflicts--
		return apperr.Conflict("quote number already exists")
	}
	for _, existing := range t.state.quotes {
		if existing.QuoteNumber == q.QuoteNumber && existing.VersionNumber == q.VersionNumber {
			return apperr.Conflict("quote number already exists")
		}
		if q.ParentQuoteID != nil && existing.ParentQuoteID != nil && *existing.ParentQuoteID == *q.ParentQuoteID {
			return apperr.Conflict(msgRevisionExists)
		}
	}
	now := time.Now()
	q.CreatedAt, q.UpdatedAt = now, now
	stored := cloneQuote(*q)
	stored.Items = nil
	t.state.quotes[q.ID] = stored
	return nil
}

func (t *mockTxRepo) UpdateHeader(ctx context.Context, q *domain.Quote) error {
	stored, ok := t.state.quotes[q.ID]
	if !ok || stored.Status != domain.StatusDraft {
		return apperr.Locked("quote is no longer editable")
	}
	items := stored.Items
	updated := cloneQuote(*q)
	updated.Items = items
	updated.UpdatedAt = time.Now()
	t.state.quotes[q.ID] = updated
	return nil
}

func (t *mockTxRepo) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []domain.LineItem) error {
	return t.InsertItems(ctx, quoteID, items)
}

func (t *mockTxRepo) InsertItems(ctx context.Context, quoteID uuid.UUID, items []domain.LineItem) error {
	q, ok := t.state.quotes[quoteID]
	if !ok {
		return apperr.NotFound("quote not found")
	}
	if t.mock.insertItemsErr != nil && len(items) > 0 {
		// The first row lands before the failure, as a half-written batch would.
		q.Items = append([]domain.LineItem(nil), items[:1]...)
		t.state.quotes[quoteID] = q
		return t.mock.insertItemsErr
	}
	q.Items = append([]domain.LineItem(nil), items...)
	t.state.quotes[quoteID] = q
	return nil
}

func (t *mockTxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error {
	q, ok := t.state.quotes[id]
	if !ok {
		return apperr.NotFound("quote not found")
	}
	if q.Status != from {
		return apperr.Conflict("quote status changed concurrently")
	}
	q.Status = to
	q.UpdatedAt = time.Now()
	t.state.quotes[id] = q
	return nil
}

var _ repository.TxRepository = (*mockTxRepo)(nil)
