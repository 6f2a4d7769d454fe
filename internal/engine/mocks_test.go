package engine

import (
	"context"
	"sync"

	"github.com/cadstack/cadhoard/internal/model"
)

// mockStore is an in-memory CatalogStore. Appends persist immediately;
// the batching behavior itself is covered by the storage package.
type mockStore struct {
	mu      sync.Mutex
	records []model.CatalogRecord

	appendErr   error
	loadErr     error
	flushErr    error
	flushCalls  int
	appendCalls int
}

func (m *mockStore) Append(_ context.Context, record *model.CatalogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *mockStore) FlushIfDue(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushErr
}

func (m *mockStore) Flush(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushCalls++
	return m.flushErr
}

func (m *mockStore) LoadExisting(context.Context) ([]model.CatalogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]model.CatalogRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *mockStore) UpdateLocation(_ context.Context, locator, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].Locator == locator {
			m.records[i].Location = location
		}
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

// mockResolver scripts Resolve behavior and records calls.
type mockResolver struct {
	mu sync.Mutex

	statusErr error
	resolveFn func(ctx context.Context, locator string) (string, error)

	resolveCalls int
	resolved     []string
}

func (m *mockResolver) Status(context.Context) error { return m.statusErr }

func (m *mockResolver) Resolve(ctx context.Context, locator string) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.resolved = append(m.resolved, locator)
	fn := m.resolveFn
	m.mu.Unlock()

	if fn == nil {
		return "", nil
	}
	return fn(ctx, locator)
}

func (m *mockResolver) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// mockSource serves fixed pages of releases.
type mockSource struct {
	pages    [][]model.Release
	fetchErr map[int]error

	fetched []int
}

func (m *mockSource) FetchPage(_ context.Context, page int) ([]model.Release, bool, error) {
	m.fetched = append(m.fetched, page)
	if err, ok := m.fetchErr[page]; ok {
		return nil, false, err
	}
	if page < 1 || page > len(m.pages) {
		return nil, false, nil
	}
	return m.pages[page-1], page < len(m.pages), nil
}
