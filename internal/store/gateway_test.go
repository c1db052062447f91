package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/dafibh/ledger/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPeriod = domain.Period{Year: 2024, Month: 3}

func newTestGateway() *Gateway {
	g := NewGateway(memory.New())
	var mu sync.Mutex
	n := 0
	g.newKey = func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("key-%04d", n), nil
	}
	return g
}

// recorder captures every list delivered to a subscriber
type recorder struct {
	mu    sync.Mutex
	lists [][]domain.Record
}

func (r *recorder) onChange(records []domain.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, records)
}

func (r *recorder) last() []domain.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lists) == 0 {
		return nil
	}
	return r.lists[len(r.lists)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists)
}

func TestGateway_AddAndList(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionIncome)

	key1, err := g.Add(ctx, scope, domain.Record{Label: "Salary", Amount: decimal.NewFromInt(3000)})
	require.NoError(t, err)
	key2, err := g.Add(ctx, scope, domain.Record{Label: "Bonus", Amount: decimal.RequireFromString("250.50")})
	require.NoError(t, err)

	records, err := g.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, key1, records[0].Key)
	assert.Equal(t, key2, records[1].Key)
	assert.Equal(t, "Bonus", records[1].Label)
}

func TestGateway_ScopesAreIsolated(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	_, err := g.Add(ctx, domain.NewScope(testPeriod, domain.CollectionIncome), domain.Record{Label: "Salary"})
	require.NoError(t, err)

	other, err := g.List(ctx, domain.NewScope(domain.Period{Year: 2024, Month: 4}, domain.CollectionIncome))
	require.NoError(t, err)
	assert.Empty(t, other)

	expenses, err := g.List(ctx, domain.NewScope(testPeriod, domain.CollectionExpense))
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestGateway_Update(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionExpense)

	key, err := g.Add(ctx, scope, domain.Record{Label: "Lunch", Amount: decimal.NewFromInt(15)})
	require.NoError(t, err)

	err = g.Update(ctx, scope, key, domain.Record{Label: "Dinner", Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)

	records, err := g.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, key, records[0].Key)
	assert.Equal(t, "Dinner", records[0].Label)
}

func TestGateway_UpdateMissingKey(t *testing.T) {
	g := newTestGateway()
	scope := domain.NewScope(testPeriod, domain.CollectionExpense)

	err := g.Update(context.Background(), scope, "missing", domain.Record{Label: "Lunch"})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestGateway_DeleteTwiceIsNoOp(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionIncome)

	key, err := g.Add(ctx, scope, domain.Record{Label: "Salary"})
	require.NoError(t, err)

	require.NoError(t, g.Delete(ctx, scope, key))
	require.NoError(t, g.Delete(ctx, scope, key))

	records, err := g.List(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGateway_DeleteAll(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionCategories)

	for _, name := range []string{"Food", "Rent", "Fun"} {
		_, err := g.Add(ctx, scope, domain.Record{Label: name})
		require.NoError(t, err)
	}

	require.NoError(t, g.DeleteAll(ctx, scope))

	records, err := g.List(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGateway_InvalidScope(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	_, err := g.Add(ctx, domain.NewScope(testPeriod, "savings"), domain.Record{})
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)

	_, err = g.List(ctx, domain.NewScope(domain.Period{Year: 2024, Month: 0}, domain.CollectionIncome))
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestGateway_SubscribeDeliversInitialAndChanges(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionIncome)

	_, err := g.Add(ctx, scope, domain.Record{Label: "Salary"})
	require.NoError(t, err)

	rec := &recorder{}
	unsubscribe, err := g.Subscribe(ctx, scope, rec.onChange)
	require.NoError(t, err)
	defer unsubscribe()

	// Initial delivery happens before Subscribe returns
	require.Equal(t, 1, rec.count())
	assert.Len(t, rec.last(), 1)

	key, err := g.Add(ctx, scope, domain.Record{Label: "Bonus"})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.count())
	assert.Len(t, rec.last(), 2)

	require.NoError(t, g.Delete(ctx, scope, key))
	assert.Equal(t, 3, rec.count())
	assert.Len(t, rec.last(), 1)
	assert.Equal(t, "Salary", rec.last()[0].Label)
}

func TestGateway_SubscribeIgnoresOtherScopes(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	rec := &recorder{}
	unsubscribe, err := g.Subscribe(ctx, domain.NewScope(testPeriod, domain.CollectionIncome), rec.onChange)
	require.NoError(t, err)
	defer unsubscribe()

	_, err = g.Add(ctx, domain.NewScope(testPeriod, domain.CollectionExpense), domain.Record{Label: "Lunch"})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.count())
}

func TestGateway_Unsubscribe(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionIncome)

	rec := &recorder{}
	unsubscribe, err := g.Subscribe(ctx, scope, rec.onChange)
	require.NoError(t, err)
	assert.Equal(t, 1, g.SubscriberCount(scope))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, g.SubscriberCount(scope))

	_, err = g.Add(ctx, scope, domain.Record{Label: "Salary"})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count())
}

func TestGateway_SubscriberReceivesCopies(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionIncome)

	first := &recorder{}
	second := &recorder{}
	unsub1, err := g.Subscribe(ctx, scope, first.onChange)
	require.NoError(t, err)
	defer unsub1()
	unsub2, err := g.Subscribe(ctx, scope, second.onChange)
	require.NoError(t, err)
	defer unsub2()

	_, err = g.Add(ctx, scope, domain.Record{Label: "Salary"})
	require.NoError(t, err)

	first.last()[0].Label = "changed"
	assert.Equal(t, "Salary", second.last()[0].Label)
}

func TestGateway_LoadPeriod(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	_, err := g.Add(ctx, domain.NewScope(testPeriod, domain.CollectionIncome), domain.Record{Label: "Salary"})
	require.NoError(t, err)
	_, err = g.Add(ctx, domain.NewScope(testPeriod, domain.CollectionExpense), domain.Record{Label: "Lunch"})
	require.NoError(t, err)
	_, err = g.Add(ctx, domain.NewScope(testPeriod, domain.CollectionExpense), domain.Record{Label: "Rent"})
	require.NoError(t, err)

	loaded, err := g.LoadPeriod(ctx, testPeriod)
	require.NoError(t, err)
	assert.Len(t, loaded.Incomes, 1)
	assert.Len(t, loaded.Expenses, 2)
	assert.Empty(t, loaded.Categories)
}

// watchingBackend reports a single external change then waits for cancellation
type watchingBackend struct {
	*memory.Backend
	changed domain.Scope
}

func (w *watchingBackend) Watch(ctx context.Context, fn func(domain.Scope)) error {
	fn(w.changed)
	<-ctx.Done()
	return ctx.Err()
}

func TestGateway_WatchRefreshesSubscribers(t *testing.T) {
	scope := domain.NewScope(testPeriod, domain.CollectionIncome)
	backend := &watchingBackend{Backend: memory.New(), changed: scope}
	g := NewGateway(backend)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	unsubscribe, err := g.Subscribe(ctx, scope, rec.onChange)
	require.NoError(t, err)
	defer unsubscribe()

	// Simulate a write from another process
	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "external", Label: "Gift"}))

	done := make(chan error, 1)
	go func() { done <- g.Watch(ctx) }()

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Gift", rec.last()[0].Label)

	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))
}

func TestGateway_WatchWithoutWatcher(t *testing.T) {
	g := newTestGateway()
	assert.NoError(t, g.Watch(context.Background()))
}

// stallingBackend holds the first List after reading so a write can land
// between the read and the subscriber registration
type stallingBackend struct {
	*memory.Backend
	listed   chan struct{}
	release  chan struct{}
	inserted chan struct{}
	once     sync.Once
}

func (s *stallingBackend) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	records, err := s.Backend.List(ctx, scope)
	s.once.Do(func() {
		close(s.listed)
		<-s.release
	})
	return records, err
}

func (s *stallingBackend) Insert(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	err := s.Backend.Insert(ctx, scope, rec)
	close(s.inserted)
	return err
}

func TestGateway_SubscribeDoesNotMissConcurrentAdd(t *testing.T) {
	backend := &stallingBackend{
		Backend:  memory.New(),
		listed:   make(chan struct{}),
		release:  make(chan struct{}),
		inserted: make(chan struct{}),
	}
	g := NewGateway(backend)
	ctx := context.Background()
	scope := domain.NewScope(testPeriod, domain.CollectionIncome)

	rec := &recorder{}
	subscribed := make(chan func(), 1)
	go func() {
		unsubscribe, err := g.Subscribe(ctx, scope, rec.onChange)
		assert.NoError(t, err)
		subscribed <- unsubscribe
	}()
	<-backend.listed

	added := make(chan error, 1)
	go func() {
		_, err := g.Add(ctx, scope, domain.Record{Label: "Salary", Amount: decimal.NewFromInt(10)})
		added <- err
	}()
	<-backend.inserted
	close(backend.release)

	unsubscribe := <-subscribed
	defer unsubscribe()
	require.NoError(t, <-added)

	stored, err := g.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Len(t, rec.last(), 1)
	assert.Equal(t, "Salary", rec.last()[0].Label)
}

// brokenListBackend fails List for a single collection
type brokenListBackend struct {
	*memory.Backend
	failOn domain.Collection
}

func (b *brokenListBackend) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	if scope.Collection == b.failOn {
		return nil, errors.New("table unavailable")
	}
	return b.Backend.List(ctx, scope)
}

func TestGateway_LoadPeriodFailure(t *testing.T) {
	g := NewGateway(&brokenListBackend{Backend: memory.New(), failOn: domain.CollectionExpense})

	loaded, err := g.LoadPeriod(context.Background(), testPeriod)
	assert.Nil(t, loaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024/03/expense")
	assert.Contains(t, err.Error(), "table unavailable")
}
