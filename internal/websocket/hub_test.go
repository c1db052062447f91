package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	march    = domain.Period{Year: 2024, Month: 3}
	february = domain.Period{Year: 2024, Month: 2}
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	period   domain.Period
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, period domain.Period) *mockClient {
	return &mockClient{
		id:       id,
		period:   period,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) Period() domain.Period {
	return m.period
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", march)
	client2 := newMockClient("client-2", march)
	client3 := newMockClient("client-3", february)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(march))
	assert.Equal(t, 1, hub.ClientCount(february))
	assert.Equal(t, 0, hub.ClientCount(domain.Period{Year: 2023, Month: 1}))
	assert.Equal(t, 3, hub.TotalClientCount())

	assert.False(t, hub.Unregister(client1))
	assert.Equal(t, 1, hub.ClientCount(march))

	// Last client of each period
	assert.True(t, hub.Unregister(client2))
	assert.True(t, hub.Unregister(client3))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_PeriodIsolation(t *testing.T) {
	hub := NewHub()

	marchA := newMockClient("client-1a", march)
	marchB := newMockClient("client-1b", march)
	feb := newMockClient("client-2", february)

	hub.Register(marchA)
	hub.Register(marchB)
	hub.Register(feb)

	hub.Broadcast(march, LedgerChanged(&domain.PeriodSummary{Period: march}))

	assert.Len(t, marchA.GetMessages(), 1, "marchA should receive 1 message")
	assert.Len(t, marchB.GetMessages(), 1, "marchB should receive 1 message")
	assert.Len(t, feb.GetMessages(), 0, "february client should not receive march events")
}

func TestHub_SendTo(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1", march)
	other := newMockClient("client-2", march)
	hub.Register(client)
	hub.Register(other)

	hub.SendTo(client, LedgerSnapshot(&domain.PeriodSummary{Period: march}))

	assert.Len(t, client.GetMessages(), 1)
	assert.Empty(t, other.GetMessages())
}

func TestHub_BroadcastToClosedClient(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1", march)
	hub.Register(client)
	require.NoError(t, client.Close())

	require.NotPanics(t, func() {
		hub.Broadcast(march, LedgerChanged(&domain.PeriodSummary{Period: march}))
	})
	assert.Empty(t, client.GetMessages())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50
	periods := []domain.Period{
		{Year: 2024, Month: 1}, {Year: 2024, Month: 2}, {Year: 2024, Month: 3},
		{Year: 2024, Month: 4}, {Year: 2024, Month: 5},
	}

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), periods[i%len(periods)])
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			period := periods[idx%len(periods)]
			hub.Broadcast(period, LedgerChanged(&domain.PeriodSummary{Period: period}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	for _, period := range periods {
		assert.Equal(t, 0, hub.ClientCount(period))
	}
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1", march)

	require.NotPanics(t, func() {
		assert.False(t, hub.Unregister(client))
	})
}

func TestHub_BroadcastToEmptyPeriod(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast(march, LedgerChanged(&domain.PeriodSummary{Period: march}))
	})
}
