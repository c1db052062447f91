package tablestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTable is an in-memory stand-in for a single table
type fakeTable struct {
	mu           sync.Mutex
	entities     map[string]map[string]any
	transactions int
}

func newFakeTable() *fakeTable {
	return &fakeTable{entities: make(map[string]map[string]any)}
}

func notFoundError() error {
	req := &http.Request{Method: http.MethodDelete, URL: &url.URL{Scheme: "http", Host: "localhost"}}
	return &azcore.ResponseError{
		ErrorCode:   "ResourceNotFound",
		StatusCode:  http.StatusNotFound,
		RawResponse: &http.Response{StatusCode: http.StatusNotFound, Request: req},
	}
}

func entityID(pk, rk string) string {
	return pk + "|" + rk
}

func (f *fakeTable) AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error) {
	var parsed map[string]any
	if err := json.Unmarshal(entity, &parsed); err != nil {
		return aztables.AddEntityResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entities[entityID(parsed["PartitionKey"].(string), parsed["RowKey"].(string))] = parsed
	return aztables.AddEntityResponse{}, nil
}

func (f *fakeTable) UpdateEntity(ctx context.Context, entity []byte, options *aztables.UpdateEntityOptions) (aztables.UpdateEntityResponse, error) {
	var parsed map[string]any
	if err := json.Unmarshal(entity, &parsed); err != nil {
		return aztables.UpdateEntityResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := entityID(parsed["PartitionKey"].(string), parsed["RowKey"].(string))
	if _, ok := f.entities[id]; !ok {
		return aztables.UpdateEntityResponse{}, notFoundError()
	}
	f.entities[id] = parsed
	return aztables.UpdateEntityResponse{}, nil
}

func (f *fakeTable) DeleteEntity(ctx context.Context, partitionKey string, rowKey string, options *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := entityID(partitionKey, rowKey)
	if _, ok := f.entities[id]; !ok {
		return aztables.DeleteEntityResponse{}, notFoundError()
	}
	delete(f.entities, id)
	return aztables.DeleteEntityResponse{}, nil
}

func (f *fakeTable) NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse] {
	partition := strings.TrimSuffix(strings.TrimPrefix(*options.Filter, "PartitionKey eq '"), "'")

	f.mu.Lock()
	var ids []string
	for id := range f.entities {
		if strings.HasPrefix(id, partition+"|") {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	var page [][]byte
	for _, id := range ids {
		data, _ := json.Marshal(f.entities[id])
		page = append(page, data)
	}
	f.mu.Unlock()

	fetched := false
	return runtime.NewPager(runtime.PagingHandler[aztables.ListEntitiesResponse]{
		More: func(aztables.ListEntitiesResponse) bool { return !fetched },
		Fetcher: func(ctx context.Context, _ *aztables.ListEntitiesResponse) (aztables.ListEntitiesResponse, error) {
			fetched = true
			return aztables.ListEntitiesResponse{Entities: page}, nil
		},
	})
}

func (f *fakeTable) SubmitTransaction(ctx context.Context, actions []aztables.TransactionAction, options *aztables.SubmitTransactionOptions) (aztables.TransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions++
	for _, action := range actions {
		var parsed map[string]string
		if err := json.Unmarshal(action.Entity, &parsed); err != nil {
			return aztables.TransactionResponse{}, err
		}
		if action.ActionType == aztables.TransactionTypeDelete {
			delete(f.entities, entityID(parsed["PartitionKey"], parsed["RowKey"]))
		}
	}
	return aztables.TransactionResponse{}, nil
}

func newTestBackend() (*Backend, map[domain.Collection]*fakeTable) {
	fakes := make(map[domain.Collection]*fakeTable)
	tables := make(map[domain.Collection]tableClient)
	for _, c := range domain.Collections {
		fakes[c] = newFakeTable()
		tables[c] = fakes[c]
	}
	return &Backend{tables: tables}, fakes
}

var period = domain.Period{Year: 2024, Month: 3}

func TestBackend_InsertStoresDocumentShape(t *testing.T) {
	backend, fakes := newTestBackend()
	ctx := context.Background()

	require.NoError(t, backend.Insert(ctx, domain.NewScope(period, domain.CollectionCategories),
		domain.Record{Key: "c1", Label: "Food", Amount: decimal.NewFromInt(200)}))

	entity := fakes[domain.CollectionCategories].entities[entityID("2024-03", "c1")]
	require.NotNil(t, entity)
	assert.Equal(t, "Food", entity["Name"])
	assert.Equal(t, float64(200), entity["Budget"])
	_, hasCategoryKey := entity["CategoryKey"]
	assert.False(t, hasCategoryKey)
}

func TestBackend_ListDecodesRecords(t *testing.T) {
	backend, _ := newTestBackend()
	ctx := context.Background()
	scope := domain.NewScope(period, domain.CollectionExpense)

	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "b", Label: "Rent", Amount: decimal.NewFromInt(500)}))
	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "a", Label: "Lunch", Amount: decimal.RequireFromString("15.10"), CategoryKey: "c1"}))
	require.NoError(t, backend.Insert(ctx, domain.NewScope(domain.Period{Year: 2024, Month: 4}, domain.CollectionExpense), domain.Record{Key: "z", Label: "Other"}))

	records, err := backend.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, "15.10", records[0].Amount.StringFixed(2))
	assert.Equal(t, "c1", records[0].CategoryKey)
	assert.Equal(t, "Rent", records[1].Label)
}

func TestBackend_ReplaceMissing(t *testing.T) {
	backend, _ := newTestBackend()

	err := backend.Replace(context.Background(), domain.NewScope(period, domain.CollectionIncome), domain.Record{Key: "missing"})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestBackend_DeleteMissingIsNoOp(t *testing.T) {
	backend, _ := newTestBackend()
	ctx := context.Background()
	scope := domain.NewScope(period, domain.CollectionIncome)

	require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: "a", Label: "Salary"}))
	require.NoError(t, backend.Delete(ctx, scope, "a"))
	require.NoError(t, backend.Delete(ctx, scope, "a"))
}

func TestBackend_DeleteAllBatches(t *testing.T) {
	backend, fakes := newTestBackend()
	ctx := context.Background()
	scope := domain.NewScope(period, domain.CollectionIncome)

	for i := 0; i < 150; i++ {
		key := string(rune('a'+i%26)) + decimal.NewFromInt(int64(i)).String()
		require.NoError(t, backend.Insert(ctx, scope, domain.Record{Key: key, Label: "x"}))
	}

	require.NoError(t, backend.DeleteAll(ctx, scope))

	records, err := backend.List(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 2, fakes[domain.CollectionIncome].transactions)
}

func TestDecodeEntity_MissingRowKey(t *testing.T) {
	_, err := decodeEntity(domain.CollectionIncome, []byte(`{"Source":"x"}`))
	assert.Error(t, err)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "ledgercategories", TableName("ledger", domain.CollectionCategories))
}
