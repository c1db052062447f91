// Package tablestore stores ledger records as documents in Azure Table Storage.
// Each collection is a table, each period a partition and each record a row.
package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/dafibh/ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// maxBatchSize is the entity group transaction limit of the table service
const maxBatchSize = 100

// tableClient is the subset of *aztables.Client the backend uses
type tableClient interface {
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	UpdateEntity(ctx context.Context, entity []byte, options *aztables.UpdateEntityOptions) (aztables.UpdateEntityResponse, error)
	DeleteEntity(ctx context.Context, partitionKey string, rowKey string, options *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error)
	NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
	SubmitTransaction(ctx context.Context, actions []aztables.TransactionAction, options *aztables.SubmitTransactionOptions) (aztables.TransactionResponse, error)
}

// Backend implements store.Backend on Azure Table Storage
type Backend struct {
	tables map[domain.Collection]tableClient
}

// New connects to the table service at serviceURL and ensures the three
// collection tables exist. Plain http URLs use the Azurite development account.
func New(ctx context.Context, serviceURL, tablePrefix string) (*Backend, error) {
	var client *aztables.ServiceClient

	if isLocal(serviceURL) {
		log.Info().Msg("Using Azurite credentials for table service")
		cred, err := aztables.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	tables := make(map[domain.Collection]tableClient, len(domain.Collections))
	for _, collection := range domain.Collections {
		name := TableName(tablePrefix, collection)
		if err := createTable(ctx, client, name); err != nil {
			return nil, err
		}
		tables[collection] = client.NewClient(name)
	}

	log.Info().Str("table_url", serviceURL).Str("table_prefix", tablePrefix).Msg("Table storage backend initialized")
	return &Backend{tables: tables}, nil
}

// TableName returns the table holding collection
func TableName(prefix string, collection domain.Collection) string {
	return prefix + string(collection)
}

func createTable(ctx context.Context, client *aztables.ServiceClient, name string) error {
	_, err := client.CreateTable(ctx, name, nil)
	if err != nil {
		// Ignore error if table already exists
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

func (b *Backend) table(scope domain.Scope) (tableClient, error) {
	client, ok := b.tables[scope.Collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCollection, scope.Collection)
	}
	return client, nil
}

// Insert stores rec as a new entity
func (b *Backend) Insert(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	client, err := b.table(scope)
	if err != nil {
		return err
	}

	entity, err := encodeEntity(scope, rec)
	if err != nil {
		return err
	}
	if _, err := client.AddEntity(ctx, entity, nil); err != nil {
		return fmt.Errorf("add entity: %w", err)
	}
	return nil
}

// Replace overwrites an existing entity
func (b *Backend) Replace(ctx context.Context, scope domain.Scope, rec domain.Record) error {
	client, err := b.table(scope)
	if err != nil {
		return err
	}

	entity, err := encodeEntity(scope, rec)
	if err != nil {
		return err
	}
	_, err = client.UpdateEntity(ctx, entity, &aztables.UpdateEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrRecordNotFound
		}
		return fmt.Errorf("update entity: %w", err)
	}
	return nil
}

// Delete removes the entity stored under key; a missing entity is not an error
func (b *Backend) Delete(ctx context.Context, scope domain.Scope, key string) error {
	client, err := b.table(scope)
	if err != nil {
		return err
	}

	_, err = client.DeleteEntity(ctx, scope.Period.PartitionKey(), key, nil)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete entity: %w", err)
	}
	return nil
}

// DeleteAll removes every entity of the scope's partition in batches
func (b *Backend) DeleteAll(ctx context.Context, scope domain.Scope) error {
	client, err := b.table(scope)
	if err != nil {
		return err
	}

	keys, err := b.listKeys(ctx, client, scope)
	if err != nil {
		return err
	}

	partitionKey := scope.Period.PartitionKey()
	batch := make([]aztables.TransactionAction, 0, len(keys))
	for _, key := range keys {
		batch = append(batch, aztables.TransactionAction{
			ActionType: aztables.TransactionTypeDelete,
			Entity:     keyEntity(partitionKey, key),
		})
	}

	for i := 0; i < len(batch); i += maxBatchSize {
		end := min(i+maxBatchSize, len(batch))
		if _, err := client.SubmitTransaction(ctx, batch[i:end], nil); err != nil {
			return fmt.Errorf("delete batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// List returns the entities of the scope's partition ordered by row key
func (b *Backend) List(ctx context.Context, scope domain.Scope) ([]domain.Record, error) {
	client, err := b.table(scope)
	if err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("PartitionKey eq '%s'", scope.Period.PartitionKey())
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
	})

	records := []domain.Record{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities: %w", err)
		}
		for _, entity := range resp.Entities {
			rec, err := decodeEntity(scope.Collection, entity)
			if err != nil {
				log.Warn().Err(err).Str("scope", scope.Path()).Msg("Skipping unreadable entity")
				continue
			}
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

func (b *Backend) listKeys(ctx context.Context, client tableClient, scope domain.Scope) ([]string, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s'", scope.Period.PartitionKey())
	selectFields := "RowKey"
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
		Select: &selectFields,
	})

	var keys []string
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing entities: %w", err)
		}
		for _, entity := range resp.Entities {
			var parsed map[string]any
			if err := json.Unmarshal(entity, &parsed); err != nil {
				continue
			}
			if rk, ok := parsed["RowKey"].(string); ok {
				keys = append(keys, rk)
			}
		}
	}
	return keys, nil
}

// Close is a no-op; the SDK clients hold no resources that need releasing
func (b *Backend) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound
}
