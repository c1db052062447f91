package tablestore

import (
	"encoding/json"
	"fmt"

	"github.com/dafibh/ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Entity property names per collection: {Source, Value} for incomes and
// expenses, {Name, Budget} for categories.
func propertyNames(collection domain.Collection) (label, amount string) {
	if collection == domain.CollectionCategories {
		return "Name", "Budget"
	}
	return "Source", "Value"
}

func encodeEntity(scope domain.Scope, rec domain.Record) ([]byte, error) {
	labelProp, amountProp := propertyNames(scope.Collection)

	entity := map[string]any{
		"PartitionKey":             scope.Period.PartitionKey(),
		"RowKey":                   rec.Key,
		labelProp:                  rec.Label,
		amountProp:                 rec.Amount.InexactFloat64(),
		amountProp + "@odata.type": "Edm.Double",
	}
	if scope.Collection == domain.CollectionExpense {
		entity["CategoryKey"] = rec.CategoryKey
	}

	return json.Marshal(entity)
}

func decodeEntity(collection domain.Collection, raw []byte) (domain.Record, error) {
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.Record{}, fmt.Errorf("decode entity: %w", err)
	}

	labelProp, amountProp := propertyNames(collection)

	rec := domain.Record{Amount: decimal.Zero}
	rec.Key, _ = parsed["RowKey"].(string)
	rec.Label, _ = parsed[labelProp].(string)
	rec.CategoryKey, _ = parsed["CategoryKey"].(string)
	if v, ok := parsed[amountProp].(float64); ok {
		rec.Amount = decimal.NewFromFloat(v).Round(domain.MaxDecimalPlaces)
	}

	if rec.Key == "" {
		return domain.Record{}, fmt.Errorf("decode entity: missing RowKey")
	}
	return rec, nil
}

func keyEntity(partitionKey, rowKey string) []byte {
	data, _ := json.Marshal(map[string]string{
		"PartitionKey": partitionKey,
		"RowKey":       rowKey,
	})
	return data
}
