package model

import (
	"encoding/json"
	"sort"

	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
)

const (
	TableItemColumns     = 9
	TableMetadataColumns = 3
)

type TableItem struct {
	TransactionVersion     int64           `db:"transaction_version"`
	WriteSetChangeIndex    int64           `db:"write_set_change_index"`
	TransactionBlockHeight int64           `db:"transaction_block_height"`
	Handle                 string          `db:"table_handle"`
	Key                    string          `db:"key"`
	DecodedKey             json.RawMessage `db:"decoded_key"`
	DecodedValue           json.RawMessage `db:"decoded_value"`
	IsDeleted              bool            `db:"is_deleted"`
	StateKeyHash           string          `db:"state_key_hash"`
}

type TableMetadata struct {
	Handle    string `db:"handle"`
	KeyType   string `db:"key_type"`
	ValueType string `db:"value_type"`
}

// TableItemsFromProto walks the write set of one transaction and extracts
// every table item write and delete, plus the key/value type metadata of
// written handles. Metadata is only known for writes; deletes carry no type
// information.
func TableItemsFromProto(txn *transactionv1.Transaction) ([]*TableItem, map[string]*TableMetadata) {
	changes := txn.GetInfo().GetChanges()
	var items []*TableItem
	metadata := make(map[string]*TableMetadata)

	for i, change := range changes {
		switch c := change.Change.(type) {
		case *transactionv1.WriteSetChange_WriteTableItem:
			wti := c.WriteTableItem
			data := wti.GetData()
			items = append(items, &TableItem{
				TransactionVersion:     int64(txn.GetVersion()),
				WriteSetChangeIndex:    int64(i),
				TransactionBlockHeight: int64(txn.GetBlockHeight()),
				Handle:                 wti.GetHandle(),
				Key:                    wti.GetKey(),
				DecodedKey:             json.RawMessage(data.GetKey()),
				DecodedValue:           json.RawMessage(data.GetValue()),
				IsDeleted:              false,
				StateKeyHash:           hexAddr(wti.GetStateKeyHash()),
			})
			metadata[wti.GetHandle()] = &TableMetadata{
				Handle:    wti.GetHandle(),
				KeyType:   data.GetKeyType(),
				ValueType: data.GetValueType(),
			}
		case *transactionv1.WriteSetChange_DeleteTableItem:
			dti := c.DeleteTableItem
			items = append(items, &TableItem{
				TransactionVersion:     int64(txn.GetVersion()),
				WriteSetChangeIndex:    int64(i),
				TransactionBlockHeight: int64(txn.GetBlockHeight()),
				Handle:                 dti.GetHandle(),
				Key:                    dti.GetKey(),
				DecodedKey:             json.RawMessage(dti.GetData().GetKey()),
				IsDeleted:              true,
				StateKeyHash:           hexAddr(dti.GetStateKeyHash()),
			})
		}
	}
	return items, metadata
}

// SortTableMetadata flattens a handle-keyed metadata map into rows ordered
// by handle, so concurrent upserts lock rows in a stable order.
func SortTableMetadata(metadata map[string]*TableMetadata) []*TableMetadata {
	rows := make([]*TableMetadata, 0, len(metadata))
	for _, m := range metadata {
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Handle < rows[j].Handle })
	return rows
}

func (ti *TableItem) Sanitize() {
	ti.Key = sanitizeString(ti.Key)
	ti.DecodedKey = sanitizeJSON(ti.DecodedKey)
	ti.DecodedValue = sanitizeJSON(ti.DecodedValue)
}

func (tm *TableMetadata) Sanitize() {
	tm.KeyType = sanitizeString(tm.KeyType)
	tm.ValueType = sanitizeString(tm.ValueType)
}
