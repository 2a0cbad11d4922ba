package model

import (
	"encoding/json"

	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
)

const EventColumns = 9

// maxIndexedTypeLength bounds the btree-indexed copy of the event type.
const maxIndexedTypeLength = 300

type Event struct {
	TransactionVersion     int64           `db:"transaction_version"`
	EventIndex             int64           `db:"event_index"`
	AccountAddress         string          `db:"account_address"`
	CreationNumber         int64           `db:"creation_number"`
	SequenceNumber         int64           `db:"sequence_number"`
	TransactionBlockHeight int64           `db:"transaction_block_height"`
	Type                   string          `db:"type"`
	Data                   json.RawMessage `db:"data"`
	IndexedType            string          `db:"indexed_type"`
}

// EventsFromProto extracts the emitted events of one transaction. State
// checkpoints and block epilogues never carry events and yield nil.
func EventsFromProto(txn *transactionv1.Transaction) []*Event {
	var raw []*transactionv1.Event
	switch data := txn.TxnData.(type) {
	case *transactionv1.Transaction_User:
		raw = data.User.GetEvents()
	case *transactionv1.Transaction_Genesis:
		raw = data.Genesis.GetEvents()
	case *transactionv1.Transaction_BlockMetadata:
		raw = data.BlockMetadata.GetEvents()
	case *transactionv1.Transaction_Validator:
		raw = data.Validator.GetEvents()
	}
	if len(raw) == 0 {
		return nil
	}

	events := make([]*Event, 0, len(raw))
	for i, ev := range raw {
		events = append(events, &Event{
			TransactionVersion:     int64(txn.GetVersion()),
			EventIndex:             int64(i),
			AccountAddress:         standardizeAddress(ev.GetKey().GetAccountAddress()),
			CreationNumber:         int64(ev.GetKey().GetCreationNumber()),
			SequenceNumber:         int64(ev.GetSequenceNumber()),
			TransactionBlockHeight: int64(txn.GetBlockHeight()),
			Type:                   ev.GetTypeStr(),
			Data:                   json.RawMessage(ev.GetData()),
			IndexedType:            truncate(ev.GetTypeStr(), maxIndexedTypeLength),
		})
	}
	return events
}

func (e *Event) Sanitize() {
	e.Type = sanitizeString(e.Type)
	e.Data = sanitizeJSON(e.Data)
	e.IndexedType = sanitizeString(e.IndexedType)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
