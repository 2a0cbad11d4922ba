package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// LedgerTransactionColumns is the number of columns written per row, used to
// bound multi-row insert chunks under the postgres parameter limit.
const LedgerTransactionColumns = 14

type LedgerTransaction struct {
	Version             int64           `db:"version"`
	BlockHeight         int64           `db:"block_height"`
	Hash                string          `db:"hash"`
	Type                string          `db:"type"`
	Payload             json.RawMessage `db:"payload"`
	StateChangeHash     string          `db:"state_change_hash"`
	EventRootHash       string          `db:"event_root_hash"`
	StateCheckpointHash *string         `db:"state_checkpoint_hash"`
	GasUsed             uint64          `db:"gas_used"`
	Success             bool            `db:"success"`
	VMStatus            string          `db:"vm_status"`
	AccumulatorRootHash string          `db:"accumulator_root_hash"`
	NumEvents           int64           `db:"num_events"`
	Epoch               int64           `db:"epoch"`
}

// LedgerTransactionFromProto flattens one stream transaction into its row
// form. Only user transactions carry a payload; everything else stores NULL.
func LedgerTransactionFromProto(txn *transactionv1.Transaction) (*LedgerTransaction, error) {
	info := txn.GetInfo()
	if info == nil {
		return nil, fmt.Errorf("transaction %d has no info", txn.GetVersion())
	}

	var payload json.RawMessage
	var numEvents int64
	switch data := txn.TxnData.(type) {
	case *transactionv1.Transaction_User:
		numEvents = int64(len(data.User.GetEvents()))
		if p := data.User.GetRequest().GetPayload(); p != nil {
			raw, err := protojson.Marshal(p)
			if err != nil {
				return nil, fmt.Errorf("marshal payload of transaction %d: %w", txn.GetVersion(), err)
			}
			payload = raw
		}
	case *transactionv1.Transaction_Genesis:
		numEvents = int64(len(data.Genesis.GetEvents()))
	case *transactionv1.Transaction_BlockMetadata:
		numEvents = int64(len(data.BlockMetadata.GetEvents()))
	case *transactionv1.Transaction_Validator:
		numEvents = int64(len(data.Validator.GetEvents()))
	}

	return &LedgerTransaction{
		Version:             int64(txn.GetVersion()),
		BlockHeight:         int64(txn.GetBlockHeight()),
		Hash:                hexAddr(info.GetHash()),
		Type:                txn.GetType().String(),
		Payload:             payload,
		StateChangeHash:     hexAddr(info.GetStateChangeHash()),
		EventRootHash:       hexAddr(info.GetEventRootHash()),
		StateCheckpointHash: optionalHexAddr(info.GetStateCheckpointHash()),
		GasUsed:             info.GetGasUsed(),
		Success:             info.GetSuccess(),
		VMStatus:            info.GetVmStatus(),
		AccumulatorRootHash: hexAddr(info.GetAccumulatorRootHash()),
		NumEvents:           numEvents,
		Epoch:               int64(txn.GetEpoch()),
	}, nil
}

func (t *LedgerTransaction) Sanitize() {
	t.Type = sanitizeString(t.Type)
	t.Payload = sanitizeJSON(t.Payload)
	t.VMStatus = sanitizeString(t.VMStatus)
}

func hexAddr(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func optionalHexAddr(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	s := hexAddr(b)
	return &s
}

type ProcessorStatus struct {
	Processor                string     `db:"processor"`
	LastSuccessVersion       uint64     `db:"last_success_version"`
	LastUpdated              time.Time  `db:"last_updated"`
	LastTransactionTimestamp *time.Time `db:"last_transaction_timestamp"`
}

type LedgerInfo struct {
	ChainID uint64 `db:"chain_id"`
}
