package filter

import (
	"testing"

	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
	"github.com/stretchr/testify/assert"
)

func userTxn(success bool) *transactionv1.Transaction {
	return &transactionv1.Transaction{
		Type: transactionv1.Transaction_TRANSACTION_TYPE_USER,
		Info: &transactionv1.TransactionInfo{Success: success},
	}
}

func TestAllowAll(t *testing.T) {
	assert.True(t, AllowAll{}.Include(userTxn(true)))
	assert.True(t, AllowAll{}.Include(&transactionv1.Transaction{}))
}

func TestSuccessOnly(t *testing.T) {
	f := SuccessOnly()
	assert.True(t, f.Include(userTxn(true)))
	assert.False(t, f.Include(userTxn(false)))
	assert.False(t, f.Include(&transactionv1.Transaction{}), "no info means no proof of success")
}

func TestTxnTypes(t *testing.T) {
	f := TxnTypes(transactionv1.Transaction_TRANSACTION_TYPE_USER)
	assert.True(t, f.Include(userTxn(true)))
	assert.False(t, f.Include(&transactionv1.Transaction{
		Type: transactionv1.Transaction_TRANSACTION_TYPE_STATE_CHECKPOINT,
	}))
}

func TestAllConjunction(t *testing.T) {
	f := All(SuccessOnly(), TxnTypes(transactionv1.Transaction_TRANSACTION_TYPE_USER))
	assert.True(t, f.Include(userTxn(true)))
	assert.False(t, f.Include(userTxn(false)))

	assert.True(t, All().Include(userTxn(false)), "empty conjunction keeps everything")
}
