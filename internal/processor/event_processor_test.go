package processor

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/celochoi/aptos-indexer-processors/internal/domain/model"
	"github.com/celochoi/aptos-indexer-processors/internal/store/mocks"
)

func txnWithEvents(version uint64, eventData ...string) *transactionv1.Transaction {
	events := make([]*transactionv1.Event, 0, len(eventData))
	for _, data := range eventData {
		events = append(events, &transactionv1.Event{
			Key:     &transactionv1.EventKey{AccountAddress: "0x1"},
			TypeStr: "0x1::coin::DepositEvent",
			Data:    data,
		})
	}
	return &transactionv1.Transaction{
		Version: version,
		Type:    transactionv1.Transaction_TRANSACTION_TYPE_USER,
		Info:    &transactionv1.TransactionInfo{Success: true},
		TxnData: &transactionv1.Transaction_User{
			User: &transactionv1.UserTransaction{Events: events},
		},
	}
}

func TestEventProcessorExtractsAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockTxRunner(ctrl)
	eventRepo := mocks.NewMockEventRepository(ctrl)

	passthroughTx(runner)

	var got []*model.Event
	eventRepo.EXPECT().
		BulkUpsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, rows []*model.Event) error {
			got = rows
			return nil
		})

	p := NewEventProcessor(runner, eventRepo, nil)
	res, err := p.ProcessTransactions(context.Background(), []*transactionv1.Transaction{
		txnWithEvents(1, `{"amount":"1"}`, `{"amount":"2"}`),
		txnWithEvents(2, `{"amount":"3"}`),
	}, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), res.StartVersion)
	assert.Equal(t, uint64(2), res.EndVersion)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].TransactionVersion)
	assert.Equal(t, int64(1), got[1].EventIndex)
	assert.Equal(t, int64(2), got[2].TransactionVersion)
}

func TestEventProcessorSanitizeRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockTxRunner(ctrl)
	eventRepo := mocks.NewMockEventRepository(ctrl)

	passthroughTx(runner).Times(2)

	var attempts [][]*model.Event
	eventRepo.EXPECT().
		BulkUpsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, rows []*model.Event) error {
			attempts = append(attempts, rows)
			if len(attempts) == 1 {
				return errors.New(`pq: unsupported Unicode escape sequence`)
			}
			return nil
		}).
		Times(2)

	p := NewEventProcessor(runner, eventRepo, nil)
	_, err := p.ProcessTransactions(context.Background(), []*transactionv1.Transaction{
		txnWithEvents(9, `{"note":"bad\u0000byte"}`),
	}, 9, 9)
	require.NoError(t, err)

	require.Len(t, attempts, 2)
	assert.Equal(t, `{"note":"badbyte"}`, string(attempts[1][0].Data))
}

func TestEventProcessorSecondFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockTxRunner(ctrl)
	eventRepo := mocks.NewMockEventRepository(ctrl)

	passthroughTx(runner).Times(2)
	eventRepo.EXPECT().BulkUpsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
		Return(errors.New("disk full")).Times(2)

	p := NewEventProcessor(runner, eventRepo, nil)
	_, err := p.ProcessTransactions(context.Background(), []*transactionv1.Transaction{
		txnWithEvents(7, `{}`),
	}, 7, 7)

	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, uint64(7), rangeErr.StartVersion)
	assert.Equal(t, uint64(7), rangeErr.EndVersion)
}
