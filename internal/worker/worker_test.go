package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	indexerv1 "github.com/aptos-labs/aptos-protos/go/aptos/indexer/v1"
	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/protobuf/proto"

	"github.com/celochoi/aptos-indexer-processors/internal/config"
	"github.com/celochoi/aptos-indexer-processors/internal/processor"
	"github.com/celochoi/aptos-indexer-processors/internal/store/mocks"
	"github.com/celochoi/aptos-indexer-processors/internal/stream"
)

type scriptedConn struct {
	id        string
	responses chan *indexerv1.TransactionsResponse
	done      chan struct{}
	closeOnce sync.Once
}

func newScriptedConn(id string, responses ...*indexerv1.TransactionsResponse) *scriptedConn {
	c := &scriptedConn{
		id:        id,
		responses: make(chan *indexerv1.TransactionsResponse, len(responses)+1),
		done:      make(chan struct{}),
	}
	for _, r := range responses {
		c.responses <- r
	}
	return c
}

func (c *scriptedConn) Recv() (*indexerv1.TransactionsResponse, error) {
	select {
	case r := <-c.responses:
		return r, nil
	case <-c.done:
		return nil, errors.New("closed")
	}
}

func (c *scriptedConn) ID() string { return c.id }
func (c *scriptedConn) Close()     { c.closeOnce.Do(func() { close(c.done) }) }

type scriptedConnector struct {
	mu    sync.Mutex
	calls []uint64
	queue []*scriptedConn
}

func (f *scriptedConnector) Connect(_ context.Context, startingVersion uint64, _ *uint64) (stream.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, startingVersion)
	if len(f.queue) == 0 {
		return nil, errors.New("no connection scripted")
	}
	c := f.queue[0]
	f.queue = f.queue[1:]
	return c, nil
}

type fakeProcessor struct {
	name string
	mu   sync.Mutex
	runs [][2]uint64
	err  error
}

func (p *fakeProcessor) Name() string { return p.name }

func (p *fakeProcessor) ProcessTransactions(_ context.Context, txns []*transactionv1.Transaction, startVersion, endVersion uint64) (processor.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return processor.Result{}, p.err
	}
	p.runs = append(p.runs, [2]uint64{startVersion, endVersion})
	return processor.Result{StartVersion: startVersion, EndVersion: endVersion}, nil
}

func makeResp(chainID, start uint64, count int) *indexerv1.TransactionsResponse {
	txns := make([]*transactionv1.Transaction, 0, count)
	for i := 0; i < count; i++ {
		txns = append(txns, &transactionv1.Transaction{Version: start + uint64(i)})
	}
	return &indexerv1.TransactionsResponse{Transactions: txns, ChainId: proto.Uint64(chainID)}
}

func testConfig(starting uint64, ending *uint64) *config.Config {
	return &config.Config{
		Stream: config.StreamConfig{
			DataServiceURL:      "http://localhost:50051",
			StartingVersion:     starting,
			EndingVersion:       ending,
			ResponseItemTimeout: time.Second,
			ReconnectionTimeout: time.Second,
		},
		Processor: config.ProcessorConfig{
			Enabled:      []string{"fake"},
			TxnChunkSize: 1000,
		},
	}
}

func TestWorkerRunToEndingVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	status := mocks.NewMockProcessorStatusRepository(ctrl)
	ledgerInfo := mocks.NewMockLedgerInfoRepository(ctrl)

	connector := &scriptedConnector{queue: []*scriptedConn{
		newScriptedConn("chain-id", makeResp(1, 1, 2)),
		newScriptedConn("data", makeResp(1, 1, 5)),
	}}

	ledgerInfo.EXPECT().GetChainID(gomock.Any()).Return(nil, nil)
	ledgerInfo.EXPECT().Insert(gomock.Any(), uint64(1)).Return(nil)
	status.EXPECT().GetLastSuccessVersion(gomock.Any(), "fake").Return(nil, nil)
	status.EXPECT().Upsert(gomock.Any(), "fake", uint64(5), gomock.Any()).Return(nil)

	ending := uint64(5)
	p := &fakeProcessor{name: "fake"}
	w := New(testConfig(1, &ending), connector, []processor.Processor{p}, status, ledgerInfo, nil)

	require.NoError(t, w.Run(context.Background()))
	require.Len(t, p.runs, 1)
	assert.Equal(t, [2]uint64{1, 5}, p.runs[0])
}

func TestWorkerChainIDMismatchIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	status := mocks.NewMockProcessorStatusRepository(ctrl)
	ledgerInfo := mocks.NewMockLedgerInfoRepository(ctrl)

	connector := &scriptedConnector{queue: []*scriptedConn{
		newScriptedConn("chain-id", makeResp(2, 1, 2)),
	}}

	stored := uint64(3)
	ledgerInfo.EXPECT().GetChainID(gomock.Any()).Return(&stored, nil)

	w := New(testConfig(1, nil), connector, []processor.Processor{&fakeProcessor{name: "fake"}}, status, ledgerInfo, nil)
	err := w.Run(context.Background())
	assert.ErrorIs(t, err, ErrChainIDMismatch)
}

func TestWorkerResumesFromCheckpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	status := mocks.NewMockProcessorStatusRepository(ctrl)
	ledgerInfo := mocks.NewMockLedgerInfoRepository(ctrl)

	connector := &scriptedConnector{queue: []*scriptedConn{
		newScriptedConn("chain-id", makeResp(1, 1, 2)),
		newScriptedConn("data", makeResp(1, 101, 5)),
	}}

	chainID := uint64(1)
	ledgerInfo.EXPECT().GetChainID(gomock.Any()).Return(&chainID, nil)
	checkpoint := uint64(100)
	status.EXPECT().GetLastSuccessVersion(gomock.Any(), "fake").Return(&checkpoint, nil)
	status.EXPECT().Upsert(gomock.Any(), "fake", uint64(105), gomock.Any()).Return(nil)

	ending := uint64(105)
	p := &fakeProcessor{name: "fake"}
	w := New(testConfig(1, &ending), connector, []processor.Processor{p}, status, ledgerInfo, nil)

	require.NoError(t, w.Run(context.Background()))

	connector.mu.Lock()
	defer connector.mu.Unlock()
	require.Len(t, connector.calls, 2)
	assert.Equal(t, uint64(1), connector.calls[0], "chain id probe starts at version 1")
	assert.Equal(t, uint64(101), connector.calls[1], "stream resumes after the checkpoint")
}

func TestWorkerProcessorFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	status := mocks.NewMockProcessorStatusRepository(ctrl)
	ledgerInfo := mocks.NewMockLedgerInfoRepository(ctrl)

	connector := &scriptedConnector{queue: []*scriptedConn{
		newScriptedConn("chain-id", makeResp(1, 1, 2)),
		newScriptedConn("data", makeResp(1, 1, 5)),
	}}

	ledgerInfo.EXPECT().GetChainID(gomock.Any()).Return(nil, nil)
	ledgerInfo.EXPECT().Insert(gomock.Any(), uint64(1)).Return(nil)
	status.EXPECT().GetLastSuccessVersion(gomock.Any(), "fake").Return(nil, nil)

	procErr := &processor.RangeError{StartVersion: 1, EndVersion: 5, Err: errors.New("db down")}
	p := &fakeProcessor{name: "fake", err: procErr}
	w := New(testConfig(1, nil), connector, []processor.Processor{p}, status, ledgerInfo, nil)

	err := w.Run(context.Background())
	require.Error(t, err)

	var rangeErr *processor.RangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestWorkerBatchChainIDMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	status := mocks.NewMockProcessorStatusRepository(ctrl)
	ledgerInfo := mocks.NewMockLedgerInfoRepository(ctrl)

	connector := &scriptedConnector{queue: []*scriptedConn{
		newScriptedConn("chain-id", makeResp(1, 1, 2)),
		newScriptedConn("data", makeResp(9, 1, 5)),
	}}

	chainID := uint64(1)
	ledgerInfo.EXPECT().GetChainID(gomock.Any()).Return(&chainID, nil)
	status.EXPECT().GetLastSuccessVersion(gomock.Any(), "fake").Return(nil, nil)

	w := New(testConfig(1, nil), connector, []processor.Processor{&fakeProcessor{name: "fake"}}, status, ledgerInfo, nil)
	err := w.Run(context.Background())
	assert.ErrorIs(t, err, ErrChainIDMismatch)
}
