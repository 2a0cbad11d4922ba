// Package stream implements the transaction stream consumer: connection
// lifecycle, gap detection, filtering, re-chunking and throughput metering
// for the upstream grpc data service.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	indexerv1 "github.com/aptos-labs/aptos-protos/go/aptos/indexer/v1"
	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
	"github.com/aptos-labs/aptos-protos/go/aptos/util/timestamp"
	"google.golang.org/protobuf/proto"

	"github.com/celochoi/aptos-indexer-processors/internal/config"
	"github.com/celochoi/aptos-indexer-processors/internal/filter"
	"github.com/celochoi/aptos-indexer-processors/internal/metrics"
)

// Fatal stream conditions. These indicate a broken upstream contract or
// exhausted recovery and must terminate the process; they are returned as
// errors (rather than panics) so the top-level errgroup can stop every
// component before exiting non-zero.
var (
	ErrVersionGap       = errors.New("received batch with version gap from stream")
	ErrEmptyBatch       = errors.New("received empty transaction batch from stream")
	ErrMissingChainID   = errors.New("transactions response missing chain id")
	ErrRetriesExhausted = errors.New("stream reconnection retries exhausted")
)

// reconnectDelay is the fixed pause before each reconnection attempt.
// TODO: turn this into exponential backoff.
const reconnectDelay = 100 * time.Millisecond

// movingAverageWindowMillis is the tps averaging window.
const movingAverageWindowMillis = 3000

// Batch is the unit delivered downstream. StartVersion/EndVersion always
// report the span of the raw batch the transactions were carved from:
// filtering and chunk-splitting never narrow the span, so callers must not
// infer transaction count from it.
type Batch struct {
	Transactions      []*transactionv1.Transaction
	ChainID           uint64
	StartVersion      uint64
	EndVersion        uint64
	StartTxnTimestamp *timestamp.Timestamp
	EndTxnTimestamp   *timestamp.Timestamp
	SizeInBytes       uint64
}

// Output is the result of one batch-fetch call.
type Output struct {
	Batches []*Batch
	// ShouldContinueFetching is false only once the configured ending
	// version has been passed. Callers must still flush Batches before
	// stopping.
	ShouldContinueFetching bool
}

// TransactionStream is a stateful, single-goroutine consumer of the
// upstream transaction stream. It owns its connection exclusively and
// replaces it wholesale on reconnect.
type TransactionStream struct {
	cfg           config.StreamConfig
	processorName string
	txnFilter     filter.Filter
	chunkSize     int
	connector     Connector
	logger        *slog.Logger

	conn Connection
	pump *connPump

	nextVersionToFetch  uint64
	lastFetchedVersion  int64
	reconnectionRetries int
	fetchMA             *MovingAverage

	sleepFn func(context.Context, time.Duration) error
}

type Option func(*TransactionStream)

// WithSleepFn overrides the reconnect pause, used by tests to avoid real
// sleeps.
func WithSleepFn(fn func(context.Context, time.Duration) error) Option {
	return func(s *TransactionStream) {
		s.sleepFn = fn
	}
}

// New connects to the upstream service and returns a stream positioned at
// cfg.StartingVersion. A connect failure here is fatal; the connector has
// already exhausted its retries.
func New(
	ctx context.Context,
	cfg config.StreamConfig,
	processorName string,
	txnFilter filter.Filter,
	chunkSize int,
	connector Connector,
	logger *slog.Logger,
	opts ...Option,
) (*TransactionStream, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if txnFilter == nil {
		txnFilter = filter.AllowAll{}
	}
	s := &TransactionStream{
		cfg:                cfg,
		processorName:      processorName,
		txnFilter:          txnFilter,
		chunkSize:          chunkSize,
		connector:          connector,
		logger:             logger.With("component", "stream", "processor", processorName),
		nextVersionToFetch: cfg.StartingVersion,
		lastFetchedVersion: int64(cfg.StartingVersion) - 1,
		fetchMA:            NewMovingAverage(movingAverageWindowMillis),
		sleepFn:            sleepContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	conn, err := connector.Connect(ctx, cfg.StartingVersion, cfg.EndingVersion)
	if err != nil {
		return nil, fmt.Errorf("initial stream connect: %w", err)
	}
	s.conn = conn
	s.pump = startPump(conn)
	s.logger.Info("connected to transaction stream",
		"stream_address", cfg.DataServiceURL,
		"connection_id", conn.ID(),
		"start_version", cfg.StartingVersion,
		"end_version", endingVersionValue(cfg.EndingVersion),
	)
	return s, nil
}

// GetNextTransactionBatch waits for the next raw batch and turns it into
// zero or more output batches. Transient faults (timeout, rpc error, stream
// close) are absorbed here via reconnection; only fatal conditions are
// returned as errors. The returned Output is valid even alongside a nil
// error with no batches (a fetch that failed transiently).
func (s *TransactionStream) GetNextTransactionBatch(ctx context.Context) (Output, error) {
	fetchStart := time.Now()
	var batches []*Batch
	success := false

	timer := time.NewTimer(s.cfg.ResponseItemTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Output{}, ctx.Err()
	case res := <-s.pump.ch:
		if res.err != nil {
			s.logger.Warn("error receiving datastream response",
				"connection_id", s.conn.ID(),
				"error", res.err,
			)
		} else {
			var err error
			batches, err = s.handleResponse(res.resp, fetchStart)
			if err != nil {
				return Output{}, err
			}
			success = true
		}
	case <-timer.C:
		s.logger.Warn("timeout receiving datastream response",
			"connection_id", s.conn.ID(),
			"timeout", s.cfg.ResponseItemTimeout,
		)
	}

	if s.cfg.EndingVersion != nil && s.nextVersionToFetch > *s.cfg.EndingVersion {
		s.logger.Info("reached ending version",
			"ending_version", *s.cfg.EndingVersion,
			"next_version_to_fetch", s.nextVersionToFetch,
		)
		return Output{Batches: batches, ShouldContinueFetching: false}, nil
	}

	if !success {
		if err := s.reconnect(ctx); err != nil {
			return Output{Batches: batches, ShouldContinueFetching: true}, err
		}
	}
	return Output{Batches: batches, ShouldContinueFetching: true}, nil
}

func (s *TransactionStream) handleResponse(resp *indexerv1.TransactionsResponse, fetchStart time.Time) ([]*Batch, error) {
	txns := resp.GetTransactions()
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w: upstream sent a batch with no transactions", ErrEmptyBatch)
	}
	if resp.ChainId == nil {
		return nil, fmt.Errorf("%w: versions %d-%d", ErrMissingChainID, txns[0].GetVersion(), txns[len(txns)-1].GetVersion())
	}
	chainID := resp.GetChainId()

	startVersion := txns[0].GetVersion()
	endVersion := txns[len(txns)-1].GetVersion()
	startTxnTimestamp := txns[0].GetTimestamp()
	endTxnTimestamp := txns[len(txns)-1].GetTimestamp()

	if s.lastFetchedVersion+1 != int64(startVersion) {
		s.logger.Error("received batch with gap from grpc stream",
			"expected_start_version", s.lastFetchedVersion+1,
			"actual_start_version", startVersion,
		)
		return nil, fmt.Errorf("%w: expected version %d, got %d", ErrVersionGap, s.lastFetchedVersion+1, startVersion)
	}

	s.reconnectionRetries = 0
	s.nextVersionToFetch = endVersion + 1
	s.lastFetchedVersion = int64(endVersion)

	sizeInBytes := uint64(proto.Size(resp))
	numTxns := len(txns)
	durationSecs := time.Since(fetchStart).Seconds()
	s.fetchMA.Tick(uint64(numTxns))

	filtered := make([]*transactionv1.Transaction, 0, numTxns)
	for _, txn := range txns {
		if s.txnFilter.Include(txn) {
			filtered = append(filtered, txn)
		}
	}
	numFiltered := numTxns - len(filtered)

	s.logger.Info("received transactions from grpc stream",
		"connection_id", s.conn.ID(),
		"start_version", startVersion,
		"end_version", endVersion,
		"num_of_transactions", numTxns,
		"num_filtered_txns", numFiltered,
		"size_in_bytes", sizeInBytes,
		"duration_in_secs", durationSecs,
		"tps", s.fetchMA.Avg(),
	)

	step := metrics.StepReceivedFromGrpc
	metrics.LatestProcessedVersion.WithLabelValues(s.processorName, step).Set(float64(endVersion))
	metrics.TransactionUnixTimestamp.WithLabelValues(s.processorName, step).Set(timestampToUnix(startTxnTimestamp))
	metrics.ProcessedBytes.WithLabelValues(s.processorName, step).Add(float64(sizeInBytes))
	metrics.TransactionsProcessed.WithLabelValues(s.processorName, step).Add(float64(endVersion - startVersion + 1))
	metrics.TransactionsFilteredOut.WithLabelValues(s.processorName).Add(float64(numFiltered))
	metrics.StreamTPS.WithLabelValues(s.processorName).Set(s.fetchMA.Avg())
	metrics.FetchLatency.WithLabelValues(s.processorName).Observe(durationSecs)

	// Split oversized batches into bounded chunks. Every chunk keeps the
	// parent batch's span and timestamps: the span is a source-range marker
	// for gap accounting, not a count, and narrowing it per chunk would
	// break downstream range tracking for filtered batches. The byte size
	// is a proportional estimate, not re-measured.
	var batches []*Batch
	if len(filtered) < s.chunkSize {
		batches = append(batches, &Batch{
			Transactions:      filtered,
			ChainID:           chainID,
			StartVersion:      startVersion,
			EndVersion:        endVersion,
			StartTxnTimestamp: startTxnTimestamp,
			EndTxnTimestamp:   endTxnTimestamp,
			SizeInBytes:       sizeInBytes,
		})
	} else {
		avgSizeInBytes := sizeInBytes / uint64(numTxns)
		for start := 0; start < len(filtered); start += s.chunkSize {
			end := start + s.chunkSize
			if end > len(filtered) {
				end = len(filtered)
			}
			chunk := filtered[start:end]
			batches = append(batches, &Batch{
				Transactions:      chunk,
				ChainID:           chainID,
				StartVersion:      startVersion,
				EndVersion:        endVersion,
				StartTxnTimestamp: startTxnTimestamp,
				EndTxnTimestamp:   endTxnTimestamp,
				SizeInBytes:       avgSizeInBytes * uint64(len(chunk)),
			})
		}
	}
	return batches, nil
}

// reconnect replaces the connection after a transient fault, resuming from
// nextVersionToFetch so no transactions are re-delivered or skipped.
func (s *TransactionStream) reconnect(ctx context.Context) error {
	if err := s.sleepFn(ctx, reconnectDelay); err != nil {
		return err
	}
	if s.reconnectionRetries >= ConnectionMaxRetries {
		return fmt.Errorf("%w: %d attempts", ErrRetriesExhausted, s.reconnectionRetries)
	}
	s.reconnectionRetries++
	metrics.StreamReconnects.WithLabelValues(s.processorName).Inc()
	s.logger.Info("reconnecting to grpc stream",
		"starting_version", s.nextVersionToFetch,
		"reconnection_retries", s.reconnectionRetries,
	)

	conn, err := s.connector.Connect(ctx, s.nextVersionToFetch, s.cfg.EndingVersion)
	if err != nil {
		return fmt.Errorf("reconnect stream at version %d: %w", s.nextVersionToFetch, err)
	}
	s.replaceConnection(conn)
	s.logger.Info("reconnected to grpc stream",
		"connection_id", conn.ID(),
		"starting_version", s.nextVersionToFetch,
		"reconnection_retries", s.reconnectionRetries,
	)
	return nil
}

func (s *TransactionStream) replaceConnection(conn Connection) {
	s.pump.close()
	s.conn.Close()
	s.conn = conn
	s.pump = startPump(conn)
}

// LastFetchedVersion returns the last version successfully delivered
// downstream, or StartingVersion-1 before the first batch.
func (s *TransactionStream) LastFetchedVersion() int64 { return s.lastFetchedVersion }

// Close tears down the connection. The stream must not be used afterwards.
func (s *TransactionStream) Close() {
	s.pump.close()
	s.conn.Close()
}

// GetChainID opens a throwaway connection for versions 1..2, reads the
// chain id from the first response and discards the connection. Used for
// startup validation only.
func GetChainID(ctx context.Context, connector Connector, logger *slog.Logger) (uint64, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to grpc stream to get chain id")

	ending := uint64(2)
	conn, err := connector.Connect(ctx, 1, &ending)
	if err != nil {
		return 0, fmt.Errorf("connect for chain id: %w", err)
	}
	defer conn.Close()

	resp, err := conn.Recv()
	if err != nil {
		return 0, fmt.Errorf("receive chain id response: %w", err)
	}
	if resp.ChainId == nil {
		return 0, ErrMissingChainID
	}
	return resp.GetChainId(), nil
}

// recvResult is one pump delivery: a response or a terminal stream error.
type recvResult struct {
	resp *indexerv1.TransactionsResponse
	err  error
}

// connPump moves blocking Recv calls onto their own goroutine so the
// consumer can bound each wait with a timeout. Each connection gets its own
// pump; closing the pump releases the goroutine even when nobody is reading.
type connPump struct {
	ch   chan recvResult
	stop chan struct{}
}

func startPump(conn Connection) *connPump {
	p := &connPump{
		ch:   make(chan recvResult, 1),
		stop: make(chan struct{}),
	}
	go func() {
		for {
			resp, err := conn.Recv()
			select {
			case p.ch <- recvResult{resp: resp, err: err}:
			case <-p.stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return p
}

func (p *connPump) close() {
	close(p.stop)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func timestampToUnix(ts *timestamp.Timestamp) float64 {
	if ts == nil {
		return 0
	}
	return float64(ts.GetSeconds()) + float64(ts.GetNanos())/1e9
}

func endingVersionValue(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}
