// Package worker wires the stream to the processors: it owns the fetch
// loop, chain identity validation, checkpoint resume, and per-batch fan-out.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/celochoi/aptos-indexer-processors/internal/config"
	"github.com/celochoi/aptos-indexer-processors/internal/metrics"
	"github.com/celochoi/aptos-indexer-processors/internal/processor"
	"github.com/celochoi/aptos-indexer-processors/internal/store"
	"github.com/celochoi/aptos-indexer-processors/internal/stream"
)

// ErrChainIDMismatch means the database was indexed against a different
// chain than the stream now serves. Continuing would corrupt the data set.
var ErrChainIDMismatch = errors.New("stream chain id does not match database chain id")

type Worker struct {
	cfg        *config.Config
	connector  stream.Connector
	processors []processor.Processor
	status     store.ProcessorStatusRepository
	ledgerInfo store.LedgerInfoRepository
	logger     *slog.Logger
	runID      string
}

func New(
	cfg *config.Config,
	connector stream.Connector,
	processors []processor.Processor,
	status store.ProcessorStatusRepository,
	ledgerInfo store.LedgerInfoRepository,
	logger *slog.Logger,
) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	return &Worker{
		cfg:        cfg,
		connector:  connector,
		processors: processors,
		status:     status,
		ledgerInfo: ledgerInfo,
		logger:     logger.With("component", "worker", "run_id", runID),
		runID:      runID,
	}
}

// EnsureChainID fetches the chain id from the stream and validates it
// against the database, recording it on first run.
func (w *Worker) EnsureChainID(ctx context.Context) (uint64, error) {
	chainID, err := stream.GetChainID(ctx, w.connector, w.logger)
	if err != nil {
		return 0, fmt.Errorf("get chain id from stream: %w", err)
	}

	stored, err := w.ledgerInfo.GetChainID(ctx)
	if err != nil {
		return 0, err
	}
	if stored == nil {
		w.logger.Info("recording chain id on first run", "chain_id", chainID)
		if err := w.ledgerInfo.Insert(ctx, chainID); err != nil {
			return 0, err
		}
		return chainID, nil
	}
	if *stored != chainID {
		return 0, fmt.Errorf("%w: stream %d, database %d", ErrChainIDMismatch, chainID, *stored)
	}
	return chainID, nil
}

// resumeVersion picks the version to start fetching from. Every processor
// shares one stream, so the slowest checkpoint wins; a processor that is
// ahead re-sees transactions its idempotent writes absorb.
func (w *Worker) resumeVersion(ctx context.Context) (uint64, error) {
	starting := w.cfg.Stream.StartingVersion
	var slowest *uint64
	for _, p := range w.processors {
		checkpoint, err := w.status.GetLastSuccessVersion(ctx, p.Name())
		if err != nil {
			return 0, err
		}
		if checkpoint == nil {
			// A processor with no checkpoint starts from config.
			return starting, nil
		}
		if slowest == nil || *checkpoint < *slowest {
			slowest = checkpoint
		}
	}
	if slowest != nil && *slowest+1 > starting {
		starting = *slowest + 1
	}
	return starting, nil
}

// Run drives the fetch loop until the ending version is passed, the
// context is cancelled, or a fatal error occurs.
func (w *Worker) Run(ctx context.Context) error {
	chainID, err := w.EnsureChainID(ctx)
	if err != nil {
		return err
	}

	startingVersion, err := w.resumeVersion(ctx)
	if err != nil {
		return fmt.Errorf("resolve resume version: %w", err)
	}

	streamCfg := w.cfg.Stream
	streamCfg.StartingVersion = startingVersion

	ts, err := stream.New(ctx, streamCfg, "worker", nil, w.cfg.Processor.TxnChunkSize, w.connector, w.logger)
	if err != nil {
		return err
	}
	defer ts.Close()

	w.logger.Info("worker starting",
		"chain_id", chainID,
		"starting_version", startingVersion,
		"processors", w.processorNames(),
	)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		out, err := ts.GetNextTransactionBatch(ctx)
		if err != nil {
			return fmt.Errorf("fetch transaction batch: %w", err)
		}

		for _, batch := range out.Batches {
			if batch.ChainID != chainID {
				return fmt.Errorf("%w: batch %d-%d carries chain id %d, expected %d",
					ErrChainIDMismatch, batch.StartVersion, batch.EndVersion, batch.ChainID, chainID)
			}
			if err := w.processBatch(ctx, batch); err != nil {
				return err
			}
		}

		if !out.ShouldContinueFetching {
			w.logger.Info("worker finished", "ending_version", endingVersionValue(w.cfg.Stream.EndingVersion))
			return nil
		}
	}
}

// processBatch fans one batch out to every processor and checkpoints each
// one after its commit. Any processor failure is fatal for the run.
func (w *Worker) processBatch(ctx context.Context, batch *stream.Batch) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range w.processors {
		g.Go(func() error {
			res, err := p.ProcessTransactions(gctx, batch.Transactions, batch.StartVersion, batch.EndVersion)
			if err != nil {
				return fmt.Errorf("processor %s: %w", p.Name(), err)
			}
			if err := w.status.Upsert(gctx, p.Name(), res.EndVersion, res.LastTxnTimestamp); err != nil {
				return fmt.Errorf("checkpoint processor %s: %w", p.Name(), err)
			}

			step := metrics.StepProcessedBatch
			metrics.LatestProcessedVersion.WithLabelValues(p.Name(), step).Set(float64(res.EndVersion))
			metrics.ProcessedBytes.WithLabelValues(p.Name(), step).Add(float64(batch.SizeInBytes))
			metrics.TransactionsProcessed.WithLabelValues(p.Name(), step).Add(float64(len(batch.Transactions)))
			if ts := res.LastTxnTimestamp; ts != nil {
				metrics.TransactionUnixTimestamp.WithLabelValues(p.Name(), step).Set(float64(ts.UnixNano()) / float64(time.Second))
			}

			w.logger.Debug("batch committed",
				"processor", p.Name(),
				"start_version", res.StartVersion,
				"end_version", res.EndVersion,
				"num_of_transactions", len(batch.Transactions),
				"processing_duration", res.ProcessingDuration,
				"db_insertion_duration", res.DBInsertionDuration,
			)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) processorNames() []string {
	names := make([]string, 0, len(w.processors))
	for _, p := range w.processors {
		names = append(names, p.Name())
	}
	return names
}

func endingVersionValue(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}
