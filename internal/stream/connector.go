package stream

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	indexerv1 "github.com/aptos-labs/aptos-protos/go/aptos/indexer/v1"
	"github.com/mostynb/go-grpc-compression/zstd"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	_ "google.golang.org/grpc/encoding/gzip" // register gzip decompression
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/celochoi/aptos-indexer-processors/internal/config"
)

const (
	// grpcAuthHeader carries the bearer token for the data service gateway.
	grpcAuthHeader = "authorization"
	// grpcRequestNameHeader identifies the data destination to upstream.
	grpcRequestNameHeader = "x-aptos-request-name"
	// grpcConnectionIDHeader is the server-assigned connection id, used for
	// log correlation only.
	grpcConnectionIDHeader = "x-aptos-connection-id"

	// ConnectionMaxRetries bounds both the transport-connect loop and the
	// initial-request loop. Exhausting either is fatal: an upstream that is
	// unreachable five times in a row is a misconfiguration, not load.
	ConnectionMaxRetries = 5

	// MaxResponseSize caps message size in both directions (256 MiB) so a
	// single oversized response cannot blow up memory.
	MaxResponseSize = 256 * 1024 * 1024
)

// Connection is an open transaction stream plus its server-assigned id.
// Connections are owned exclusively by a TransactionStream and are replaced
// wholesale on reconnect, never reused.
type Connection interface {
	Recv() (*indexerv1.TransactionsResponse, error)
	ID() string
	Close()
}

// Connector establishes connections to the upstream data service. Errors
// returned from Connect are unrecoverable: the connector has already retried
// internally.
type Connector interface {
	Connect(ctx context.Context, startingVersion uint64, endingVersion *uint64) (Connection, error)
}

// GrpcConnector dials the Aptos indexer grpc data service.
type GrpcConnector struct {
	cfg config.StreamConfig
	// requestName identifies the consumer (typically the processor set) to
	// the upstream gateway.
	requestName string
	logger      *slog.Logger
}

func NewGrpcConnector(cfg config.StreamConfig, requestName string, logger *slog.Logger) *GrpcConnector {
	if logger == nil {
		logger = slog.Default()
	}
	return &GrpcConnector{
		cfg:         cfg,
		requestName: requestName,
		logger:      logger.With("component", "connector"),
	}
}

type grpcConnection struct {
	stream indexerv1.RawData_GetTransactionsClient
	id     string
	conn   *grpc.ClientConn
	cancel context.CancelFunc
}

func (c *grpcConnection) Recv() (*indexerv1.TransactionsResponse, error) {
	return c.stream.Recv()
}

func (c *grpcConnection) ID() string { return c.id }

func (c *grpcConnection) Close() {
	c.cancel()
	_ = c.conn.Close()
}

// Connect opens the transport, negotiates compression and message limits,
// and issues the initial range request. The connect and initial-request
// retry loops are kept separate: a transport failure and an application-level
// request failure have different causes and are logged distinctly, even
// though the retry shape is identical.
func (c *GrpcConnector) Connect(ctx context.Context, startingVersion uint64, endingVersion *uint64) (Connection, error) {
	target := c.cfg.Target()
	log := c.logger.With(
		"stream_address", c.cfg.DataServiceURL,
		"start_version", startingVersion,
	)
	log.Info("setting up rpc channel")

	creds := insecure.NewCredentials()
	if c.cfg.IsSecure() {
		creds = credentials.NewTLS(&tls.Config{})
	}

	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(creds),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                c.cfg.HTTP2PingInterval,
			Timeout:             c.cfg.HTTP2PingTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(MaxResponseSize),
			grpc.MaxCallSendMsgSize(MaxResponseSize),
			// Decompression support for gzip and zstd comes from the codec
			// registrations; outgoing requests are compressed with zstd.
			grpc.UseCompressor(zstd.Name),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build grpc channel for %q: %w", c.cfg.DataServiceURL, err)
	}

	if err := c.connectWithRetries(ctx, conn, log); err != nil {
		_ = conn.Close()
		return nil, err
	}

	var transactionsCount *uint64
	if endingVersion != nil {
		count := *endingVersion - startingVersion + 1
		transactionsCount = &count
	}
	log.Info("setting up grpc stream", "num_of_transactions", transactionsCount)

	streamConn, err := c.requestWithRetries(ctx, conn, startingVersion, transactionsCount, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Info("connected to grpc stream", "connection_id", streamConn.id)
	return streamConn, nil
}

func (c *GrpcConnector) connectWithRetries(ctx context.Context, conn *grpc.ClientConn, log *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < ConnectionMaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.ReconnectionTimeout)
		err := waitReady(attemptCtx, conn)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Error("error connecting to grpc server", "retries", attempt, "error", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("connect to %q after %d attempts: %w", c.cfg.DataServiceURL, ConnectionMaxRetries, lastErr)
}

// waitReady drives the lazy client connection to READY or fails with the
// context error.
func waitReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		conn.Connect()
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("wait for grpc channel ready: %w", ctx.Err())
		}
	}
}

type openResult struct {
	stream indexerv1.RawData_GetTransactionsClient
	header metadata.MD
	err    error
}

func (c *GrpcConnector) requestWithRetries(
	ctx context.Context,
	conn *grpc.ClientConn,
	startingVersion uint64,
	transactionsCount *uint64,
	log *slog.Logger,
) (*grpcConnection, error) {
	client := indexerv1.NewRawDataClient(conn)

	var lastErr error
	for attempt := 0; attempt < ConnectionMaxRetries; attempt++ {
		streamCtx, streamCancel := context.WithCancel(ctx)
		streamCtx = metadata.AppendToOutgoingContext(streamCtx,
			grpcAuthHeader, "Bearer "+c.cfg.AuthToken,
			grpcRequestNameHeader, c.requestName,
		)

		done := make(chan openResult, 1)
		go func() {
			version := startingVersion
			stream, err := client.GetTransactions(streamCtx, &indexerv1.GetTransactionsRequest{
				StartingVersion:   &version,
				TransactionsCount: transactionsCount,
			})
			if err != nil {
				done <- openResult{err: err}
				return
			}
			header, err := stream.Header()
			done <- openResult{stream: stream, header: header, err: err}
		}()

		timer := time.NewTimer(c.cfg.ReconnectionTimeout)
		select {
		case res := <-done:
			timer.Stop()
			if res.err == nil {
				return &grpcConnection{
					stream: res.stream,
					id:     connectionID(res.header),
					conn:   conn,
					cancel: streamCancel,
				}, nil
			}
			streamCancel()
			lastErr = res.err
			log.Error("error making grpc request", "retries", attempt, "error", res.err)
		case <-timer.C:
			streamCancel()
			lastErr = context.DeadlineExceeded
			log.Error("timeout making grpc request, retrying", "retries", attempt)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("get transactions request after %d attempts, is the server running: %w",
		ConnectionMaxRetries, lastErr)
}

// connectionID extracts the server-assigned connection id. A missing header
// is not an error; the id is diagnostics only.
func connectionID(md metadata.MD) string {
	if md == nil {
		return ""
	}
	if vals := md.Get(grpcConnectionIDHeader); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
