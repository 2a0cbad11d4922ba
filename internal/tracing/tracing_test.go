package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledInstallsNoOpProvider(t *testing.T) {
	shutdown, err := Init(context.Background(), "test-svc", Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitEnabledWithoutEndpointIsNoOp(t *testing.T) {
	shutdown, err := Init(context.Background(), "test-svc", Config{Enabled: true, Endpoint: ""})
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerReturnsNonNil(t *testing.T) {
	shutdown, err := Init(context.Background(), "test-svc", Config{})
	require.NoError(t, err)
	defer shutdown(context.Background())

	tracer := Tracer("test-tracer")
	assert.NotNil(t, tracer)
}

func TestInitShutdownIdempotent(t *testing.T) {
	shutdown, err := Init(context.Background(), "test-svc", Config{})
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
	assert.NoError(t, shutdown(context.Background()))
}
