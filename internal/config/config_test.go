package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:50051", cfg.Stream.DataServiceURL)
	assert.Equal(t, uint64(0), cfg.Stream.StartingVersion)
	assert.Nil(t, cfg.Stream.EndingVersion)
	assert.Equal(t, 60*time.Second, cfg.Stream.ResponseItemTimeout)
	assert.Equal(t, 5*time.Second, cfg.Stream.ReconnectionTimeout)
	assert.Equal(t, 100_000, cfg.Processor.TxnChunkSize)
	assert.Equal(t, []string{"default"}, cfg.Processor.Enabled)
	assert.Equal(t, 8080, cfg.Server.HealthPort)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GRPC_DATA_SERVICE_URL", "https://grpc.mainnet.aptoslabs.com:443")
	t.Setenv("GRPC_AUTH_TOKEN", "secret")
	t.Setenv("STARTING_VERSION", "1000")
	t.Setenv("ENDING_VERSION", "2000")
	t.Setenv("TXN_CHUNK_SIZE", "500")
	t.Setenv("PROCESSORS", "default, events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), cfg.Stream.StartingVersion)
	require.NotNil(t, cfg.Stream.EndingVersion)
	assert.Equal(t, uint64(2000), *cfg.Stream.EndingVersion)
	assert.Equal(t, "secret", cfg.Stream.AuthToken)
	assert.Equal(t, 500, cfg.Processor.TxnChunkSize)
	assert.Equal(t, []string{"default", "events"}, cfg.Processor.Enabled)
}

func TestLoadRejectsInvertedRange(t *testing.T) {
	t.Setenv("STARTING_VERSION", "10")
	t.Setenv("ENDING_VERSION", "5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTING_VERSION")
}

func TestLoadRejectsBadChunkSize(t *testing.T) {
	t.Setenv("TXN_CHUNK_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMalformedEndingVersion(t *testing.T) {
	t.Setenv("ENDING_VERSION", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestIsSecure(t *testing.T) {
	secure := StreamConfig{DataServiceURL: "https://grpc.mainnet.aptoslabs.com:443"}
	assert.True(t, secure.IsSecure())

	plain := StreamConfig{DataServiceURL: "http://localhost:50051"}
	assert.False(t, plain.IsSecure())
}

func TestTarget(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"explicit port", "http://localhost:50051", "localhost:50051"},
		{"default tls port", "https://grpc.mainnet.aptoslabs.com", "grpc.mainnet.aptoslabs.com:443"},
		{"default plain port", "http://example.com", "example.com:80"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := StreamConfig{DataServiceURL: tt.url}
			assert.Equal(t, tt.want, cfg.Target())
		})
	}
}
