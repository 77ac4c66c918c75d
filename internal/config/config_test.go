package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/validation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_ValidOnceURLsSet(t *testing.T) {
	cfg := Default()
	assert.False(t, validation.ClientConfig(cfg.Client).OK(), "base URLs have no default")

	cfg.Client.APIs.Network.BaseURL = "https://api.example.com"
	cfg.Client.APIs.Execution.BaseURL = "https://api.example.com"
	assert.True(t, validation.ClientConfig(cfg.Client).OK(), validation.ClientConfig(cfg.Client).String())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "xolium.yaml", `
client:
  rpc_endpoint: https://rpc.example.com
  commitment: finalized
  retry:
    max_attempts: 5
    base_delay_ms: 50
    max_delay_ms: 800
    retryable_http_status_codes: [503]
  apis:
    network:
      base_url: https://net.example.com
logging:
  level: debug
recorder:
  interval: 5s
routing:
  max_hops: 2
  allow_venues: [orca]
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.com", cfg.Client.RPCEndpoint)
	assert.Equal(t, domain.CommitmentFinalized, cfg.Client.Commitment)
	assert.Equal(t, 5, cfg.Client.Retry.MaxAttempts)
	assert.Equal(t, []int{503}, cfg.Client.Retry.RetryableHTTPStatusCodes)
	assert.Equal(t, "https://net.example.com", cfg.Client.APIs.Network.BaseURL)
	// Unset nested fields keep their defaults.
	assert.Equal(t, 10_000, cfg.Client.APIs.Network.TimeoutMs)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Recorder.Interval)
	assert.Equal(t, 2, cfg.Routing.MaxHops)
	assert.Equal(t, []string{"orca"}, cfg.Routing.AllowVenues)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "client: [unterminated"), "")
	assert.Error(t, err)
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("XOLIUM_LOG_LEVEL", "warn")
	envFile := writeFile(t, ".env", "XOLIUM_LOG_LEVEL=trace\nXOLIUM_NETWORK_API_URL=https://env-file.example.com\n")
	t.Cleanup(func() { os.Unsetenv("XOLIUM_NETWORK_API_URL") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "https://env-file.example.com", cfg.Client.APIs.Network.BaseURL)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"XOLIUM_COMMITMENT":        "processed",
		"XOLIUM_API_KEY":           "k-123",
		"XOLIUM_LOG_PRETTY":        "true",
		"XOLIUM_RECORDER_INTERVAL": "1m",
		"XOLIUM_ALLOW_VENUES":      "orca, raydium,,",
		"XOLIUM_SIGNER_SECRET_KEY": "secret",
		"XOLIUM_EXECUTION_API_URL": "https://exec.example.com",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, applyEnv(&cfg, lookup))

	assert.Equal(t, domain.CommitmentProcessed, cfg.Client.Commitment)
	assert.Equal(t, "k-123", cfg.Client.APIs.Network.Headers["X-Api-Key"])
	assert.Equal(t, "k-123", cfg.Client.APIs.Execution.Headers["X-Api-Key"])
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, time.Minute, cfg.Recorder.Interval)
	assert.Equal(t, []string{"orca", "raydium"}, cfg.Routing.AllowVenues)
	assert.Equal(t, "secret", cfg.SignerSecretKey)
	assert.Equal(t, "https://exec.example.com", cfg.Client.APIs.Execution.BaseURL)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	for _, kv := range [][2]string{
		{"XOLIUM_LOG_PRETTY", "maybe"},
		{"XOLIUM_RECORDER_INTERVAL", "soon"},
	} {
		lookup := func(k string) (string, bool) {
			if k == kv[0] {
				return kv[1], true
			}
			return "", false
		}
		cfg := Default()
		assert.Error(t, applyEnv(&cfg, lookup), kv[0])
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(Logging{Level: "warn"}, &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"k":"v"`)

	buf.Reset()
	logger = newLogger(Logging{Level: "nonsense"}, &buf)
	logger.Debug().Msg("debug")
	logger.Info().Msg("info")
	assert.NotContains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "info")
}
