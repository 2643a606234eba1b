package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
http:
  address: ":9090"
  cors_origins: ["http://localhost:5173"]
backend:
  base_url: "https://api.example.hn/api"
  timeout_seconds: 5
kafka:
  brokers: ["localhost:9092"]
  reservation_events_topic: "reservation-events"
  notifications_topic: "reservation-notifications"
booking:
  session_ttl_minutes: 30
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "https://api.example.hn/api", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 30*time.Minute, cfg.Booking.SessionTTL())
	assert.Equal(t, 300*time.Second, cfg.Booking.ReferenceCacheTTL())
	assert.Equal(t, 60*time.Second, cfg.Booking.SubmitLockTTL())
	assert.Equal(t, 72*time.Hour, cfg.Booking.PaymentMarkerTTL())
	assert.Equal(t, "airbooking-desk-worker", cfg.Kafka.GroupID)
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:3000")

	cfg, err := Parse([]byte(sampleConfig))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.Backend.BaseURL)
}

func TestParse_MissingBackend(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	_, err := Parse([]byte("http:\n  address: \":8080\"\n"))

	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
