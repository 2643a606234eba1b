package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Storage  StorageConfig  `yaml:"storage"`
}

type HTTPConfig struct {
	Address     string   `yaml:"address"`
	SwaggerDir  string   `yaml:"swagger_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// BackendConfig points at the airline REST API that prices, stores and
// charges reservations.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers                []string `yaml:"brokers"`
	ReservationEventsTopic string   `yaml:"reservation_events_topic"`
	NotificationsTopic     string   `yaml:"notifications_topic"`
	GroupID                string   `yaml:"group_id"`
}

type BookingConfig struct {
	SessionTTLMinutes        int    `yaml:"session_ttl_minutes"`
	ReferenceCacheTTLSeconds int    `yaml:"reference_cache_ttl_seconds"`
	SubmitLockSeconds        int    `yaml:"submit_lock_seconds"`
	PaymentMarkerHours       int    `yaml:"payment_marker_hours"`
	TicketText               string `yaml:"ticket_text"`
}

func (b BookingConfig) SessionTTL() time.Duration {
	return time.Duration(b.SessionTTLMinutes) * time.Minute
}

func (b BookingConfig) ReferenceCacheTTL() time.Duration {
	return time.Duration(b.ReferenceCacheTTLSeconds) * time.Second
}

func (b BookingConfig) SubmitLockTTL() time.Duration {
	return time.Duration(b.SubmitLockSeconds) * time.Second
}

func (b BookingConfig) PaymentMarkerTTL() time.Duration {
	return time.Duration(b.PaymentMarkerHours) * time.Hour
}

type WorkerConfig struct {
	StaleSubmissionMinutes int `yaml:"stale_submission_minutes"`
	SweepIntervalMinutes   int `yaml:"sweep_interval_minutes"`
}

type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

type StorageConfig struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config, applies environment overrides and fills in
// defaults for anything left unset.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if base := strings.TrimSpace(os.Getenv("API_BASE_URL")); base != "" {
		cfg.Backend.BaseURL = base
	}
	cfg.applyDefaults()

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 20
	}
	if c.Booking.SessionTTLMinutes <= 0 {
		c.Booking.SessionTTLMinutes = 60
	}
	if c.Booking.ReferenceCacheTTLSeconds <= 0 {
		c.Booking.ReferenceCacheTTLSeconds = 300
	}
	if c.Booking.SubmitLockSeconds <= 0 {
		c.Booking.SubmitLockSeconds = 60
	}
	if c.Booking.PaymentMarkerHours <= 0 {
		c.Booking.PaymentMarkerHours = 72
	}
	if c.Worker.StaleSubmissionMinutes <= 0 {
		c.Worker.StaleSubmissionMinutes = 30
	}
	if c.Worker.SweepIntervalMinutes <= 0 {
		c.Worker.SweepIntervalMinutes = 5
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "airbooking-desk-worker"
	}
}
