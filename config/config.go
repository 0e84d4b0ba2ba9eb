package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Booking       BookingConfig       `yaml:"booking"`
	Inventory     InventoryConfig     `yaml:"inventory"`
	Cancellation  CancellationConfig  `yaml:"cancellation"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
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
	Brokers            []string `yaml:"brokers"`
	ReservationTopic   string   `yaml:"reservation_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	SlotsCacheTTL         int `yaml:"slots_cache_ttl_seconds"`
	IdempotencyTTLMinutes int `yaml:"idempotency_ttl_minutes"`
}

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type InventoryConfig struct {
	Backend        string     `yaml:"backend"`
	MaxCASAttempts int        `yaml:"max_cas_attempts"`
	Seed           []SeedSlot `yaml:"seed"`
}

// SeedSlot preloads the memory backend.
type SeedSlot struct {
	ID          string    `yaml:"id"`
	MaxPax      int       `yaml:"max_pax"`
	Status      string    `yaml:"status"`
	DepartsAt   time.Time `yaml:"departs_at"`
	PricePerPax int64     `yaml:"price_per_pax"`
}

type CancellationConfig struct {
	Timezone string       `yaml:"timezone"`
	CatchAll bool         `yaml:"catch_all"`
	Tiers    []TierConfig `yaml:"tiers"`
}

type TierConfig struct {
	DaysBeforeMin int  `yaml:"days_before_min"`
	DaysBeforeMax *int `yaml:"days_before_max"`
	FeePercentage int  `yaml:"fee_percentage"`
}

type ObservabilityConfig struct {
	ServiceName  string `yaml:"service_name"`
	MetricsPath  string `yaml:"metrics_path"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Inventory.Backend == "" {
		c.Inventory.Backend = BackendPostgres
	}
	if c.Inventory.MaxCASAttempts <= 0 {
		c.Inventory.MaxCASAttempts = 5
	}
	if c.Cancellation.Timezone == "" {
		c.Cancellation.Timezone = "UTC"
	}
	if c.Booking.IdempotencyTTLMinutes <= 0 {
		c.Booking.IdempotencyTTLMinutes = 30
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "skybooking"
	}
	if c.Observability.MetricsPath == "" {
		c.Observability.MetricsPath = "/metrics"
	}
}

// Validate checks structural settings. Tier semantics are checked by the
// cancellation policy when it is built.
func (c *Config) Validate() error {
	switch c.Inventory.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("unknown inventory backend %q", c.Inventory.Backend)
	}
	if len(c.Cancellation.Tiers) == 0 {
		return errors.New("cancellation tiers are required")
	}
	if _, err := time.LoadLocation(c.Cancellation.Timezone); err != nil {
		return fmt.Errorf("cancellation timezone: %w", err)
	}
	for _, s := range c.Inventory.Seed {
		if s.ID == "" || s.MaxPax < 1 {
			return fmt.Errorf("seed slot %q: id and max_pax >= 1 are required", s.ID)
		}
		switch s.Status {
		case "", "open", "closed", "suspended":
		default:
			return fmt.Errorf("seed slot %q: unknown status %q", s.ID, s.Status)
		}
	}
	return nil
}
