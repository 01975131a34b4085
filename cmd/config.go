package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	HTTPPort string
	LogLevel string

	Store      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers      []string
	KafkaTopic        string
	KafkaBatchTimeout time.Duration

	OTELEndpoint   string
	OTELSampleRate float64
	ServiceName    string
	Environment    string

	DisputeSweepSpec string
	SLAMonitorSpec   string
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) TracingEnabled() bool {
	return c.OTELEndpoint != ""
}

func (c Config) Validate() error {
	var errList []error
	if c.HTTPPort == "" {
		errList = append(errList, errors.New("HTTP_PORT is required"))
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DBHost == "" || c.DBName == "" {
			errList = append(errList, errors.New("DB_HOST and DB_NAME are required for the postgres store"))
		}
	default:
		errList = append(errList, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}
	return errors.Join(errList...)
}

// LoadConfig reads an optional .env file, then the environment. Environment
// variables win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		HTTPPort: v.GetString("HTTP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		Store:      strings.ToLower(v.GetString("STORE")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),

		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:        v.GetString("KAFKA_ORDER_TRANSITIONS_TOPIC"),
		KafkaBatchTimeout: v.GetDuration("KAFKA_BATCH_TIMEOUT"),

		OTELEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELSampleRate: v.GetFloat64("OTEL_SAMPLE_RATE"),
		ServiceName:    v.GetString("SERVICE_NAME"),
		Environment:    v.GetString("ENVIRONMENT"),

		DisputeSweepSpec: v.GetString("DISPUTE_SWEEP_SCHEDULE"),
		SLAMonitorSpec:   v.GetString("SLA_MONITOR_SCHEDULE"),
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8082")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "patternfactory")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_ORDER_TRANSITIONS_TOPIC", "order.transitions")
	v.SetDefault("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond)
	v.SetDefault("OTEL_SAMPLE_RATE", 1.0)
	v.SetDefault("SERVICE_NAME", "patternfactory")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DISPUTE_SWEEP_SCHEDULE", "0 * * * * *")
	v.SetDefault("SLA_MONITOR_SCHEDULE", "*/30 * * * * *")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
