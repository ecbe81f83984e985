// Package config loads and validates the ranker configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// corpus, ranking, output and every optional backend (Redis, Kafka,
// PostgreSQL, Prometheus).
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Search   SearchConfig   `yaml:"search"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// CorpusConfig names the document folder and query file and controls how
// many documents are indexed in parallel.
type CorpusConfig struct {
	Folder    string `yaml:"folder"`
	QueryFile string `yaml:"queryFile"`
	Workers   int    `yaml:"workers"`
}

// Ranking strategies.
const (
	StrategySort = "sort"
	StrategyScan = "scan"
)

// Tree balancing modes.
const (
	BalancingAVL    = "avl"
	BalancingSingle = "single"
)

// SearchConfig controls how each query is ranked and when emission stops.
// A Limit of 0 means no limit.
type SearchConfig struct {
	Limit           int    `yaml:"limit"`
	Strategy        string `yaml:"strategy"`
	StopAtZeroScore bool   `yaml:"stopAtZeroScore"`
	Balancing       string `yaml:"balancing"`
}

// OutputConfig selects the result presentation.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig toggles span logging for a run.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig controls how run metrics leave the process: a scrape
// endpoint while the run is in progress, a node-exporter textfile, and/or a
// Pushgateway push at the end.
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Port        int    `yaml:"port"`
	Textfile    string `yaml:"textfile"`
	Pushgateway string `yaml:"pushgateway"`
	Job         string `yaml:"job"`
}

// RedisConfig holds Redis connection and ranking-cache parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds the broker list, the analytics topic and collector tuning.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	// Collector tuning: events buffered before drops, events per write, the
	// longest an event waits for a batch to fill, and attempts per write.
	BufferSize      int           `yaml:"bufferSize"`
	BatchSize       int           `yaml:"batchSize"`
	FlushInterval   time.Duration `yaml:"flushInterval"`
	PublishAttempts int           `yaml:"publishAttempts"`
}

// PostgresConfig holds PostgreSQL connection parameters for run history.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values. The result is not validated; call Validate once flags are applied.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "parsing config file %s: %v", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Workers: runtime.NumCPU(),
		},
		Search: SearchConfig{
			Limit:           0,
			Strategy:        StrategySort,
			StopAtZeroScore: true,
			Balancing:       BalancingAVL,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Job:  "document-ranker",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:         []string{"localhost:9092"},
			Topic:           "ranker-events",
			BufferSize:      10000,
			BatchSize:       100,
			FlushInterval:   time.Second,
			PublishAttempts: 3,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "ranker",
			User:            "ranker",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
	}
}

// Validate reports the first invalid setting as an ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Search.Limit < 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "search.limit must be >= 0, got %d", c.Search.Limit)
	}
	if c.Corpus.Workers < 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "corpus.workers must be >= 0, got %d", c.Corpus.Workers)
	}
	switch c.Search.Strategy {
	case StrategySort, StrategyScan:
	default:
		return apperrors.Newf(apperrors.ErrInvalidConfig, "unknown search.strategy %q", c.Search.Strategy)
	}
	switch c.Search.Balancing {
	case BalancingAVL, BalancingSingle:
	default:
		return apperrors.Newf(apperrors.ErrInvalidConfig, "unknown search.balancing %q", c.Search.Balancing)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return apperrors.Newf(apperrors.ErrInvalidConfig, "unknown output.format %q", c.Output.Format)
	}
	if c.Redis.Enabled && c.Redis.CacheTTL <= 0 {
		return apperrors.New(apperrors.ErrInvalidConfig, "redis.cacheTTL must be positive when the cache is enabled")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return apperrors.New(apperrors.ErrInvalidConfig, "kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	return nil
}

// applyEnvOverrides reads RR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RR_CORPUS_FOLDER"); v != "" {
		cfg.Corpus.Folder = v
	}
	if v := os.Getenv("RR_CORPUS_QUERY_FILE"); v != "" {
		cfg.Corpus.QueryFile = v
	}
	if v := os.Getenv("RR_CORPUS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Corpus.Workers = n
		}
	}
	if v := os.Getenv("RR_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Limit = n
		}
	}
	if v := os.Getenv("RR_SEARCH_STRATEGY"); v != "" {
		cfg.Search.Strategy = strings.ToLower(v)
	}
	if v := os.Getenv("RR_SEARCH_STOP_AT_ZERO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Search.StopAtZeroScore = b
		}
	}
	if v := os.Getenv("RR_SEARCH_BALANCING"); v != "" {
		cfg.Search.Balancing = strings.ToLower(v)
	}
	if v := os.Getenv("RR_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}
	if v := os.Getenv("RR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("RR_METRICS_PUSHGATEWAY"); v != "" {
		cfg.Metrics.Pushgateway = v
	}
	if v := os.Getenv("RR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("RR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("RR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("RR_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("RR_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("RR_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("RR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
}
