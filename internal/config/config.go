package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Generator GeneratorConfig `yaml:"generator"`
	Latency   LatencyConfig   `yaml:"latency"`
	Storage   StorageConfig   `yaml:"storage"`
	Graph     GraphConfig     `yaml:"graph"`
	Auth      AuthConfig      `yaml:"auth"`
	Events    EventsConfig    `yaml:"events"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MetricsEnabled    bool          `yaml:"metrics_enabled"`
	AllowedOriginsCSV string        `yaml:"allowed_origins"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // text|json
	IncludeCaller bool   `yaml:"include_caller"`
}

// GeneratorConfig describes where the user collection comes from.
type GeneratorConfig struct {
	Count       int    `yaml:"count"`
	Seed        int64  `yaml:"seed"`
	DatasetPath string `yaml:"dataset_path"` // serve a users.json file instead of generating
}

// LatencyConfig holds the artificial delays of the simulated backend.
type LatencyConfig struct {
	List   time.Duration `yaml:"list"`
	Get    time.Duration `yaml:"get"`
	Stats  time.Duration `yaml:"stats"`
	Mutate time.Duration `yaml:"mutate"`
}

// StorageConfig selects the backend of the local cache and the login flag.
type StorageConfig struct {
	Driver      string   `yaml:"driver"` // memory|fs|sqlite|postgres|s3|neo4j
	FSRoot      string   `yaml:"fs_root"`
	SQLitePath  string   `yaml:"sqlite_path"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	S3          S3Config `yaml:"s3"`
}

// S3Config describes the S3 bucket used by the s3 storage driver.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// GraphConfig describes connectivity to the graph database used by the neo4j storage driver.
type GraphConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	MaxConnections int    `yaml:"max_connections"`
}

// AuthConfig configures the stub login.
type AuthConfig struct {
	Required    bool          `yaml:"required"`
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	LoginDelay  time.Duration `yaml:"login_delay"`
}

// EventsConfig configures status-change event publishing. An empty URL disables it.
type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// DashboardConfig bounds per-session view state.
type DashboardConfig struct {
	MaxSessions int `yaml:"max_sessions"`
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultUserCount       = 500
	defaultStorageDriver   = "fs"
	defaultFSRoot          = "./data/storage"
	defaultGraphMaxConns   = 10
	defaultTokenTTL        = 12 * time.Hour
	defaultLoginDelay      = 500 * time.Millisecond
	defaultExchange        = "lendsqr.users"
	defaultMaxSessions     = 1024
)

// Default returns the configuration used when neither a file nor the environment overrides anything.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		Generator: GeneratorConfig{Count: defaultUserCount},
		Latency: LatencyConfig{
			List:   500 * time.Millisecond,
			Get:    300 * time.Millisecond,
			Stats:  200 * time.Millisecond,
			Mutate: 200 * time.Millisecond,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
			FSRoot: defaultFSRoot,
		},
		Graph: GraphConfig{MaxConnections: defaultGraphMaxConns},
		Auth: AuthConfig{
			Required:   true,
			TokenTTL:   defaultTokenTTL,
			LoginDelay: defaultLoginDelay,
		},
		Events:    EventsConfig{Exchange: defaultExchange},
		Dashboard: DashboardConfig{MaxSessions: defaultMaxSessions},
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path (or $LENDSQR_CONFIG), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("LENDSQR_CONFIG")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return Config{}, fmt.Errorf("port %d is out of range", cfg.HTTP.Port)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTP.Host, "SERVER_HOST")
	if err := setInt(&cfg.HTTP.Port, "SERVER_PORT"); err != nil {
		return err
	}
	for key, dst := range map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":     &cfg.HTTP.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    &cfg.HTTP.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":     &cfg.HTTP.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.HTTP.ShutdownTimeout,
		"LATENCY_LIST":            &cfg.Latency.List,
		"LATENCY_GET":             &cfg.Latency.Get,
		"LATENCY_STATS":           &cfg.Latency.Stats,
		"LATENCY_MUTATE":          &cfg.Latency.Mutate,
		"AUTH_TOKEN_TTL":          &cfg.Auth.TokenTTL,
		"AUTH_LOGIN_DELAY":        &cfg.Auth.LoginDelay,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}
	setBool(&cfg.HTTP.MetricsEnabled, "SERVER_METRICS_ENABLED")
	setString(&cfg.HTTP.AllowedOriginsCSV, "SERVER_ALLOWED_ORIGINS")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setBool(&cfg.Logging.IncludeCaller, "LOG_INCLUDE_CALLER")

	if err := setInt(&cfg.Generator.Count, "GENERATOR_COUNT"); err != nil {
		return err
	}
	if v := os.Getenv("GENERATOR_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GENERATOR_SEED: %w", err)
		}
		cfg.Generator.Seed = seed
	}
	setString(&cfg.Generator.DatasetPath, "GENERATOR_DATASET_PATH")

	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.FSRoot, "STORAGE_FS_ROOT")
	setString(&cfg.Storage.SQLitePath, "STORAGE_SQLITE_PATH")
	setString(&cfg.Storage.PostgresDSN, "STORAGE_POSTGRES_DSN")
	setString(&cfg.Storage.S3.Bucket, "STORAGE_S3_BUCKET")
	setString(&cfg.Storage.S3.Region, "STORAGE_S3_REGION")
	setString(&cfg.Storage.S3.Prefix, "STORAGE_S3_PREFIX")
	setString(&cfg.Storage.S3.Endpoint, "STORAGE_S3_ENDPOINT")
	setBool(&cfg.Storage.S3.PathStyle, "STORAGE_S3_PATH_STYLE")

	setString(&cfg.Graph.URI, "GRAPH_URI")
	setString(&cfg.Graph.Database, "GRAPH_DATABASE")
	setString(&cfg.Graph.Username, "GRAPH_USERNAME")
	setString(&cfg.Graph.Password, "GRAPH_PASSWORD")
	if err := setInt(&cfg.Graph.MaxConnections, "GRAPH_MAX_CONNECTIONS"); err != nil {
		return err
	}

	setBool(&cfg.Auth.Required, "AUTH_REQUIRED")
	setString(&cfg.Auth.TokenSecret, "AUTH_TOKEN_SECRET")

	setString(&cfg.Events.AMQPURL, "EVENTS_AMQP_URL")
	setString(&cfg.Events.Exchange, "EVENTS_EXCHANGE")

	return setInt(&cfg.Dashboard.MaxSessions, "DASHBOARD_MAX_SESSIONS")
}

// AllowedOrigins splits the CSV origin list, dropping blanks.
func (c HTTPConfig) AllowedOrigins() []string {
	if c.AllowedOriginsCSV == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(c.AllowedOriginsCSV, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.ParseBool(v); err == nil {
			*dst = val
		}
	}
}

func setInt(dst *int, key string) error {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		*dst = val
	}
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
