package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the server and the admin CLI.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	Notify   NotifyConfig   `yaml:"notify"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type DatabaseConfig struct {
	// Driver is one of "pgx" (default), "postgres" (lib/pq) or "sqlite".
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

// DSN builds the connection string for the configured driver. For sqlite
// the database name is used as the file path.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Name
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	ServiceKey string        `yaml:"service_key"`
}

type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend       string `yaml:"backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type NotifyConfig struct {
	// Transport is "http", "kafka" or "none".
	Transport       string        `yaml:"transport"`
	StateServiceURL string        `yaml:"state_service_url"`
	Timeout         time.Duration `yaml:"timeout"`
	KafkaBrokers    []string      `yaml:"kafka_brokers"`
	KafkaTopic      string        `yaml:"kafka_topic"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:           "0.0.0.0:8080",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Database: DatabaseConfig{
			Driver:   "pgx",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "flights",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Auth: AuthConfig{
			JWTSecret: "supersecret",
			TokenTTL:  72 * time.Hour,
		},
		Session: SessionConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
		Notify: NotifyConfig{
			Transport:       "http",
			StateServiceURL: "http://localhost:8081/api/calculate",
			Timeout:         7 * time.Second,
			KafkaTopic:      "flights.formed",
		},
		Log: LogConfig{
			Level: "info",
			File:  "./logs/app.log",
		},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_PATH (if
// set), then applies environment variable overrides on top.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.TimeZone = getEnv("DB_TIMEZONE", cfg.Database.TimeZone)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.ServiceKey = getEnv("SERVICE_KEY", cfg.Auth.ServiceKey)

	cfg.Session.Backend = getEnv("SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.RedisAddr = getEnv("REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Session.RedisPassword)

	cfg.Notify.Transport = getEnv("NOTIFY_TRANSPORT", cfg.Notify.Transport)
	cfg.Notify.StateServiceURL = getEnv("STATE_SERVICE_URL", cfg.Notify.StateServiceURL)
	cfg.Notify.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.Notify.KafkaTopic)
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Notify.KafkaBrokers = splitList(v)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)

	var err error
	if cfg.Auth.TokenTTL, err = getDuration("JWT_TTL", cfg.Auth.TokenTTL); err != nil {
		return err
	}
	if cfg.Notify.Timeout, err = getDuration("NOTIFY_TIMEOUT", cfg.Notify.Timeout); err != nil {
		return err
	}
	if cfg.Session.RedisDB, err = getInt("REDIS_DB", cfg.Session.RedisDB); err != nil {
		return err
	}
	if cfg.HTTP.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", cfg.HTTP.RateLimitBurst); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.HTTP.RateLimitRPS = rps
	}
	return nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	switch c.Notify.Transport {
	case "none":
	case "http":
		if c.Notify.StateServiceURL == "" {
			return fmt.Errorf("STATE_SERVICE_URL is required for the http notify transport")
		}
	case "kafka":
		if len(c.Notify.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka notify transport")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_TRANSPORT %q", c.Notify.Transport)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
