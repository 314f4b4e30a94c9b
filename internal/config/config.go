package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	AuthProviderLocal = "local"
	AuthProviderSSO   = "sso"

	LimiterBackendMemory = "memory"
	LimiterBackendRedis  = "redis"
)

type Config struct {
	Debug     bool          `yaml:"debug" env:"DEBUG"`
	AppID     int32         `yaml:"app_id" env:"APP_ID"`
	AppSecret string        `yaml:"app_secret" env:"APP_SECRET"`
	Log       Log           `yaml:"log"`
	Server    Server        `yaml:"server"`
	Limiter   Limiter       `yaml:"limiter"`
	Redis     Redis         `yaml:"redis"`
	DB        DB            `yaml:"db"`
	Auth      Auth          `yaml:"auth"`
	Clients   ClientsConfig `yaml:"clients"`
	SMTP      SMTP          `yaml:"smtp"`
	Tasks     Tasks         `yaml:"tasks"`
	Metrics   Metrics       `yaml:"metrics"`
}

type Log struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"28"`
}

type Server struct {
	Port string `yaml:"port" env:"SERVER_PORT" env-default:"8000"`
	Host string `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`

	CorsAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled" env:"LIMITER_ENABLED"`
	Backend string  `yaml:"backend" env:"LIMITER_BACKEND" env-default:"memory"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
	// per-IP budget for signup and login
	AuthRequestsPerMinute int `yaml:"auth_requests_per_minute" env-default:"10"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type DB struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Dsn             string        `yaml:"dsn" env:"DB_DSN" env-required:"true"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	ConnectRetries  uint          `yaml:"connect_retries" env-default:"5"`
}

type Auth struct {
	Provider         string        `yaml:"provider" env:"AUTH_PROVIDER" env-default:"local"`
	CookieName       string        `yaml:"cookie_name" env-default:"saas-auth.session_token"`
	SecureCookies    bool          `yaml:"secure_cookies" env:"AUTH_SECURE_COOKIES"`
	SessionTTL       time.Duration `yaml:"session_ttl" env-default:"168h"`
	SessionUpdateAge time.Duration `yaml:"session_update_age" env-default:"24h"`
	BcryptCost       int           `yaml:"bcrypt_cost" env-default:"12"`
}

type Client struct {
	Addr         string        `yaml:"addr"`
	RetryTimeout time.Duration `yaml:"retry_timeout" env-default:"1s"`
	RetriesCount int           `yaml:"retries_count" env-default:"1"`
}

type ClientsConfig struct {
	SSO Client `yaml:"sso"`
}

type SMTP struct {
	Enabled      bool          `yaml:"enabled" env:"SMTP_ENABLED"`
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender       string        `yaml:"sender" env:"SMTP_SENDER" env-default:"Watchlist <no-reply@watchlist.local>"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"4"`
	QueueSize int `yaml:"queue_size" env-default:"100"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads an optional .env file, then the YAML config with env overrides.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	switch c.Auth.Provider {
	case AuthProviderLocal:
	case AuthProviderSSO:
		if c.Clients.SSO.Addr == "" {
			return errors.New("clients.sso.addr is required for the sso auth provider")
		}
		if c.AppSecret == "" {
			return errors.New("app_secret is required for the sso auth provider")
		}
	default:
		return fmt.Errorf("unknown auth provider %q", c.Auth.Provider)
	}
	switch c.Limiter.Backend {
	case LimiterBackendMemory, LimiterBackendRedis:
	default:
		return fmt.Errorf("unknown limiter backend %q", c.Limiter.Backend)
	}
	if c.Auth.SessionUpdateAge >= c.Auth.SessionTTL {
		return errors.New("auth.session_update_age must be shorter than auth.session_ttl")
	}
	return nil
}
