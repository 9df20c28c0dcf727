// Package config содержит логику чтения конфигурации клиента BankOp и песочницы API.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Виды хранилища клиента.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

const (
	defaultAPIURL     = "http://localhost:3333"
	defaultDebounce   = 500 * time.Millisecond
	defaultRunAddress = "localhost:3333"
	defaultTokenTTL   = 24 * time.Hour
)

// Client содержит параметры конфигурации клиента BankOp.
type Client struct {
	APIURL         string        `env:"BANKOP_API_URL"`
	Storage        string        `env:"BANKOP_STORAGE"`
	StoragePath    string        `env:"BANKOP_STORAGE_PATH"`
	RedisAddr      string        `env:"BANKOP_REDIS_ADDR"`
	RequestTimeout time.Duration `env:"BANKOP_REQUEST_TIMEOUT"`
	Debounce       time.Duration `env:"BANKOP_DEBOUNCE"`
}

// ParseClient считывает конфигурацию клиента из флагов args и переменных окружения.
// Возвращает аргументы, оставшиеся после флагов (команду и её параметры).
func ParseClient(name string, args []string) (*Client, []string, error) {
	envCfg := Client{}
	if err := env.Parse(&envCfg); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Client{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.APIURL, "u", defaultAPIURL, "BankOp API base URL")
	fs.StringVar(&cfg.Storage, "s", StorageFile, "storage backend: file or redis")
	fs.StringVar(&cfg.StoragePath, "p", "", "storage file path")
	fs.StringVar(&cfg.RedisAddr, "redis", "localhost:6379", "redis address")
	fs.DurationVar(&cfg.RequestTimeout, "t", 0, "request timeout, 0 means none")
	fs.DurationVar(&cfg.Debounce, "debounce", defaultDebounce, "field validation debounce")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	if envCfg.APIURL != "" {
		cfg.APIURL = envCfg.APIURL
	}
	if envCfg.Storage != "" {
		cfg.Storage = envCfg.Storage
	}
	if envCfg.StoragePath != "" {
		cfg.StoragePath = envCfg.StoragePath
	}
	if envCfg.RedisAddr != "" {
		cfg.RedisAddr = envCfg.RedisAddr
	}
	if envCfg.RequestTimeout != 0 {
		cfg.RequestTimeout = envCfg.RequestTimeout
	}
	if envCfg.Debounce != 0 {
		cfg.Debounce = envCfg.Debounce
	}

	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Storage != StorageFile && cfg.Storage != StorageRedis {
		return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	return cfg, fs.Args(), nil
}

// Server содержит параметры конфигурации песочницы API.
type Server struct {
	RunAddress  string        `env:"RUN_ADDRESS"`
	DatabaseURI string        `env:"DATABASE_URI"`
	TokenSecret string        `env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"`
}

// ParseServer считывает конфигурацию песочницы из флагов командной строки и переменных окружения.
func ParseServer() (*Server, error) {
	cfg := &Server{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envTokenSecret := cfg.TokenSecret
	envTokenTTL := cfg.TokenTTL

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.TokenSecret, "k", "bankop-secret", "access token signing key")
	flag.DurationVar(&cfg.TokenTTL, "ttl", defaultTokenTTL, "access token lifetime")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envTokenSecret != "" {
		cfg.TokenSecret = envTokenSecret
	}
	if envTokenTTL != 0 {
		cfg.TokenTTL = envTokenTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	return cfg, nil
}
