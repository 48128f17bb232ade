// Package config loads process configuration from the environment and the
// currency configuration file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger backend selectors.
const (
	BackendBinary = "binary"
	BackendGRPC   = "grpc"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	DatabaseURL   string
	RedisURL      string
	RunMigrations bool

	JWTSecret string

	LedgerBackend        string // BackendBinary or BackendGRPC
	BinaryLedgerAddr     string
	GRPCLedgerTarget     string
	LedgerConnectTimeout time.Duration

	// Client-credentials grant for the RPC ledger backend.
	LedgerTokenURL     string
	LedgerClientID     string
	LedgerClientSecret string

	CurrenciesFile string
	RolesFile      string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("LEDGER_BACKEND", BackendBinary)
	v.SetDefault("LEDGER_CONNECT_TIMEOUT", "5s")
	v.SetDefault("CURRENCIES_FILE", "currencies.json")
	v.SetDefault("ROLES_FILE", "roles.json")

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		IsProduction:         v.GetBool("IS_PRODUCTION"),
		DatabaseURL:          v.GetString("PGSQL_URL"),
		RedisURL:             v.GetString("REDIS_URL"),
		RunMigrations:        v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		LedgerBackend:        v.GetString("LEDGER_BACKEND"),
		BinaryLedgerAddr:     v.GetString("BINARY_LEDGER_ADDR"),
		GRPCLedgerTarget:     v.GetString("GRPC_LEDGER_TARGET"),
		LedgerConnectTimeout: v.GetDuration("LEDGER_CONNECT_TIMEOUT"),
		LedgerTokenURL:       v.GetString("LEDGER_TOKEN_URL"),
		LedgerClientID:       v.GetString("LEDGER_CLIENT_ID"),
		LedgerClientSecret:   v.GetString("LEDGER_CLIENT_SECRET"),
		CurrenciesFile:       v.GetString("CURRENCIES_FILE"),
		RolesFile:            v.GetString("ROLES_FILE"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.LedgerBackend {
	case BackendBinary:
		if cfg.BinaryLedgerAddr == "" {
			return nil, fmt.Errorf("BINARY_LEDGER_ADDR is required for the binary ledger backend")
		}
	case BackendGRPC:
		if cfg.GRPCLedgerTarget == "" {
			return nil, fmt.Errorf("GRPC_LEDGER_TARGET is required for the grpc ledger backend")
		}
		if cfg.LedgerTokenURL == "" || cfg.LedgerClientID == "" || cfg.LedgerClientSecret == "" {
			return nil, fmt.Errorf("LEDGER_TOKEN_URL, LEDGER_CLIENT_ID and LEDGER_CLIENT_SECRET are required for the grpc ledger backend")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
	}

	return cfg, nil
}
