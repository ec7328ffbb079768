// Package config loads server and board configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config captures everything main needs to wire the registry.
type Config struct {
	Addr          string `env:"TREASURE_HUNT_ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`

	// SuperAdmin is the address seeded with the reserved super-admin role.
	SuperAdmin string `env:"SUPER_ADMIN_ADDRESS,required"`

	// Board parameters, fixed at startup.
	CollectionName   string `env:"COLLECTION_NAME" envDefault:"Treasure Hunt"`
	CollectionSymbol string `env:"COLLECTION_SYMBOL" envDefault:"HUNT"`
	GridSize         int    `env:"GRID_SIZE" envDefault:"100"`
	MaxTreasures     int    `env:"MAX_TREASURES" envDefault:"10"`
	InitialValue     int64  `env:"INITIAL_TREASURE_VALUE" envDefault:"100"`
	TokenURI         string `env:"TREASURE_TOKEN_URI" envDefault:"https://tokens.example.com/treasure.json"`

	// Optional backends; empty values keep the in-memory wiring.
	PostgresDSN  string   `env:"POSTGRES_DSN"`
	RedisAddr    string   `env:"REDIS_ADDR"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic   string   `env:"AUDIT_TOPIC" envDefault:"treasure-hunt.audit"`
}

// Load builds a Config from environment variables so main stays lean.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
