package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "github.com/kfrye1212/digitalpulse-tld/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	JWTSigningKey string

	// AssetIssuance enables minting a unique token alongside each
	// registration. Off by default.
	AssetIssuance bool

	// AuthorityWallet and TreasuryWallet are the deployment-time identities
	// used to initialize the service registry. They are injected here rather
	// than compiled into the registry component; both remain updatable after
	// deployment through the authority-gated operations.
	AuthorityWallet string
	TreasuryWallet  string

	Redis RedisConfig

	// KafkaBrokers enables publishing change notifications to Kafka when
	// non-empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// RedisConfig holds connection settings for the resolve cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ResolveCacheTTL enforces retention for cached domain lookups.
var ResolveCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TLD_REGISTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cfg := Server{
		Addr:            addr,
		PostgresDSN:     os.Getenv("TLD_REGISTRY_POSTGRES_DSN"),
		JWTSigningKey:   jwtSigningKey,
		AssetIssuance:   os.Getenv("TLD_REGISTRY_ASSET_ISSUANCE") == "true",
		AuthorityWallet: os.Getenv("TLD_REGISTRY_AUTHORITY_WALLET"),
		TreasuryWallet:  os.Getenv("TLD_REGISTRY_TREASURY_WALLET"),
		Redis: RedisConfig{
			URL:          os.Getenv("TLD_REGISTRY_REDIS_URL"),
			PoolSize:     envInt("TLD_REGISTRY_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("TLD_REGISTRY_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaTopic: envDefault("TLD_REGISTRY_KAFKA_TOPIC", "registry.events"),
	}
	if brokers := os.Getenv("TLD_REGISTRY_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = pstrings.DedupeAndTrim(strings.Split(brokers, ","))
	}
	return cfg
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
