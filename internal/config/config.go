package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service configuration.
type Config struct {
	StoreBackend string
	DatabaseURL  string
	ServerAddr   string

	ConnectorID     string
	CallbackAddress string

	ProtocolTokenSecret string
	ProtocolTokenTTL    time.Duration

	NegotiationBatchSize      int
	NegotiationIterationWait  time.Duration
	NegotiationSendRetryLimit int
	NegotiationWorkers        int
	NegotiationLeaseTTL       time.Duration
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "dataspace_hub")
		pass := getenv("POSTGRES_PASSWORD", "dataspace_hub_pass")
		db := getenv("POSTGRES_DB", "dataspace_hub")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	backend := getenv("STORE_BACKEND", "postgres")
	if backend != "postgres" && backend != "memory" {
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", backend)
	}

	connectorID := os.Getenv("CONNECTOR_ID")
	if connectorID == "" {
		return nil, fmt.Errorf("CONNECTOR_ID is required")
	}
	callback := os.Getenv("CALLBACK_ADDRESS")
	if callback == "" {
		return nil, fmt.Errorf("CALLBACK_ADDRESS is required")
	}
	secret := os.Getenv("PROTOCOL_TOKEN_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("PROTOCOL_TOKEN_SECRET is required")
	}

	return &Config{
		StoreBackend: backend,
		DatabaseURL:  dsn,
		ServerAddr:   getenv("SERVER_ADDR", "0.0.0.0:8080"),

		ConnectorID:     connectorID,
		CallbackAddress: callback,

		ProtocolTokenSecret: secret,
		ProtocolTokenTTL:    parseDuration(getenv("PROTOCOL_TOKEN_TTL", "10m"), 10*time.Minute),

		NegotiationBatchSize:      parseInt(getenv("NEGOTIATION_BATCH_SIZE", "20"), 20),
		NegotiationIterationWait:  parseDuration(getenv("NEGOTIATION_ITERATION_WAIT", "1s"), time.Second),
		NegotiationSendRetryLimit: parseInt(getenv("NEGOTIATION_SEND_RETRY_LIMIT", "7"), 7),
		NegotiationWorkers:        parseInt(getenv("NEGOTIATION_WORKERS", "4"), 4),
		NegotiationLeaseTTL:       parseDuration(getenv("NEGOTIATION_LEASE_TTL", "60s"), 60*time.Second),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
