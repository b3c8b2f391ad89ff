package config

import (
	"os"
	"time"
)

// Storage backend selectors.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	Environment       string
	StoreBackend      string
	StorePath         string
	DatabaseURL       string
	StrictTransitions bool
	JWTSigningKey     string
	TokenTTL          time.Duration
}

var defaultTokenTTL = 15 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CREDGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	environment := os.Getenv("CREDGATE_ENV")
	if environment == "" {
		environment = "development"
	}

	backend := os.Getenv("CREDGATE_STORE")
	switch backend {
	case BackendMemory, BackendFile, BackendPostgres:
	default:
		backend = BackendMemory
	}

	storePath := os.Getenv("CREDGATE_STORE_PATH")
	if storePath == "" {
		storePath = "access_requests.json"
	}

	tokenTTL := defaultTokenTTL
	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		if duration, err := time.ParseDuration(ttlStr); err == nil {
			tokenTTL = duration
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:              addr,
		Environment:       environment,
		StoreBackend:      backend,
		StorePath:         storePath,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StrictTransitions: os.Getenv("STRICT_TRANSITIONS") == "true",
		JWTSigningKey:     jwtSigningKey,
		TokenTTL:          tokenTTL,
	}
}
