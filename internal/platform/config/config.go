package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Policy content (areas, rule
// ordering, transition table) lives in the policy file; see policy.go.
type Server struct {
	Addr          string
	JWTSigningKey string

	// PostgresURL selects the postgres stores when set; empty means the
	// in-memory stores.
	PostgresURL string
	// RedisURL enables the shared identity cache when set.
	RedisURL string
	// KafkaBrokers enables the streaming audit publisher when set.
	KafkaBrokers []string
	AuditTopic   string

	// PolicyFile overrides the compiled-in policy defaults when set.
	PolicyFile string

	// StoreTimeout bounds every store call; on expiry the gateway surfaces
	// a retryable unavailable error rather than hanging.
	StoreTimeout time.Duration
	// RetryAttempts bounds the transient-error retry policy on store writes.
	RetryAttempts int
	// RetryBackoff is the base of the exponential backoff between attempts.
	RetryBackoff time.Duration

	IdentityCacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("GRANTGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "grantgate.audit"
	}

	return Server{
		Addr:             addr,
		JWTSigningKey:    jwtSigningKey,
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		KafkaBrokers:     brokers,
		AuditTopic:       auditTopic,
		PolicyFile:       os.Getenv("POLICY_FILE"),
		StoreTimeout:     envDuration("STORE_TIMEOUT", 5*time.Second),
		RetryAttempts:    envInt("RETRY_ATTEMPTS", 3),
		RetryBackoff:     envDuration("RETRY_BACKOFF", 50*time.Millisecond),
		IdentityCacheTTL: envDuration("IDENTITY_CACHE_TTL", 30*time.Second),
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}
