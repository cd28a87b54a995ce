// Package config builds runtime configuration from the environment so main
// stays lean. Every knob has a development-friendly default; deployments
// override through SCHEMEGATE_* variables.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures the full service configuration.
type Server struct {
	Addr string

	// Provider endpoints.
	NominatimBaseURL   string
	NominatimUserAgent string
	IPAPIBaseURL       string
	ProviderTimeout    time.Duration

	// Lock store backends. Redis wins over Postgres when both are set;
	// neither set means in-memory.
	RedisURL    string
	PostgresDSN string

	// Audit pipeline. Empty brokers disable the Kafka sink.
	KafkaBrokers []string
	KafkaTopic   string

	// UnresolvedPolicy is the raw policy string: "reject" or "default:<code>".
	UnresolvedPolicy string

	JWTSigningKey string
	SessionTTL    time.Duration

	// AdminKeyHash is the bcrypt hash of the admin override key. Empty
	// disables the admin surface.
	AdminKeyHash string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:               getenv("SCHEMEGATE_ADDR", ":8080"),
		NominatimBaseURL:   getenv("SCHEMEGATE_NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getenv("SCHEMEGATE_NOMINATIM_USER_AGENT", "schemegate/1.0"),
		IPAPIBaseURL:       getenv("SCHEMEGATE_IPAPI_URL", "https://ipapi.co"),
		ProviderTimeout:    getdur("SCHEMEGATE_PROVIDER_TIMEOUT", 3*time.Second),
		RedisURL:           os.Getenv("SCHEMEGATE_REDIS_URL"),
		PostgresDSN:        os.Getenv("SCHEMEGATE_POSTGRES_DSN"),
		KafkaBrokers:       getlist("SCHEMEGATE_KAFKA_BROKERS"),
		KafkaTopic:         getenv("SCHEMEGATE_KAFKA_TOPIC", "schemegate.audit"),
		UnresolvedPolicy:   getenv("SCHEMEGATE_UNRESOLVED_POLICY", "reject"),
		JWTSigningKey:      getenv("SCHEMEGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:         getdur("SCHEMEGATE_SESSION_TTL", 24*time.Hour),
		AdminKeyHash:       os.Getenv("SCHEMEGATE_ADMIN_KEY_HASH"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getlist(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
