package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	PGDSN      string
	MongoURI   string
	RedisAddr  string
	RabbitURL  string

	HoldTTL           time.Duration
	PriceTickInterval time.Duration
	SweepInterval     time.Duration

	// Absolute floor for any ticked price. Flights are additionally
	// floored at 80% of their base fare, whichever is higher.
	PriceFloor float64

	OTLPEndpoint string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:        envString("LISTEN_ADDR", ":8080"),
		PGDSN:             os.Getenv("PG_DSN"),
		MongoURI:          os.Getenv("MONGO_URI"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RabbitURL:         os.Getenv("RABBIT_URL"),
		HoldTTL:           envDuration("HOLD_TTL", 5*time.Minute),
		PriceTickInterval: envDuration("PRICE_TICK_INTERVAL", 5*time.Second),
		SweepInterval:     envDuration("SWEEP_INTERVAL", 30*time.Second),
		PriceFloor:        envFloat("PRICE_FLOOR", 49.0),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, _ := time.ParseDuration(os.Getenv(key))
	if d == 0 {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f == 0 {
		return fallback
	}
	return f
}
