package app

import (
	"strings"
	"time"

	"github.com/yungbote/acadboost-backend/internal/ai/cache"
	"github.com/yungbote/acadboost-backend/internal/data/db"
	"github.com/yungbote/acadboost-backend/internal/platform/envutil"
)

type Config struct {
	Port              string
	LogMode           string
	Environment       string
	Version           string
	ServiceName       string
	AllowedOrigins    []string
	RedisAddr         string
	SessionTTL        time.Duration
	FlowFlightTimeout time.Duration
	ShutdownTimeout   time.Duration
	DB                db.Config
}

func LoadConfig() Config {
	return Config{
		Port:              envutil.String("PORT", "8080"),
		LogMode:           envutil.String("LOG_MODE", "development"),
		Environment:       envutil.String("APP_ENV", "local"),
		Version:           envutil.String("APP_VERSION", "dev"),
		ServiceName:       envutil.String("OTEL_SERVICE_NAME", "acadboost"),
		AllowedOrigins:    splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		RedisAddr:         envutil.String("REDIS_ADDR", ""),
		SessionTTL:        envutil.Seconds("SESSION_TTL_SECONDS", 24*time.Hour),
		FlowFlightTimeout: envutil.Seconds("FLOW_FLIGHT_TIMEOUT_SECONDS", cache.DefaultFlightTimeout),
		ShutdownTimeout:   envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		DB:                db.ConfigFromEnv(),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
