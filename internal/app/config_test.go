package app

import (
	"testing"
	"time"

	"github.com/yungbote/acadboost-backend/internal/ai/cache"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SESSION_TTL_SECONDS", "")
	t.Setenv("FLOW_FLIGHT_TIMEOUT_SECONDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Fatalf("port=%q", cfg.Port)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("redis=%q", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("ttl=%v", cfg.SessionTTL)
	}
	if cfg.FlowFlightTimeout != cache.DefaultFlightTimeout {
		t.Fatalf("flight timeout=%v", cfg.FlowFlightTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins=%v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFlightTimeout(t *testing.T) {
	t.Setenv("FLOW_FLIGHT_TIMEOUT_SECONDS", "45")
	if got := LoadConfig().FlowFlightTimeout; got != 45*time.Second {
		t.Fatalf("flight timeout=%v", got)
	}
}
