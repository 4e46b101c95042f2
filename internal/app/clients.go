package app

import (
	"fmt"

	"github.com/yungbote/acadboost-backend/internal/ai/cache"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
	"github.com/yungbote/acadboost-backend/internal/platform/openai"
	"github.com/yungbote/acadboost-backend/internal/platform/youtube"
)

type Clients struct {
	OpenaiClient  openai.Client
	YoutubeClient youtube.Client
	CacheStore    cache.Store
	redis         *cache.RedisStore
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Openai
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Youtube
	yt, err := youtube.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init youtube client: %w", err)
	}

	// Session cache
	out := Clients{OpenaiClient: openaiClient, YoutubeClient: yt}
	if cfg.RedisAddr != "" {
		rs, err := cache.NewRedisStore(log, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis session cache: %w", err)
		}
		out.CacheStore = rs
		out.redis = rs
	} else {
		log.Info("REDIS_ADDR not set; using in-memory session cache")
		out.CacheStore = cache.NewMemoryStore()
	}
	return out, nil
}

func (c Clients) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
