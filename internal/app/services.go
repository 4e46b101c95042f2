package app

import (
	"fmt"

	"github.com/yungbote/acadboost-backend/internal/ai/cache"
	"github.com/yungbote/acadboost-backend/internal/ai/flows"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
	"github.com/yungbote/acadboost-backend/internal/platform/openai"
	"github.com/yungbote/acadboost-backend/internal/platform/youtube"
)

type Services struct {
	Flows *flows.Service
	Cache *cache.Cache
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	tools := openai.NewTools(youtube.SearchTool(clients.YoutubeClient))
	orch, err := flows.NewOrchestrator(log, clients.OpenaiClient, tools, reposet.FlowRun)
	if err != nil {
		return Services{}, fmt.Errorf("init flow orchestrator: %w", err)
	}
	log.Info("Flow tools registered", "tools", tools.Names())

	return Services{
		Flows: flows.NewService(orch),
		Cache: cache.New(log, clients.CacheStore, cache.WithFlightTimeout(cfg.FlowFlightTimeout)),
	}, nil
}
