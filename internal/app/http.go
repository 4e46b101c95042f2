package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/acadboost-backend/internal/http"
	httpH "github.com/yungbote/acadboost-backend/internal/http/handlers"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Flow   *httpH.FlowHandler
	Course *httpH.CourseHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, reposet Repos) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Flow:   httpH.NewFlowHandler(log, services.Flows, services.Cache, reposet.Course, reposet.FlowRun),
		Course: httpH.NewCourseHandler(log, reposet.Course),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *http.Server {
	return http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		HealthHandler:  handlers.Health,
		FlowHandler:    handlers.Flow,
		CourseHandler:  handlers.Course,
	})
}
