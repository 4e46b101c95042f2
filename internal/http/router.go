package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/acadboost-backend/internal/http/handlers"
	httpMW "github.com/yungbote/acadboost-backend/internal/http/middleware"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	HealthHandler *httpH.HealthHandler
	FlowHandler   *httpH.FlowHandler
	CourseHandler *httpH.CourseHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	{
		// Catalogue
		if cfg.CourseHandler != nil {
			api.GET("/courses", cfg.CourseHandler.List)
		}

		// AI flows
		if cfg.FlowHandler != nil {
			ai := api.Group("/ai")
			ai.POST("/study-plan", cfg.FlowHandler.StudyPlan)
			ai.POST("/recommendations", cfg.FlowHandler.Recommendations)
			ai.POST("/summarize", cfg.FlowHandler.Summarize)
			ai.POST("/educhat", cfg.FlowHandler.EduChat)
			ai.DELETE("/session", cfg.FlowHandler.ClearSession)
			ai.GET("/runs", cfg.FlowHandler.ListRuns)
		}
	}

	return r
}
