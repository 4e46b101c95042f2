package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/acadboost-backend/internal/http/handlers"
	httpMW "github.com/yungbote/acadboost-backend/internal/http/middleware"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

func TestRouterHealthAndTraceHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Log:           logger.Nop(),
		ServiceName:   "acadboost-test",
		HealthHandler: httpH.NewHealthHandler(nil),
	})

	for _, path := range []string{"/healthcheck", "/readyz"} {
		req := httptest.NewRequest(nethttp.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != nethttp.StatusOK {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
		if rec.Header().Get(httpMW.HeaderTraceID) == "" || rec.Header().Get(httpMW.HeaderRequestID) == "" {
			t.Fatalf("%s missing trace headers: %v", path, rec.Header())
		}
	}
}

func TestRouterSkipsUnconfiguredHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{Log: logger.Nop()})

	req := httptest.NewRequest(nethttp.MethodPost, "/api/ai/educhat", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}
