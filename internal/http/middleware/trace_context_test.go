package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/acadboost-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())

	var td *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		td = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderTraceID, "trace-1")
	req.Header.Set(HeaderSessionID, " tab-42 ")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if td == nil {
		t.Fatalf("trace data missing")
	}
	if td.TraceID != "trace-1" || td.SessionID != "tab-42" || td.RequestID == "" {
		t.Fatalf("trace data=%+v", td)
	}
	if rec.Header().Get(HeaderTraceID) != "trace-1" {
		t.Fatalf("trace header=%q", rec.Header().Get(HeaderTraceID))
	}
	if rec.Header().Get(HeaderRequestID) != td.RequestID {
		t.Fatalf("request header=%q", rec.Header().Get(HeaderRequestID))
	}
}
