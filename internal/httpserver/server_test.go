package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	cfgpkg "github.com/taoyao-code/io-board/internal/config"
	appmetrics "github.com/taoyao-code/io-board/internal/metrics"
)

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHealthzAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := cfgpkg.HTTPConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second}
	reg := appmetrics.NewRegistry()
	appmetrics.NewAppMetrics(reg)
	srv := New(cfg, "/metrics", appmetrics.Handler(reg), nil)

	if rr := get(t, srv, "/healthz"); rr.Code != http.StatusOK {
		t.Fatalf("/healthz code=%d", rr.Code)
	}
	rr := get(t, srv, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics code=%d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}
	if rr := get(t, srv, "/debug/pprof/"); rr.Code != http.StatusNotFound {
		t.Fatalf("pprof should be disabled, code=%d", rr.Code)
	}
}

func TestRegisterAndPprof(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := cfgpkg.HTTPConfig{Addr: ":0", Pprof: cfgpkg.HTTPPprof{Enable: true, Prefix: "debug/pprof/"}}
	srv := New(cfg, "", nil, nil)
	srv.Register(func(r *gin.Engine) {
		r.GET("/custom", func(c *gin.Context) { c.String(http.StatusOK, "x") })
	})

	if rr := get(t, srv, "/custom"); rr.Code != http.StatusOK {
		t.Fatalf("/custom code=%d", rr.Code)
	}
	if rr := get(t, srv, "/debug/pprof/"); rr.Code != http.StatusOK {
		t.Fatalf("/debug/pprof/ code=%d", rr.Code)
	}
	if rr := get(t, srv, "/debug/pprof/goroutine?debug=1"); rr.Code != http.StatusOK {
		t.Fatalf("/debug/pprof/goroutine code=%d", rr.Code)
	}
}
