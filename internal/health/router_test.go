package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/milnali/shop-backend/pkg/config"
	"github.com/milnali/shop-backend/pkg/logger"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func newRouter(dbErr, redisErr error) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "health-test"})
	return NewRouter(cfg, logg, fakePinger{err: dbErr}, fakePinger{err: redisErr})
}

func TestHealthzOK(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthzDegradedWhenStoreDown(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(errors.New("down"), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"unreachable"`)
}

func TestMetricsEndpointServes(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
