package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"voicebridge/internal/handler"
	transport "voicebridge/internal/http"
	"voicebridge/internal/mediastore"
	"voicebridge/internal/metrics"
	"voicebridge/internal/model"
	svcmock "voicebridge/internal/service/mock"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T, staticDir string) (http.Handler, *svcmock.MockAnnouncementService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := svcmock.NewMockAnnouncementService(ctrl)
	reg := prometheus.NewRegistry()

	e := transport.NewRouter(transport.RouterDeps{
		Announcements: handler.NewAnnouncementHandler(svc, "", 1<<20),
		Media:         handler.NewMediaHandler(mediastore.NewLocal(t.TempDir(), "/media/"), "/media/"),
		Health:        handler.NewHealthHandler(okPinger{}),
		Metrics:       metrics.New(reg),
		Gatherer:      reg,
		StaticDir:     staticDir,
	})
	return e, svc
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouterMetricsCountRoutes(t *testing.T) {
	h, svc := newTestRouter(t, "")
	svc.EXPECT().ListHistory(gomock.Any(), 0).Return([]model.Announcement{}, nil)

	require.Equal(t, http.StatusOK, get(h, "/api/health").Code)
	require.Equal(t, http.StatusOK, get(h, "/api/announcements").Code)

	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `voicebridge_http_requests_total{method="GET",route="/api/announcements",status="200"} 1`)
	require.Contains(t, rec.Body.String(), `voicebridge_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestRouterUnknownAPIRoute(t *testing.T) {
	h, _ := newTestRouter(t, "")
	require.Equal(t, http.StatusNotFound, get(h, "/api/nope").Code)
}

func TestRouterStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	h, _ := newTestRouter(t, dir)

	rec := get(h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "<html>app</html>", rec.Body.String())

	rec = get(h, "/app.js")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "console.log(1)", rec.Body.String())

	rec = get(h, "/history/123")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "<html>app</html>", rec.Body.String())

	require.Equal(t, http.StatusNotFound, get(h, "/api/nope").Code)
	require.Equal(t, http.StatusNotFound, get(h, "/media/missing.wav").Code)
}
