package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "voicebridge/docs"
	"voicebridge/internal/handler"
	"voicebridge/internal/metrics"
)

// RouterDeps holds everything the router mounts.
type RouterDeps struct {
	Announcements *handler.AnnouncementHandler
	Media         *handler.MediaHandler
	Health        *handler.HealthHandler
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	StaticDir     string
}

func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware(deps.Metrics))

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")
	deps.Health.RegisterRoutes(api)
	deps.Announcements.RegisterRoutes(api)
	deps.Media.RegisterRoutes(e)

	registerStatic(e, deps.StaticDir)

	return e
}
