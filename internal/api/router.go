package api

import (
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/hlsget/hlsget/internal/api/controllers"
	"github.com/hlsget/hlsget/internal/app"
)

func RegisterRoutes(e *echo.Echo, app *app.Context) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			app.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.CORS("*"))

	ctrl := &controllers.JobsController{App: app}

	e.GET("/health", ctrl.HandleHealth)

	e.POST("/api/parse", ctrl.HandleParse)
	e.POST("/api/download", ctrl.HandleDownload)
	e.POST("/api/process", ctrl.HandleProcess)

	e.GET("/api/jobs", ctrl.HandleListJobs)
	e.GET("/api/jobs/:id", ctrl.HandleJobStatus)
	e.DELETE("/api/jobs/:id", ctrl.HandleCancelJob)

	e.GET("/api/history", ctrl.HandleHistory)

	// Single-use token download for locally stored artifacts
	e.GET("/files/:token", ctrl.HandleFileDownload)
}
