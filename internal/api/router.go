package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"expansion-prep/internal/api/handlers"
	"expansion-prep/internal/api/middleware"
	"expansion-prep/internal/config"
	"expansion-prep/internal/data"
	"expansion-prep/internal/pipeline"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Engine    *pipeline.Engine
	Cases     handlers.CaseSource
	CasesRoot string
	Checks    config.Checks
	Runs      *handlers.RunStore
	Logger    *zap.Logger
}

// NewRouter wires the middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Engine == nil {
		d.Engine = pipeline.New(d.Logger)
	}
	if d.Cases == nil {
		d.Cases = (*data.CaseCache)(nil)
	}
	if d.Runs == nil {
		d.Runs = handlers.NewRunStore(handlers.DefaultRunLimit)
	}

	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.ErrorHandler(d.Logger))

	casesHandler := handlers.NewCasesHandler(d.CasesRoot)
	prepareHandler := handlers.NewPrepareHandler(d.Engine, d.Cases, d.CasesRoot, d.Checks, d.Runs, d.Logger)
	runsHandler := handlers.NewRunsHandler(d.Runs)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/cases", casesHandler.ListCases)
		v1.POST("/prepare", prepareHandler.Prepare)
		v1.GET("/runs/:id", runsHandler.GetRun)
		v1.GET("/runs/:id/initial-state", runsHandler.GetInitialState)
		v1.GET("/runs/:id/describe", runsHandler.Describe)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
