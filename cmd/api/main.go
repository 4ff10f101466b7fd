package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"expansion-prep/internal/api"
	"expansion-prep/internal/api/handlers"
	"expansion-prep/internal/config"
	"expansion-prep/internal/data"
	"expansion-prep/internal/pipeline"
)

func main() {
	cfgPath := pflag.StringP("config", "c", os.Getenv("EXPANSION_PREP_CONFIG"), "Path to YAML config")
	port := pflag.IntP("port", "p", 0, "Listen port (overrides api.port)")
	pflag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *port != 0 {
		cfg.API.Port = *port
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var cache *data.CaseCache
	if cfg.Cache.Enabled {
		cache = data.NewCaseCache(cfg.Cache.TTL)
		defer cache.Close()
	}

	root := cfg.API.CasesRoot
	if root == "" {
		root = "."
	}
	router := api.NewRouter(api.Deps{
		Engine:    pipeline.New(logger),
		Cases:     cache,
		CasesRoot: root,
		Checks:    cfg.Checks,
		Runs:      handlers.NewRunStore(handlers.DefaultRunLimit),
		Logger:    logger,
	})

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("starting API server", zap.String("addr", addr), zap.String("cases_root", root), zap.Bool("cache", cfg.Cache.Enabled))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
