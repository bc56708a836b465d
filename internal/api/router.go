// Package api exposes backtests over HTTP.
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tick-backtest/internal/api/handlers"
	"tick-backtest/internal/api/middleware"
	"tick-backtest/internal/logging"
	"tick-backtest/internal/runner"
)

// Options configures NewRouter.
type Options struct {
	Runner   *runner.Runner
	Results  *handlers.ResultStore
	FeedsDir string
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	Logger         *zap.SugaredLogger
}

// NewRouter wires every route onto a new gin engine.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	router := gin.New()
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.Logger(log.Named("http")))
	router.Use(middleware.ErrorHandler(log))

	backtestHandler := handlers.NewBacktestHandler(opts.Runner, opts.Results, opts.FeedsDir, log)
	strategyHandler := handlers.NewStrategyHandler()
	rankHandler := handlers.NewRankHandler(opts.Runner, opts.FeedsDir)
	feedHandler := handlers.NewFeedHandler(opts.FeedsDir, opts.Runner.Feeds, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.GET("/backtest/:id/ledger", backtestHandler.GetLedger)
		v1.POST("/backtest/compare", backtestHandler.CompareBacktests)

		v1.GET("/strategies", strategyHandler.ListStrategies)
		v1.GET("/feeds", feedHandler.ListFeeds)
		v1.GET("/rank", rankHandler.RankAssets)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.Status(http.StatusNotFound)
	})
	return router
}
