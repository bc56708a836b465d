package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tick-backtest/internal/analysis"
	"tick-backtest/internal/api/models"
	"tick-backtest/internal/backtest"
	"tick-backtest/internal/config"
	"tick-backtest/internal/data"
	"tick-backtest/internal/logging"
	"tick-backtest/internal/model"
	"tick-backtest/internal/runner"
)

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	runner   *runner.Runner
	results  *ResultStore
	feedsDir string
	log      *zap.SugaredLogger
}

// NewBacktestHandler creates a new backtest handler. Feed names in requests
// are resolved under feedsDir.
func NewBacktestHandler(r *runner.Runner, results *ResultStore, feedsDir string, log *zap.SugaredLogger) *BacktestHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &BacktestHandler{runner: r, results: results, feedsDir: feedsDir, log: log.Named("backtest")}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	cfg, err := h.buildConfig(req.Data, req.Config)
	if err != nil {
		respondConfigError(c, err)
		return
	}
	feed, ok := h.loadFeed(c, cfg.Data)
	if !ok {
		return
	}

	res, err := h.runner.Run(c.Request.Context(), cfg, feed)
	if err != nil {
		h.log.Warnw("Backtest failed", "strategy", cfg.Strategy.Name, zap.Error(err))
		respondRunError(c, err)
		return
	}
	stored := h.store(feed, res)

	resp := models.BacktestResponse{
		ID:      stored.ID,
		Status:  "completed",
		Summary: buildSummary(feed, res),
	}
	if req.Options.IncludeLedger {
		resp.Ledger = res.Ledger
	}
	c.JSON(http.StatusOK, resp)
}

// GetLedger handles GET /api/v1/backtest/:id/ledger
func (h *BacktestHandler) GetLedger(c *gin.Context) {
	id := c.Param("id")
	stored, ok := h.results.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "RESULT_NOT_FOUND",
			fmt.Sprintf("no result with id %q; results are kept for a limited number of runs", id))
		return
	}
	c.JSON(http.StatusOK, models.LedgerResponse{ID: stored.ID, Ledger: stored.Result.Ledger})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	cfgs := make(map[string]*config.Config, len(req.Variations))
	for _, v := range req.Variations {
		if _, dup := cfgs[v.Name]; dup {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("duplicate variation name %q", v.Name))
			return
		}
		cfg, err := h.buildConfig(req.Data, mergeConfig(req.BaseConfig, v.Config))
		if err != nil {
			respondConfigError(c, fmt.Errorf("%s: %w", v.Name, err))
			return
		}
		cfgs[v.Name] = cfg
	}

	// Every variation shares one data source; load it once.
	feed, ok := h.loadFeed(c, cfgs[req.Variations[0].Name].Data)
	if !ok {
		return
	}

	results := make(map[string]*backtest.Result, len(cfgs))
	ids := make(map[string]string, len(cfgs))
	for name, cfg := range cfgs {
		res, err := h.runner.Run(c.Request.Context(), cfg, feed)
		if err != nil {
			h.log.Warnw("Comparison run failed", "variation", name, zap.Error(err))
			respondRunError(c, fmt.Errorf("%s: %w", name, err))
			return
		}
		results[name] = res
		ids[name] = h.store(feed, res).ID
	}

	ranked := analysis.RankByReturn(results, feed.Bars)
	out := models.CompareBacktestResponse{Comparison: make([]models.ComparisonResult, 0, len(ranked))}
	for i, r := range ranked {
		out.Comparison = append(out.Comparison, models.ComparisonResult{
			Rank:    i + 1,
			Name:    r.Name,
			ID:      ids[r.Name],
			Summary: buildSummary(feed, results[r.Name]),
		})
	}
	c.JSON(http.StatusOK, out)
}

// buildConfig turns request fields into a validated run config.
func (h *BacktestHandler) buildConfig(ds models.DataSource, bc models.BacktestConfig) (*config.Config, error) {
	cfg := &config.Config{
		Data: config.DataConfig{
			Remote:    ds.Remote,
			Synthetic: ds.Synthetic,
			Limit:     ds.Limit,
		},
		Capital:        bc.Capital,
		FillPolicy:     bc.FillPolicy,
		SlippageSpread: bc.SlippageSpread,
		Transform:      bc.Transform,
		Strategy:       config.StrategyConfig{Name: bc.Strategy.Name, Params: bc.Strategy.Params},
	}
	if ds.Feed != "" {
		path, format, err := data.FindFeed(h.feedsDir, ds.Feed)
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", ds.Feed, err)
		}
		cfg.Data.Path, cfg.Data.Format = path, format
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *BacktestHandler) loadFeed(c *gin.Context, dc config.DataConfig) (*model.Feed, bool) {
	feed, err := h.runner.LoadFeed(c.Request.Context(), dc)
	if err != nil {
		respondFeedError(c, err)
		return nil, false
	}
	return feed, true
}

func (h *BacktestHandler) store(feed *model.Feed, res *backtest.Result) *StoredResult {
	stored := &StoredResult{
		ID:       uuid.NewString(),
		Feed:     feed.Name,
		Result:   res,
		Finished: time.Now(),
	}
	h.results.Put(stored)
	return stored
}

// mergeConfig overlays the set fields of override onto base.
func mergeConfig(base, override models.BacktestConfig) models.BacktestConfig {
	out := base
	if override.Capital != 0 {
		out.Capital = override.Capital
	}
	if override.FillPolicy != "" {
		out.FillPolicy = override.FillPolicy
	}
	if override.SlippageSpread != 0 {
		out.SlippageSpread = override.SlippageSpread
	}
	out.Transform = config.MergeTransform(base.Transform, override.Transform)
	st := config.MergeStrategy(
		config.StrategyConfig{Name: base.Strategy.Name, Params: base.Strategy.Params},
		config.StrategyConfig{Name: override.Strategy.Name, Params: override.Strategy.Params},
	)
	out.Strategy = models.StrategyConfig{Name: st.Name, Params: st.Params}
	return out
}

func buildSummary(feed *model.Feed, res *backtest.Result) models.BacktestSummary {
	s := models.BacktestSummary{
		Performance: analysis.ComputePerformance(res, feed.Bars),
		Feed:        feed.Name,
	}
	if n := len(res.Ledger); n > 0 {
		s.BacktestWindow = models.TimeWindow{Start: res.Ledger[0].Dt, End: res.Ledger[n-1].Dt}
	}
	return s
}
