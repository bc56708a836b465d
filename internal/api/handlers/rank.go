package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tick-backtest/internal/analysis"
	"tick-backtest/internal/api/models"
	"tick-backtest/internal/config"
	"tick-backtest/internal/data"
	"tick-backtest/internal/runner"
)

const defaultRankLimit = 10

// RankHandler handles ranking-related requests
type RankHandler struct {
	runner   *runner.Runner
	feedsDir string
}

func NewRankHandler(r *runner.Runner, feedsDir string) *RankHandler {
	return &RankHandler{runner: r, feedsDir: feedsDir}
}

// RankAssets handles GET /api/v1/rank
func (h *RankHandler) RankAssets(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	path, format, err := data.FindFeed(h.feedsDir, req.Feed)
	if err != nil {
		respondFeedError(c, err)
		return
	}
	feed, err := h.runner.LoadFeed(c.Request.Context(), config.DataConfig{Path: path, Format: format})
	if err != nil {
		respondFeedError(c, err)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultRankLimit
	}
	ranked := analysis.RankByOracleProfit(feed.Snapshots)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	resp := models.RankResponse{Feed: feed.Name, Rankings: make([]models.Ranking, 0, len(ranked))}
	for i, p := range ranked {
		resp.Rankings = append(resp.Rankings, models.Ranking{Rank: i + 1, AssetPotential: p})
	}
	c.JSON(http.StatusOK, resp)
}
