package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tick-backtest/internal/api/models"
	"tick-backtest/internal/data"
	"tick-backtest/internal/logging"
)

// FeedHandler lists the feeds available to backtest requests.
type FeedHandler struct {
	dir   string
	cache *data.FeedCache
	log   *zap.SugaredLogger
}

func NewFeedHandler(dir string, cache *data.FeedCache, log *zap.SugaredLogger) *FeedHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &FeedHandler{dir: dir, cache: cache, log: log.Named("feeds")}
}

// ListFeeds handles GET /api/v1/feeds. Unreadable files are logged and
// left out of the listing.
func (h *FeedHandler) ListFeeds(c *gin.Context) {
	feeds, err := data.ListFeeds(h.dir, h.cache)
	if err != nil {
		if feeds == nil {
			respondError(c, http.StatusInternalServerError, "FEEDS_UNAVAILABLE", err.Error())
			return
		}
		h.log.Warnw("Skipped unreadable feeds", "dir", h.dir, zap.Error(err))
	}
	c.JSON(http.StatusOK, models.FeedsResponse{Dir: h.dir, Feeds: feeds})
}
