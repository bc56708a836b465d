package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tick-backtest/internal/api/handlers"
	"tick-backtest/internal/api/models"
	"tick-backtest/internal/data"
	"tick-backtest/internal/runner"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	feed, err := data.Generate(data.SyntheticParams{Assets: 3, Ticks: 40, Seed: 11})
	require.NoError(t, err)
	require.NoError(t, data.SaveFeedJSON(feed, filepath.Join(dir, "daily.json")))

	r, err := runner.New(nil)
	require.NoError(t, err)
	store, err := handlers.NewResultStore(4)
	require.NoError(t, err)
	return NewRouter(Options{Runner: r, Results: store, FeedsDir: dir}), dir
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunBacktestThenLedger(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/backtest", models.BacktestRequest{
		Data: models.DataSource{Feed: "daily"},
		Config: models.BacktestConfig{
			Strategy: models.StrategyConfig{Name: "mavg_crossover", Params: map[string]any{"short_window": 3, "long_window": 8}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[models.BacktestResponse](t, rec)
	assert.Equal(t, "completed", resp.Status)
	assert.NotEmpty(t, resp.ID)
	assert.Empty(t, resp.Ledger, "ledger only when asked")
	assert.Equal(t, 40, resp.Summary.Ticks)
	assert.Equal(t, "daily", resp.Summary.Feed)

	rec = do(t, router, http.MethodGet, "/api/v1/backtest/"+resp.ID+"/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ledger := decode[models.LedgerResponse](t, rec)
	assert.Len(t, ledger.Ledger, 40)

	rec = do(t, router, http.MethodGet, "/api/v1/backtest/unknown/ledger", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RESULT_NOT_FOUND", decode[models.ErrorResponse](t, rec).Error.Code)
}

func TestRunBacktestSyntheticWithLedger(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/backtest", map[string]any{
		"data":    map[string]any{"synthetic": map[string]any{"assets": 1, "ticks": 12, "seed": 2}, "limit": 10},
		"config":  map[string]any{"strategy": map[string]any{"name": "record_ticks"}},
		"options": map[string]any{"include_ledger": true},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[models.BacktestResponse](t, rec)
	require.Len(t, resp.Ledger, 10)
	assert.Equal(t, 10.0, resp.Ledger[9].Recorded["incr"])
}

func TestRunBacktestErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "malformed",
			body:   "not an object",
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name: "unknown feed",
			body: models.BacktestRequest{
				Data:   models.DataSource{Feed: "missing"},
				Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "buy_and_hold"}},
			},
			status: http.StatusNotFound,
			code:   "FEED_NOT_FOUND",
		},
		{
			name: "invalid config",
			body: models.BacktestRequest{
				Data:   models.DataSource{Feed: "daily"},
				Config: models.BacktestConfig{FillPolicy: "vwap", Strategy: models.StrategyConfig{Name: "buy_and_hold"}},
			},
			status: http.StatusBadRequest,
			code:   "INVALID_CONFIG",
		},
		{
			name: "unknown strategy",
			body: models.BacktestRequest{
				Data:   models.DataSource{Feed: "daily"},
				Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "martingale"}},
			},
			status: http.StatusBadRequest,
			code:   "INVALID_STRATEGY",
		},
		{
			name: "remote without service",
			body: models.BacktestRequest{
				Data:   models.DataSource{Remote: "daily"},
				Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "buy_and_hold"}},
			},
			status: http.StatusBadRequest,
			code:   "DATA_LOAD_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/v1/backtest", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, rec).Error.Code)
		})
	}
}

func TestCompareBacktests(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/backtest/compare", models.CompareBacktestRequest{
		Data: models.DataSource{Feed: "daily"},
		BaseConfig: models.BacktestConfig{
			Strategy: models.StrategyConfig{Name: "mavg_crossover", Params: map[string]any{"short_window": 3, "long_window": 8}},
		},
		Variations: []models.BacktestVariation{
			{Name: "fast"},
			{Name: "slow", Config: models.BacktestConfig{Strategy: models.StrategyConfig{Params: map[string]any{"long_window": 15}}}},
			{Name: "oracle", Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "oracle"}}},
			{Name: "idle", Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "record_ticks"}}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[models.CompareBacktestResponse](t, rec)
	require.Len(t, resp.Comparison, 4)
	assert.Equal(t, "oracle", resp.Comparison[0].Name, "perfect foresight ranks first")
	for i, r := range resp.Comparison {
		assert.Equal(t, i+1, r.Rank)
		assert.NotEmpty(t, r.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Comparison[i-1].Summary.TotalReturn, r.Summary.TotalReturn)
		}
	}

	rec = do(t, router, http.MethodPost, "/api/v1/backtest/compare", models.CompareBacktestRequest{
		Data:       models.DataSource{Feed: "daily"},
		BaseConfig: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "buy_and_hold"}},
		Variations: []models.BacktestVariation{{Name: "a"}, {Name: "a"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStrategiesAndFeeds(t *testing.T) {
	router, dir := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/strategies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	strategies := decode[map[string][]models.StrategyInfo](t, rec)["strategies"]
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "mavg_crossover")
	assert.Contains(t, names, "oracle")

	rec = do(t, router, http.MethodGet, "/api/v1/feeds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feeds := decode[models.FeedsResponse](t, rec)
	assert.Equal(t, dir, feeds.Dir)
	require.Len(t, feeds.Feeds, 1)
	assert.Equal(t, 40, feeds.Feeds[0].Snapshots)
	assert.Len(t, feeds.Feeds[0].Assets, 3)
}

func TestRankAssets(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/rank?feed=daily&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[models.RankResponse](t, rec)
	require.Len(t, resp.Rankings, 2)
	assert.Equal(t, 1, resp.Rankings[0].Rank)
	assert.GreaterOrEqual(t, resp.Rankings[0].OracleProfit, resp.Rankings[1].OracleProfit)

	rec = do(t, router, http.MethodGet, "/api/v1/rank", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/rank?feed=nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/backtest", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Less(t, rec.Code, 300)
}

func TestUnknownAPIRoute(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/api/v1/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
