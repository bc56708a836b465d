package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelTransform = "transform"
	LabelStrategy  = "strategy"
	LabelStatus    = "status"
	LabelCache     = "cache"
	LabelResult    = "result"
)

// Batch transform metrics
var (
	// TransformTicks counts snapshots appended to a transform's panel.
	TransformTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "batch_transform",
		Name:      "ticks_total",
		Help:      "Total number of snapshots appended to batch transform windows",
	}, []string{LabelTransform})

	// TransformComputations counts invocations of the user computation.
	TransformComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "batch_transform",
		Name:      "computations_total",
		Help:      "Total number of window computations",
	}, []string{LabelTransform})

	// TransformMemoHits counts calls answered from the memo without recomputation.
	TransformMemoHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "batch_transform",
		Name:      "memo_hits_total",
		Help:      "Total number of calls served from the memoized result",
	}, []string{LabelTransform})

	TransformErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "batch_transform",
		Name:      "errors_total",
		Help:      "Total number of errors returned by window computations",
	}, []string{LabelTransform})
)

// Backtest metrics
var (
	BacktestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "backtest",
		Name:      "runs_total",
		Help:      "Total number of backtest runs",
	}, []string{LabelStrategy, LabelStatus})

	BacktestTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "backtest",
		Name:      "ticks_total",
		Help:      "Total number of ticks processed by the backtest engine",
	}, []string{LabelStrategy})

	BacktestRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "backtest",
		Name:      "run_duration_seconds",
		Help:      "Wall clock duration of backtest runs",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{LabelStrategy})
)

// Blotter metrics
var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "blotter",
		Name:      "orders_total",
		Help:      "Total number of orders accepted by the blotter",
	})

	OrdersFilled = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "blotter",
		Name:      "fills_total",
		Help:      "Total number of orders filled",
	})
)

// CacheLookups counts feed and result cache lookups, labeled hit or miss.
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Total number of cache lookups",
}, []string{LabelCache, LabelResult})
