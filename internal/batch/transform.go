package batch

import (
	"time"

	"go.uber.org/zap"

	"tick-backtest/internal/logging"
	"tick-backtest/internal/metrics"
	"tick-backtest/internal/model"
)

// State is the warm-up state of a transform.
type State int

const (
	// Warming: the window has not yet held WindowLength ticks.
	Warming State = iota
	// Ready: the window is full. Terminal.
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "warming"
}

// Func is a computation over a window plus extra arguments.
type Func[R any] func(w *Window, args Args) (R, error)

type memo[R any] struct {
	args   Args
	result R
}

// BatchTransform runs a Func over a rolling window of snapshots, recomputing
// only when the refresh period has elapsed or the extra arguments changed.
// Not safe for concurrent use; one instance belongs to one algorithm.
type BatchTransform[R any] struct {
	cfg   Config
	fn    Func[R]
	panel *RollingPanel
	log   *zap.SugaredLogger

	tick         int
	lastComputed int
	lastDt       time.Time
	memo         *memo[R]
}

// Option configures a BatchTransform.
type Option func(*options)

type options struct {
	logger *zap.SugaredLogger
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = l }
}

// New validates cfg and returns a transform wrapping fn.
func New[R any](cfg Config, fn Func[R], opts ...Option) (*BatchTransform[R], error) {
	if fn == nil {
		return nil, configErr("func", "computation is required")
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	panel, err := NewRollingPanel(cfg.WindowLength, cfg.Sids, cfg.Fields)
	if err != nil {
		return nil, err
	}
	return &BatchTransform[R]{
		cfg:   cfg,
		fn:    fn,
		panel: panel,
		log:   o.logger.With("transform", cfg.Name),
	}, nil
}

// HandleData feeds one snapshot and returns the current result. ok is false
// while no result has been computed yet. A snapshot whose Dt equals the
// last appended one is treated as a repeat of that tick and is not appended
// again. A snapshot without a Dt, or one older than the last tick, is
// rejected with a ConfigurationError.
//
// An error from the computation is returned unchanged and the previous
// result stays in place.
func (bt *BatchTransform[R]) HandleData(snap model.Snapshot, args Args) (R, bool, error) {
	if snap.Dt.IsZero() {
		var zero R
		return zero, false, configErr("dt", "snapshot has no timestamp")
	}
	if bt.tick > 0 && snap.Dt.Before(bt.lastDt) {
		var zero R
		return zero, false, configErr("dt", "snapshot at %s is before the last tick at %s",
			snap.Dt.Format(time.RFC3339), bt.lastDt.Format(time.RFC3339))
	}
	if bt.tick == 0 || snap.Dt.After(bt.lastDt) {
		if err := bt.panel.appendOwned(Filter(snap, bt.cfg.Sids, bt.cfg.Fields)); err != nil {
			var zero R
			return zero, false, err
		}
		bt.tick++
		bt.lastDt = snap.Dt
		metrics.TransformTicks.WithLabelValues(bt.cfg.Name).Inc()
	}

	eligible := bt.panel.IsFull() || !bt.cfg.ComputeOnlyFull
	if !eligible {
		return bt.Result()
	}
	refresh := bt.tick-bt.lastComputed >= bt.cfg.RefreshPeriod
	argsChanged := bt.memo != nil && !bt.memo.args.Equal(args)
	if !refresh && !argsChanged {
		if bt.memo != nil {
			metrics.TransformMemoHits.WithLabelValues(bt.cfg.Name).Inc()
		}
		return bt.Result()
	}

	w := bt.panel.CurrentWindow()
	if bt.cfg.CleanNaNs {
		w = Sanitize(w, bt.cfg.NaNPolicy)
	}
	res, err := bt.fn(w, args)
	if err != nil {
		metrics.TransformErrors.WithLabelValues(bt.cfg.Name).Inc()
		var zero R
		return zero, false, err
	}
	metrics.TransformComputations.WithLabelValues(bt.cfg.Name).Inc()
	bt.log.Debugw("Recomputed window", "tick", bt.tick, "rows", w.Len(), "argsChanged", argsChanged)

	bt.memo = &memo[R]{args: args.clone(), result: res}
	bt.lastComputed = bt.tick
	return res, true, nil
}

// Result returns the memoized result without feeding a tick.
func (bt *BatchTransform[R]) Result() (R, bool, error) {
	if bt.memo == nil {
		var zero R
		return zero, false, nil
	}
	return bt.memo.result, true, nil
}

// State is Ready once the window has filled, Warming before.
func (bt *BatchTransform[R]) State() State {
	if bt.panel.IsFull() {
		return Ready
	}
	return Warming
}

// Full reports whether the window has filled.
func (bt *BatchTransform[R]) Full() bool { return bt.panel.IsFull() }

// Ticks is the number of distinct ticks fed so far.
func (bt *BatchTransform[R]) Ticks() int { return bt.tick }

// LastComputedAt is the tick of the latest computation, 0 when none.
func (bt *BatchTransform[R]) LastComputedAt() int { return bt.lastComputed }

// Panel exposes the underlying window buffer for inspection.
func (bt *BatchTransform[R]) Panel() *RollingPanel { return bt.panel }

// Config returns the configuration with defaults applied.
func (bt *BatchTransform[R]) Config() Config { return bt.cfg }
