package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"tick-backtest/internal/data"
	"tick-backtest/internal/logging"
	"tick-backtest/internal/model"
)

// gen-feed writes a feed file into the feeds directory, either generated
// from a seeded random walk or downloaded from the feed service.
func main() {
	var (
		name       = flag.String("name", "", "Feed name (file name without extension)")
		remote     = flag.String("remote", "", "Download this feed from FEED_SERVICE_URL instead of generating one")
		start      = flag.String("start", "", "Remote only: start date YYYY-MM-DD")
		end        = flag.String("end", "", "Remote only: end date YYYY-MM-DD")
		assets     = flag.Int("assets", 3, "Number of assets")
		ticks      = flag.Int("ticks", 250, "Number of snapshots")
		seed       = flag.Int64("seed", 1, "Random seed")
		startPrice = flag.Float64("start-price", 100, "Starting price of every asset")
		drift      = flag.Float64("drift", 0, "Per-tick log drift")
		volatility = flag.Float64("volatility", 0.01, "Per-tick log volatility")
		bars       = flag.String("bars", "daily", "Bar frequency: daily or minute")
		dir        = flag.String("dir", data.DefaultFeedsDir(), "Output directory")
	)
	flag.Parse()

	logger := logging.NewLogger().Named("gen-feed")
	defer func() { _ = logger.Sync() }()

	var (
		feed *model.Feed
		err  error
	)
	if *remote != "" {
		feed, err = fetch(logger, *remote, *start, *end, *bars)
	} else {
		feed, err = data.Generate(data.SyntheticParams{
			Assets:     *assets,
			Ticks:      *ticks,
			Seed:       *seed,
			StartPrice: *startPrice,
			Drift:      *drift,
			Volatility: *volatility,
			Bars:       *bars,
		})
	}
	if err != nil {
		logger.Fatalw("Failed to build feed", zap.Error(err))
	}
	if *name != "" {
		feed.Name = *name
	}

	path := filepath.Join(*dir, feed.Name+".json")
	if err := data.SaveFeedJSON(feed, path); err != nil {
		logger.Fatalw("Failed to save feed", "path", path, zap.Error(err))
	}
	info := data.Describe(feed, path, "json")
	fmt.Printf("Wrote %s: %d snapshots, %d assets", path, info.Snapshots, len(info.Assets))
	if info.Snapshots > 0 {
		fmt.Printf(", %s to %s", info.Start.Format(time.RFC3339), info.End.Format(time.RFC3339))
	}
	fmt.Println()
}

func fetch(logger *zap.SugaredLogger, name, start, end, bars string) (*model.Feed, error) {
	base := os.Getenv("FEED_SERVICE_URL")
	if base == "" {
		return nil, fmt.Errorf("FEED_SERVICE_URL is required with --remote")
	}
	params := data.FetchParams{Name: name, Bars: bars}
	var err error
	if start != "" {
		if params.Start, err = time.Parse("2006-01-02", start); err != nil {
			return nil, fmt.Errorf("invalid --start (expected YYYY-MM-DD): %w", err)
		}
	}
	if end != "" {
		if params.End, err = time.Parse("2006-01-02", end); err != nil {
			return nil, fmt.Errorf("invalid --end (expected YYYY-MM-DD): %w", err)
		}
	}
	client := data.NewFeedClient(os.Getenv("FEED_API_KEY"), base, logger)
	return client.FetchFeed(context.Background(), params)
}
