package data

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"tick-backtest/internal/model"
)

func LoadFeedJSON(path string) (*model.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	feed, err := DecodeFeedJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if feed.Name == "" {
		feed.Name = feedName(path)
	}
	return feed, nil
}

// DecodeFeedJSON reads a feed and sorts its snapshots by time.
func DecodeFeedJSON(r io.Reader) (*model.Feed, error) {
	var feed model.Feed
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	SortSnapshots(feed.Snapshots)
	for i := range feed.Snapshots {
		if feed.Snapshots[i].Bars == nil {
			feed.Snapshots[i].Bars = map[model.AssetID]model.Bar{}
		}
	}
	return &feed, nil
}

// SaveFeedJSON writes feed to path, creating the directory if needed.
func SaveFeedJSON(feed *model.Feed, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feed: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}
	return nil
}

// SortSnapshots orders snapshots by Dt, keeping equal times in input order.
func SortSnapshots(snaps []model.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Dt.Before(snaps[j].Dt) })
}

// Limit returns the first n snapshots, or all of them when n <= 0.
func Limit(snaps []model.Snapshot, n int) []model.Snapshot {
	if n > 0 && n < len(snaps) {
		return snaps[:n]
	}
	return snaps
}

func feedName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
