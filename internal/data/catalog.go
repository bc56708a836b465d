package data

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"

	"tick-backtest/internal/model"
)

// FeedInfo summarizes one feed file on disk.
type FeedInfo struct {
	Name      string          `json:"name"`
	Path      string          `json:"path"`
	Format    string          `json:"format"`
	Bars      string          `json:"bars,omitempty"`
	Snapshots int             `json:"snapshots"`
	Assets    []model.AssetID `json:"assets"`
	Start     time.Time       `json:"start,omitempty"`
	End       time.Time       `json:"end,omitempty"`
}

// DefaultFeedsDir returns FEEDS_DIR or ./data/feeds.
func DefaultFeedsDir() string {
	if dir := os.Getenv("FEEDS_DIR"); dir != "" {
		return dir
	}
	return "./data/feeds"
}

// ListFeeds describes every .json and .csv feed directly under dir, sorted
// by name. Files that fail to load are skipped and their errors combined.
// A missing directory yields an empty list.
func ListFeeds(dir string, cache *FeedCache) ([]FeedInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []FeedInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []FeedInfo{}
	var errs error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")
		if format != "json" && format != "csv" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		var feed *model.Feed
		if cache != nil {
			feed, err = cache.Load(path, format)
		} else {
			feed, err = LoadFeed(path, format)
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, Describe(feed, path, format))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, errs
}

// FindFeed resolves a feed name to its file under dir.
func FindFeed(dir, name string) (path, format string, err error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", "", os.ErrNotExist
	}
	for _, f := range []string{"json", "csv"} {
		p := filepath.Join(dir, name+"."+f)
		if _, err := os.Stat(p); err == nil {
			return p, f, nil
		}
	}
	return "", "", os.ErrNotExist
}

func Describe(feed *model.Feed, path, format string) FeedInfo {
	info := FeedInfo{
		Name:      feed.Name,
		Path:      path,
		Format:    format,
		Bars:      feed.Bars,
		Snapshots: len(feed.Snapshots),
	}
	if info.Name == "" {
		info.Name = feedName(path)
	}
	seen := map[model.AssetID]bool{}
	for _, s := range feed.Snapshots {
		for id := range s.Bars {
			seen[id] = true
		}
	}
	info.Assets = make([]model.AssetID, 0, len(seen))
	for id := range seen {
		info.Assets = append(info.Assets, id)
	}
	model.SortAssets(info.Assets)
	if n := len(feed.Snapshots); n > 0 {
		info.Start = feed.Snapshots[0].Dt
		info.End = feed.Snapshots[n-1].Dt
	}
	return info
}
