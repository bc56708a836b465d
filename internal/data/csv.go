package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"tick-backtest/internal/model"
)

// LoadFeedCSV reads a long-format CSV: one row per (dt, asset) with a
// column per field.
//
//	dt,asset,price,volume
//	2024-01-02T00:00:00Z,0,10.5,1200
//
// Empty cells are left out of the bar. Rows sharing a dt form one snapshot.
func LoadFeedCSV(path string) (*model.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	feed, err := DecodeFeedCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	feed.Name = feedName(path)
	return feed, nil
}

func DecodeFeedCSV(r io.Reader) (*model.Feed, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 3 || strings.ToLower(header[0]) != "dt" || strings.ToLower(header[1]) != "asset" {
		return nil, errors.New("header must start with dt,asset and name at least one field")
	}
	fields := header[2:]

	var snaps []model.Snapshot
	index := map[time.Time]int{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		dt, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid dt: %w", line, err)
		}
		id, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid asset: %w", line, err)
		}
		i, ok := index[dt]
		if !ok {
			i = len(snaps)
			index[dt] = i
			snaps = append(snaps, model.NewSnapshot(dt))
		}
		for j, name := range fields {
			cell := strings.TrimSpace(rec[2+j])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", line, name, err)
			}
			if math.IsInf(v, 0) {
				return nil, fmt.Errorf("line %d: %s is infinite", line, name)
			}
			snaps[i].Set(model.AssetID(id), name, v)
		}
	}
	SortSnapshots(snaps)
	return &model.Feed{Snapshots: snaps}, nil
}

// LoadFeed dispatches on format ("json" or "csv").
func LoadFeed(path, format string) (*model.Feed, error) {
	switch format {
	case "", "json":
		return LoadFeedJSON(path)
	case "csv":
		return LoadFeedCSV(path)
	default:
		return nil, fmt.Errorf("unsupported feed format %q", format)
	}
}
