// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import (
	"sort"

	"github.com/tomtom215/rewound/internal/models"
)

// DefaultTopN is the list length used when no explicit limit is configured.
const DefaultTopN = 10

// itemAgg accumulates plays for one ranking bucket.
type itemAgg struct {
	key   string
	title string
	thumb string
	count int
}

// RankByMediaKey produces the top-N items of the given media type, counted
// by plays and grouped by media key. Ordering is descending by count with
// ties kept in first-seen order, so ranks are dense, 1-based, and stable
// across identical inputs. Fewer distinct items than N returns all of them.
func RankByMediaKey(records []models.PlayHistoryRecord, mediaType string, topN int) []models.RankedItem {
	if topN <= 0 {
		topN = DefaultTopN
	}

	byKey := make(map[string]*itemAgg)
	order := make([]*itemAgg, 0)

	for i := range records {
		r := &records[i]
		if r.MediaType != mediaType {
			continue
		}
		agg, ok := byKey[r.MediaKey]
		if !ok {
			agg = &itemAgg{key: r.MediaKey, title: r.Title, thumb: r.Thumb}
			byKey[r.MediaKey] = agg
			order = append(order, agg)
		}
		agg.count++
		if agg.thumb == "" {
			agg.thumb = r.Thumb
		}
		if agg.title == "" {
			agg.title = r.Title
		}
	}

	return rankAggregates(order, topN)
}

// RankGenres produces the top-N genres counted by plays. Every genre tag on
// a record contributes one count to that genre's bucket, so a play tagged
// with three genres scores in three buckets.
func RankGenres(records []models.PlayHistoryRecord, topN int) []models.RankedItem {
	if topN <= 0 {
		topN = DefaultTopN
	}

	byGenre := make(map[string]*itemAgg)
	order := make([]*itemAgg, 0)

	for i := range records {
		for _, genre := range records[i].Genres {
			if genre == "" {
				continue
			}
			agg, ok := byGenre[genre]
			if !ok {
				agg = &itemAgg{key: genre, title: genre}
				byGenre[genre] = agg
				order = append(order, agg)
			}
			agg.count++
		}
	}

	return rankAggregates(order, topN)
}

// rankAggregates sorts buckets and assigns dense 1-based ranks.
func rankAggregates(order []*itemAgg, topN int) []models.RankedItem {
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})
	if len(order) > topN {
		order = order[:topN]
	}

	items := make([]models.RankedItem, len(order))
	for i, agg := range order {
		items[i] = models.RankedItem{
			Rank:  i + 1,
			Key:   agg.key,
			Title: agg.title,
			Count: agg.count,
			Thumb: agg.thumb,
		}
	}
	return items
}

// RankViewers produces the top-N accounts ranked by total watch time.
// Input order is the first-seen order used for tie-breaking, matching the
// stable ordering the event log returns.
func RankViewers(totals []models.UserWatchTotal, topN int) []models.TopViewer {
	if topN <= 0 {
		topN = DefaultTopN
	}

	ranked := make([]models.UserWatchTotal, len(totals))
	copy(ranked, totals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSeconds > ranked[j].TotalSeconds
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	viewers := make([]models.TopViewer, len(ranked))
	for i, total := range ranked {
		viewers[i] = models.TopViewer{
			Rank:         i + 1,
			UserID:       total.UserID,
			Username:     total.Username,
			TotalMinutes: roundSecondsToMinutes(total.TotalSeconds),
		}
	}
	return viewers
}
