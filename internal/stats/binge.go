// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package stats

import (
	"sort"

	"github.com/tomtom215/rewound/internal/models"
)

// BingeGapSeconds is the maximum pause between consecutive plays inside one
// binge session (30 minutes).
const BingeGapSeconds = 1800

// minBingeItems is the smallest run that counts as a binge.
const minBingeItems = 2

// FindLongestBinge returns the binge session with the largest summed play
// duration for a single account's records, or nil when fewer than two plays
// chain together.
//
// Sessions are maximal ascending-viewedAt runs whose consecutive gaps never
// exceed BingeGapSeconds. On equal total duration the earliest session wins.
func FindLongestBinge(records []models.PlayHistoryRecord) *models.BingeSession {
	session, _ := longestBinge(records)
	return session
}

// FindLongestBingeAcrossUsers runs binge detection per account and returns
// the single longest session server-wide. Accounts are visited in first-seen
// order; duration ties resolve to the earliest session start.
func FindLongestBingeAcrossUsers(records []models.PlayHistoryRecord) *models.BingeSession {
	byAccount := make(map[int][]models.PlayHistoryRecord)
	accountOrder := make([]int, 0)

	for i := range records {
		id := records[i].AccountID
		if _, ok := byAccount[id]; !ok {
			accountOrder = append(accountOrder, id)
		}
		byAccount[id] = append(byAccount[id], records[i])
	}

	var best *models.BingeSession
	var bestSeconds int64
	for _, id := range accountOrder {
		session, seconds := longestBinge(byAccount[id])
		if session == nil {
			continue
		}
		if best == nil || seconds > bestSeconds ||
			(seconds == bestSeconds && session.StartTime < best.StartTime) {
			best = session
			bestSeconds = seconds
		}
	}
	return best
}

// longestBinge scans one account's plays and returns the winning session
// plus its raw duration in seconds for cross-account comparison.
func longestBinge(records []models.PlayHistoryRecord) (*models.BingeSession, int64) {
	if len(records) < minBingeItems {
		return nil, 0
	}

	sorted := make([]models.PlayHistoryRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ViewedAt < sorted[j].ViewedAt
	})

	bestStart, bestEnd := -1, -1
	bestSeconds := int64(-1)

	curStart := 0
	curSeconds := sorted[0].Duration

	for i := 1; i <= len(sorted); i++ {
		boundary := i == len(sorted) ||
			sorted[i].ViewedAt-sorted[i-1].ViewedAt > BingeGapSeconds
		if !boundary {
			curSeconds += sorted[i].Duration
			continue
		}

		// Close the current session; strict comparison keeps the earliest
		// session on duration ties.
		if i-curStart >= minBingeItems && curSeconds > bestSeconds {
			bestStart, bestEnd, bestSeconds = curStart, i-1, curSeconds
		}
		if i < len(sorted) {
			curStart = i
			curSeconds = sorted[i].Duration
		}
	}

	if bestStart < 0 {
		return nil, 0
	}

	last := sorted[bestEnd]
	return &models.BingeSession{
		StartTime:    sorted[bestStart].ViewedAt,
		EndTime:      last.ViewedAt + last.Duration,
		TotalMinutes: roundSecondsToMinutes(bestSeconds),
		ItemCount:    bestEnd - bestStart + 1,
		Titles:       sessionTitles(sorted[bestStart : bestEnd+1]),
	}, bestSeconds
}

// sessionTitles collects play titles in session order, collapsing
// consecutive repeats so an episode run lists its show once.
func sessionTitles(records []models.PlayHistoryRecord) []string {
	titles := make([]string, 0, len(records))
	for i := range records {
		title := records[i].Title
		if title == "" {
			continue
		}
		if len(titles) > 0 && titles[len(titles)-1] == title {
			continue
		}
		titles = append(titles, title)
	}
	return titles
}
