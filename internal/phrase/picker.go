package phrase

import (
	"context"
	"math/rand"
	"strings"

	"go.uber.org/zap"
)

// FallbackText is returned when the mood pool is exhausted. The client
// render path never sees an error.
const FallbackText = "Sei speciale! ❤️"

const pickAttempts = 3

// Picker drives the marker lifecycle over the mood pool. Every transition
// goes through CompareAndSetMarker, so two uncoordinated actors cannot
// consume the same row: the loser of the race just retries on a fresh read.
type Picker struct {
	Store *Store
	Log   *zap.Logger
}

// Pick implements the direct-pick protocol: choose an AVAILABLE row whose
// category matches (case-insensitive substring), falling back to any
// AVAILABLE row, transition it to USED and return its text.
func (p *Picker) Pick(ctx context.Context, category string) string {
	for attempt := 0; attempt < pickAttempts; attempt++ {
		rows, err := p.Store.MoodByMarker(ctx, MarkerAvailable)
		if err != nil {
			p.Log.Warn("mood pool read failed", zap.Error(err))
			return FallbackText
		}
		if len(rows) == 0 {
			return FallbackText
		}

		candidates := matchCategory(rows, category)
		if len(candidates) == 0 {
			// never come back empty-handed while anything remains
			candidates = rows
		}

		rand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, row := range candidates {
			won, err := p.Store.CompareAndSetMarker(ctx, row.ID, MarkerAvailable, MarkerUsed)
			if err != nil {
				p.Log.Warn("marker update failed", zap.Uint64("id", row.ID), zap.Error(err))
				return FallbackText
			}
			if won {
				return row.Text
			}
		}
		// every candidate was claimed under us; re-read and try again
	}
	return FallbackText
}

// ConsumeNext implements the staged-pick protocol: consume the single NEXT
// row (promoting one first if none is staged) and immediately pre-stage a
// new NEXT so an offer is always announced before it is revealed.
func (p *Picker) ConsumeNext(ctx context.Context) string {
	for attempt := 0; attempt < pickAttempts; attempt++ {
		staged, err := p.Store.MoodByMarker(ctx, MarkerNext)
		if err != nil {
			p.Log.Warn("mood pool read failed", zap.Error(err))
			return FallbackText
		}

		if len(staged) == 0 {
			if !p.promote(ctx, 0) {
				return FallbackText
			}
			continue
		}

		row := staged[0]
		won, err := p.Store.CompareAndSetMarker(ctx, row.ID, MarkerNext, MarkerUsed)
		if err != nil {
			p.Log.Warn("marker update failed", zap.Uint64("id", row.ID), zap.Error(err))
			return FallbackText
		}
		if !won {
			continue
		}

		p.promote(ctx, row.ID)
		return row.Text
	}
	return FallbackText
}

// promote stages a random AVAILABLE row (excluding exclude) as NEXT.
// Returns false when no row could be staged.
func (p *Picker) promote(ctx context.Context, exclude uint64) bool {
	rows, err := p.Store.MoodByMarker(ctx, MarkerAvailable)
	if err != nil {
		p.Log.Warn("mood pool read failed", zap.Error(err))
		return false
	}
	pool := rows[:0]
	for _, r := range rows {
		if r.ID != exclude {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		return false
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, r := range pool {
		won, err := p.Store.CompareAndSetMarker(ctx, r.ID, MarkerAvailable, MarkerNext)
		if err != nil {
			p.Log.Warn("marker update failed", zap.Uint64("id", r.ID), zap.Error(err))
			return false
		}
		if won {
			return true
		}
	}
	return false
}

func matchCategory(rows []MoodEntry, category string) []MoodEntry {
	needle := strings.ToLower(strings.TrimSpace(category))
	if needle == "" {
		return nil
	}
	var out []MoodEntry
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Category), needle) {
			out = append(out, r)
		}
	}
	return out
}
