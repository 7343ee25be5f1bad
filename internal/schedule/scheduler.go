package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cubo/internal/phrase"
)

// FallbackGreeting is served when nothing is scheduled for today.
const FallbackGreeting = "Buongiorno! ❤️"

// KindManualOverride marks an operator-authored one-shot calendar row.
const KindManualOverride = "manual-override"

const noteConsumed = "consumed"

const (
	SourceEvent    = "event"
	SourceOverride = "override"
	SourceCalendar = "calendar"
	SourceFallback = "fallback"
)

type Resolution struct {
	Category string
	Text     string
	Source   string
}

// CountdownTarget is the single upcoming event the countdown view counts
// toward. Percent is the pre-computed lamp payload.
type CountdownTarget struct {
	ID      uint64 `gorm:"primaryKey"`
	EndDate string `gorm:"not null"` // DD/MM/YYYY
	Label   string `gorm:"not null"`
	Percent string `gorm:"not null;default:''"`

	CreatedAt time.Time
}

type Scheduler struct {
	Store *phrase.Store
	DB    *gorm.DB
	Rules []EventRule
	Log   *zap.Logger
}

// ResolveToday picks today's content. Precedence: recurring event rule,
// then unconsumed manual override, then newest calendar row for the date,
// then the fixed fallback. Overrides are one-shot: returning one marks it
// consumed.
func (s *Scheduler) ResolveToday(ctx context.Context, ref time.Time) Resolution {
	for _, rule := range s.Rules {
		if rule.Matches(ref) {
			return Resolution{Category: rule.Name, Text: rule.Render(ref), Source: SourceEvent}
		}
	}

	date := ref.Format(phrase.DateLayout)
	entries, err := s.Store.CalendarByDate(ctx, date)
	if err != nil {
		s.Log.Warn("calendar read failed", zap.String("date", date), zap.Error(err))
		return Resolution{Category: "Buongiorno", Text: FallbackGreeting, Source: SourceFallback}
	}

	for _, e := range entries {
		if e.Kind == KindManualOverride && e.Note != noteConsumed {
			if err := s.Store.UpdateCalendarNote(ctx, e.ID, noteConsumed); err != nil {
				s.Log.Warn("override consume failed", zap.Uint64("id", e.ID), zap.Error(err))
			}
			return Resolution{Category: e.Category, Text: e.Text, Source: SourceOverride}
		}
	}

	for _, e := range entries {
		if e.Kind == KindManualOverride || IsHiddenKind(e.Kind) {
			continue
		}
		// entries come newest first, so duplicates resolve to the latest append
		return Resolution{Category: e.Category, Text: e.Text, Source: SourceCalendar}
	}

	return Resolution{Category: "Buongiorno", Text: FallbackGreeting, Source: SourceFallback}
}

// IsHiddenKind reports whether a generated row was superseded by an event
// rule at write time and must not be rendered.
func IsHiddenKind(kind string) bool {
	return strings.Contains(kind, "(Nascosta)")
}

// Countdown resolves the configured countdown target into a message and
// the lamp payload.
func (s *Scheduler) Countdown(ctx context.Context, ref time.Time) (msg, payload string, ok bool) {
	var target CountdownTarget
	err := s.DB.WithContext(ctx).Order("id desc").First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", false
	}
	if err != nil {
		s.Log.Warn("countdown read failed", zap.Error(err))
		return "", "", false
	}

	end, err := time.ParseInLocation("02/01/2006", target.EndDate, time.Local)
	if err != nil {
		s.Log.Warn("countdown date malformed", zap.String("end_date", target.EndDate), zap.Error(err))
		return "", "", false
	}

	// whole-calendar-day difference: an event tomorrow reads 1 at any
	// time of day
	days := DaysSince(ref, end)
	return fmt.Sprintf("Mancano %d giorni a %s ❤️", days, target.Label), target.Percent, true
}
