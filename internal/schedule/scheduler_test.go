package schedule_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cubo/internal/db"
	"cubo/internal/phrase"
	"cubo/internal/schedule"
)

func newTestScheduler(t *testing.T, epoch time.Time) (*schedule.Scheduler, *phrase.Store) {
	t.Helper()
	gdb, err := db.Connect(filepath.Join(t.TempDir(), "cubo.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAndIndexes(gdb))

	store := &phrase.Store{DB: gdb}
	s := &schedule.Scheduler{
		Store: store,
		DB:    gdb,
		Rules: schedule.DefaultRules(epoch),
		Log:   zap.NewNop(),
	}
	return s, store
}

func TestResolveEventBeatsCalendar(t *testing.T) {
	s, store := newTestScheduler(t, time.Time{})
	ctx := context.Background()

	// the 14th matches the monthly anniversary rule even though a
	// calendar row exists for the same date
	ref := time.Date(2025, 3, 14, 9, 0, 0, 0, time.Local)
	require.NoError(t, store.AppendCalendar(ctx, []phrase.CalendarEntry{
		{Date: "2025-03-14", Category: "Buongiorno", Text: "frase generata"},
	}))

	res := s.ResolveToday(ctx, ref)
	assert.Equal(t, schedule.SourceEvent, res.Source)
	assert.NotEqual(t, "frase generata", res.Text)
}

func TestResolveEventCounter(t *testing.T) {
	epoch := time.Date(2024, 1, 14, 0, 0, 0, 0, time.Local)
	s, _ := newTestScheduler(t, epoch)

	res := s.ResolveToday(context.Background(), time.Date(2025, 3, 14, 9, 0, 0, 0, time.Local))
	assert.Equal(t, schedule.SourceEvent, res.Source)
	assert.Contains(t, res.Text, "14 mesi")
}

func TestResolveOverrideIsOneShot(t *testing.T) {
	s, store := newTestScheduler(t, time.Time{})
	ctx := context.Background()
	ref := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	require.NoError(t, store.AppendCalendar(ctx, []phrase.CalendarEntry{
		{Date: "2025-03-10", Category: "Buongiorno", Text: "frase generata"},
		{Date: "2025-03-10", Category: "Buongiorno", Text: "scritta a mano", Kind: schedule.KindManualOverride},
	}))

	res := s.ResolveToday(ctx, ref)
	assert.Equal(t, schedule.SourceOverride, res.Source)
	assert.Equal(t, "scritta a mano", res.Text)

	// consumed: the next resolution falls through to the calendar pool
	res = s.ResolveToday(ctx, ref)
	assert.Equal(t, schedule.SourceCalendar, res.Source)
	assert.Equal(t, "frase generata", res.Text)
}

func TestResolveDuplicateDatePrefersNewest(t *testing.T) {
	s, store := newTestScheduler(t, time.Time{})
	ctx := context.Background()
	ref := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	require.NoError(t, store.AppendCalendar(ctx, []phrase.CalendarEntry{
		{Date: "2025-03-10", Category: "Buongiorno", Text: "vecchia"},
	}))
	require.NoError(t, store.AppendCalendar(ctx, []phrase.CalendarEntry{
		{Date: "2025-03-10", Category: "Buongiorno", Text: "recente"},
	}))

	res := s.ResolveToday(ctx, ref)
	assert.Equal(t, "recente", res.Text)
}

func TestResolveSkipsHiddenRows(t *testing.T) {
	s, store := newTestScheduler(t, time.Time{})
	ctx := context.Background()
	// not an event date, but the row was generated onto one and moved
	ref := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	require.NoError(t, store.AppendCalendar(ctx, []phrase.CalendarEntry{
		{Date: "2025-03-10", Category: "Buongiorno", Text: "nascosta", Kind: "Natale (Nascosta)"},
	}))

	res := s.ResolveToday(ctx, ref)
	assert.Equal(t, schedule.SourceFallback, res.Source)
	assert.Equal(t, schedule.FallbackGreeting, res.Text)
}

func TestResolveFallbackOnEmptyPool(t *testing.T) {
	s, _ := newTestScheduler(t, time.Time{})

	res := s.ResolveToday(context.Background(), time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local))
	assert.Equal(t, schedule.SourceFallback, res.Source)
	assert.Equal(t, schedule.FallbackGreeting, res.Text)
}

func TestCountdown(t *testing.T) {
	s, _ := newTestScheduler(t, time.Time{})
	ctx := context.Background()

	require.NoError(t, s.DB.Create(&schedule.CountdownTarget{
		EndDate: "20/03/2025",
		Label:   "la nostra vacanza",
		Percent: "75%",
	}).Error)

	ref := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	msg, payload, ok := s.Countdown(ctx, ref)
	require.True(t, ok)
	assert.Equal(t, "Mancano 10 giorni a la nostra vacanza ❤️", msg)
	assert.Equal(t, "75%", payload)
}

func TestCountdownEventTomorrow(t *testing.T) {
	s, _ := newTestScheduler(t, time.Time{})
	ctx := context.Background()

	require.NoError(t, s.DB.Create(&schedule.CountdownTarget{
		EndDate: "11/03/2025",
		Label:   "domani",
	}).Error)

	// one day out, regardless of the time of day
	ref := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	msg, _, ok := s.Countdown(ctx, ref)
	require.True(t, ok)
	assert.Equal(t, "Mancano 1 giorni a domani ❤️", msg)

	late := time.Date(2025, 3, 10, 23, 30, 0, 0, time.Local)
	msg, _, ok = s.Countdown(ctx, late)
	require.True(t, ok)
	assert.Equal(t, "Mancano 1 giorni a domani ❤️", msg)
}

func TestCountdownMissingTarget(t *testing.T) {
	s, _ := newTestScheduler(t, time.Time{})
	_, _, ok := s.Countdown(context.Background(), time.Now())
	assert.False(t, ok)
}

func TestDaysSince(t *testing.T) {
	a := time.Date(2025, 1, 1, 23, 0, 0, 0, time.Local)
	b := time.Date(2025, 1, 11, 1, 0, 0, 0, time.Local)
	assert.Equal(t, 10, schedule.DaysSince(a, b))
}

func TestMonthsSince(t *testing.T) {
	epoch := time.Date(2024, 1, 14, 0, 0, 0, 0, time.Local)
	assert.Equal(t, 12, schedule.MonthsSince(epoch, time.Date(2025, 1, 14, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 11, schedule.MonthsSince(epoch, time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)))
}
