package presence_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cubo/internal/db"
	"cubo/internal/notify"
	"cubo/internal/presence"
)

func newTestController(t *testing.T) *presence.Controller {
	t.Helper()
	gdb, err := db.Connect(filepath.Join(t.TempDir(), "cubo.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAndIndexes(gdb))
	return &presence.Controller{DB: gdb, Log: zap.NewNop(), Notify: notify.Nop{}}
}

func TestReadDefaultsOff(t *testing.T) {
	c := newTestController(t)

	st, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, presence.PowerOff, st.Power)
	assert.Equal(t, presence.ModeNone, st.Mode)
	assert.Empty(t, st.Payload)
}

func TestSetPensieroThenRead(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.SetPensiero(ctx, "Ti penso! ❤️"))

	st, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.PowerOn, st.Power)
	assert.Equal(t, presence.ModePensiero, st.Mode)
	assert.Equal(t, "Ti penso! ❤️", st.Payload)
}

func TestDwellExpiresToOff(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.Light(ctx, presence.ModeBuongiorno, "buongiorno", 30*time.Millisecond))

	st, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.PowerOn, st.Power)

	assert.Eventually(t, func() bool {
		st, err := c.Read(ctx)
		return err == nil && st.Power == presence.PowerOff
	}, 2*time.Second, 10*time.Millisecond)

	st, err = c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.ModeNone, st.Mode)
	assert.Empty(t, st.Payload, "OFF clears the payload")
}

func TestOffCancelsDwell(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.Light(ctx, presence.ModeBuongiorno, "buongiorno", time.Hour))
	require.NoError(t, c.Off(ctx))

	st, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.PowerOff, st.Power)
	assert.Equal(t, presence.ModeNone, st.Mode)
	assert.Empty(t, st.Payload)
}

func TestFirstVisitLightsGreetingOncePerDay(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)

	resolve := func() (string, string) { return "Buongiorno", "buongiorno amore" }

	visit, err := c.FirstVisit(ctx, now, time.Hour, resolve)
	require.NoError(t, err)
	assert.Equal(t, "buongiorno", visit.View)
	assert.Equal(t, "buongiorno amore", visit.Text)

	st, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.PowerOn, st.Power)
	assert.Equal(t, presence.ModeBuongiorno, st.Mode)
	assert.Equal(t, "2025-03-10", st.LastInteractionDate)

	// same day again: straight to the mood view
	visit, err = c.FirstVisit(ctx, now.Add(2*time.Hour), time.Hour, resolve)
	require.NoError(t, err)
	assert.Equal(t, "moods", visit.View)

	// next day: greeting is due again
	visit, err = c.FirstVisit(ctx, now.AddDate(0, 0, 1), time.Hour, resolve)
	require.NoError(t, err)
	assert.Equal(t, "buongiorno", visit.View)
}

func TestFirstVisitPensieroPreemptsDaily(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)

	require.NoError(t, c.SetPensiero(ctx, "pensiero in attesa"))

	visit, err := c.FirstVisit(ctx, now, time.Hour, func() (string, string) {
		t.Fatal("daily flow must not run while a pensiero is pending")
		return "", ""
	})
	require.NoError(t, err)
	assert.Equal(t, "pensiero", visit.View)
	assert.Equal(t, "pensiero in attesa", visit.Text)

	// payload consumed, lamp stays on for the dwell
	st, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.PowerOn, st.Power)
	assert.Empty(t, st.Payload)
}

func TestFirstVisitHoldsPensieroThroughDwell(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)

	require.NoError(t, c.SetPensiero(ctx, "pensiero in attesa"))

	visit, err := c.FirstVisit(ctx, now, time.Hour, func() (string, string) {
		t.Fatal("daily flow must not run while a pensiero is pending")
		return "", ""
	})
	require.NoError(t, err)
	assert.Equal(t, "pensiero", visit.View)

	// a second session during the dwell: payload already taken, but the
	// showing pensiero must not be overwritten by the daily greeting
	visit, err = c.FirstVisit(ctx, now.Add(time.Minute), time.Hour, func() (string, string) {
		t.Fatal("daily flow must not pre-empt a showing pensiero")
		return "", ""
	})
	require.NoError(t, err)
	assert.Equal(t, "pensiero", visit.View)
	assert.Equal(t, presence.DefaultPensiero, visit.Text)

	st, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, presence.ModePensiero, st.Mode)
}
