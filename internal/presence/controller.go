// Package presence drives the shared lamp state. The row is a singleton in
// the store, written by every actor (client session, operator console,
// chat-bot) with no owner: last write observed wins, and an occasionally
// overwritten signal is an accepted gap, not hidden.
package presence

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cubo/internal/notify"
	"cubo/internal/phrase"
)

const (
	PowerOn  = "ON"
	PowerOff = "OFF"

	ModeBuongiorno = "BUONGIORNO"
	ModePensiero   = "PENSIERO"
	ModeCountdown  = "COUNTDOWN"
	ModeNone       = "NONE"
)

const lampRowID = 1

// DefaultPensiero is shown when a session re-enters while a pensiero is
// still on display but its payload was already taken.
const DefaultPensiero = "Ti penso! ❤️"

// LampState is the presence singleton. Mode holds one of the named modes
// or an uppercased mood tag while a mood phrase is on display.
// Invariant: Power == OFF implies Mode == NONE and Payload == "".
type LampState struct {
	ID                  uint64 `gorm:"primaryKey"`
	Power               string `gorm:"not null;default:'OFF'"`
	Mode                string `gorm:"not null;default:'NONE'"`
	Payload             string `gorm:"type:text;not null;default:''"`
	LastInteractionDate string `gorm:"not null;default:''"`

	UpdatedAt time.Time
}

// Visit is the outcome of a client session opening the app.
type Visit struct {
	View string // "pensiero", "buongiorno" or "moods"
	Text string
}

// Controller funnels every lamp transition through named operations so the
// last-write-wins behaviour stays visible and auditable.
type Controller struct {
	DB     *gorm.DB
	Log    *zap.Logger
	Notify notify.Notifier

	mu    sync.Mutex
	dwell *time.Timer
}

func (c *Controller) Read(ctx context.Context) (LampState, error) {
	st := LampState{ID: lampRowID, Power: PowerOff, Mode: ModeNone}
	err := c.DB.WithContext(ctx).FirstOrCreate(&st, LampState{ID: lampRowID}).Error
	return st, err
}

func (c *Controller) write(ctx context.Context, power, mode, payload string) error {
	if _, err := c.Read(ctx); err != nil {
		return err
	}
	return c.DB.WithContext(ctx).
		Model(&LampState{}).
		Where("id = ?", lampRowID).
		Updates(map[string]any{"power": power, "mode": mode, "payload": payload}).Error
}

// Light turns the lamp on and restarts the dwell timer; when the dwell
// elapses the lamp expires to OFF on its own.
func (c *Controller) Light(ctx context.Context, mode, payload string, dwell time.Duration) error {
	if err := c.write(ctx, PowerOn, mode, payload); err != nil {
		return err
	}
	c.resetDwell(dwell)
	return nil
}

// SetPensiero stages an operator message. No dwell starts until a client
// session actually renders it.
func (c *Controller) SetPensiero(ctx context.Context, text string) error {
	return c.write(ctx, PowerOn, ModePensiero, text)
}

// Off is the explicit turn-off: cancels any pending dwell and clears the
// state per the OFF invariant.
func (c *Controller) Off(ctx context.Context) error {
	c.mu.Lock()
	if c.dwell != nil {
		c.dwell.Stop()
		c.dwell = nil
	}
	c.mu.Unlock()
	return c.turnOff(ctx)
}

func (c *Controller) turnOff(ctx context.Context) error {
	if err := c.write(ctx, PowerOff, ModeNone, ""); err != nil {
		return err
	}
	c.Notify.Send(ctx, "🌑 La lampada si è spenta.")
	return nil
}

func (c *Controller) resetDwell(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dwell != nil {
		c.dwell.Stop()
	}
	c.dwell = time.AfterFunc(d, c.expire)
}

func (c *Controller) expire() {
	c.mu.Lock()
	c.dwell = nil
	c.mu.Unlock()
	if err := c.turnOff(context.Background()); err != nil {
		c.Log.Warn("lamp expiry failed", zap.Error(err))
	}
}

// TakePayload returns the staged payload and clears only the payload
// field, leaving power and mode for the dwell to wind down.
func (c *Controller) TakePayload(ctx context.Context) (string, error) {
	st, err := c.Read(ctx)
	if err != nil {
		return "", err
	}
	err = c.DB.WithContext(ctx).
		Model(&LampState{}).
		Where("id = ?", lampRowID).
		Update("payload", "").Error
	return st.Payload, err
}

// FirstVisit runs the session-entry precedence: a pending operator
// pensiero always pre-empts the daily flow; otherwise the first visit of
// the day resolves and lights today's greeting; later visits land on the
// mood view.
func (c *Controller) FirstVisit(ctx context.Context, now time.Time, dwell time.Duration, resolve func() (category, text string)) (Visit, error) {
	st, err := c.Read(ctx)
	if err != nil {
		return Visit{View: "moods"}, err
	}

	if st.Power == PowerOn && st.Mode == ModePensiero {
		text, err := c.TakePayload(ctx)
		if err != nil {
			return Visit{View: "moods"}, err
		}
		if text == "" {
			// a second session during the dwell: payload already
			// taken, keep showing the pensiero view
			text = DefaultPensiero
		}
		c.resetDwell(dwell)
		return Visit{View: "pensiero", Text: text}, nil
	}

	today := now.Format(phrase.DateLayout)
	if st.LastInteractionDate != today {
		_, text := resolve()
		if err := c.Light(ctx, ModeBuongiorno, text, dwell); err != nil {
			return Visit{View: "moods"}, err
		}
		if err := c.DB.WithContext(ctx).
			Model(&LampState{}).
			Where("id = ?", lampRowID).
			Update("last_interaction_date", today).Error; err != nil {
			c.Log.Warn("interaction date update failed", zap.Error(err))
		}
		return Visit{View: "buongiorno", Text: text}, nil
	}

	return Visit{View: "moods"}, nil
}
