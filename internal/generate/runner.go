package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cubo/internal/notify"
	"cubo/internal/phrase"
	"cubo/internal/schedule"
)

// CategoryDaily rows land in the calendar pool; everything else goes to
// the mood pool.
const CategoryDaily = "Buongiorno"

// Categories fixes the batch shape and the iteration order over a parsed
// batch, so date assignment is deterministic.
var Categories = []string{CategoryDaily, "Triste", "Felice", "Nostalgica", "Stressata", "Pensiero"}

// NextStar flags tomorrow's calendar row after a run.
const NextStar = "⭐️ NEXT"

// Runner drives the generative-text service one call per week and
// persists the results. A malformed week is skipped, never fatal.
type Runner struct {
	Store  *phrase.Store
	Model  TextModel
	Notify notify.Notifier
	Log    *zap.Logger
	Rules  []schedule.EventRule

	Weeks           int
	Cooldown        time.Duration
	ErrorCooldown   time.Duration
	DedupLimit      int
	PromptExclusion int

	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run generates r.Weeks weekly batches starting the day after the last
// scheduled calendar date. Returns the number of phrases stored.
func (r *Runner) Run(ctx context.Context) (int, error) {
	start, err := r.startDate(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve start date: %w", err)
	}

	window, err := phrase.BuildWindow(ctx, r.Store, r.DedupLimit)
	if err != nil {
		return 0, fmt.Errorf("build dedup window: %w", err)
	}

	r.Notify.Send(ctx, fmt.Sprintf("🚀 Avvio generazione contenuti.\n📅 Si parte dal: %s", start.Format("02-01-2006")))

	total := 0
	assigned := 0 // calendar days handed out this run
	for week := 0; week < r.Weeks; week++ {
		prompt := r.buildPrompt(window.Tail(r.PromptExclusion))

		raw, err := r.Model.Generate(ctx, prompt)
		if err != nil {
			r.skipWeek(ctx, week, err)
			continue
		}
		batch, err := ParseBatch(raw)
		if err != nil {
			r.skipWeek(ctx, week, err)
			continue
		}

		var calRows []phrase.CalendarEntry
		var moodRows []phrase.MoodEntry
		for _, category := range Categories {
			for _, text := range batch[category] {
				text = strings.TrimSpace(text)
				if text == "" || window.Contains(text) {
					continue
				}
				if category == CategoryDaily {
					day := start.AddDate(0, 0, assigned)
					calRows = append(calRows, phrase.CalendarEntry{
						Date:     day.Format(phrase.DateLayout),
						Category: category,
						Text:     text,
						Kind:     r.kindFor(day),
					})
					assigned++
				} else {
					moodRows = append(moodRows, phrase.MoodEntry{
						Category: category,
						Text:     text,
						Kind:     "Frase",
						Marker:   phrase.MarkerAvailable,
					})
				}
				window.Add(text)
				total++
			}
		}

		if err := r.Store.AppendCalendar(ctx, calRows); err != nil {
			r.skipWeek(ctx, week, err)
			continue
		}
		if err := r.Store.AppendMood(ctx, moodRows); err != nil {
			r.skipWeek(ctx, week, err)
			continue
		}

		r.Log.Info("weekly batch stored",
			zap.Int("week", week),
			zap.Int("calendar_rows", len(calRows)),
			zap.Int("mood_rows", len(moodRows)))
		r.sleep(ctx, r.Cooldown)
	}

	r.markTomorrowNext(ctx)

	report, err := notify.WeeklyMoodReport(ctx, r.Store.DB, r.now())
	if err != nil {
		r.Log.Warn("weekly report failed", zap.Error(err))
		report = "⚠️ Report non disponibile."
	}
	r.Notify.Send(ctx, fmt.Sprintf("✅ AGGIORNAMENTO COMPLETATO\nFrasi totali: %d\n%s", total, report))

	return total, nil
}

// startDate is the day after the last scheduled entry, or today for an
// empty pool.
func (r *Runner) startDate(ctx context.Context) (time.Time, error) {
	last, err := r.Store.MaxCalendarDate(ctx)
	if err == phrase.ErrNotFound {
		now := r.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(phrase.DateLayout, last, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored date malformed: %w", err)
	}
	return t.AddDate(0, 0, 1), nil
}

// kindFor annotates rows that land on an event date: they are stored but
// hidden, the scheduler suppresses them at render time.
func (r *Runner) kindFor(day time.Time) string {
	for _, rule := range r.Rules {
		if rule.Matches(day) && rule.HiddenKind != "" {
			return rule.HiddenKind
		}
	}
	return "Frase"
}

func (r *Runner) buildPrompt(avoid []string) string {
	var b strings.Builder
	b.WriteString("Sei un fidanzato innamorato. Genera contenuti per una settimana.\n")
	b.WriteString(`OUTPUT JSON: chiavi "Buongiorno", "Triste", "Felice", "Nostalgica", "Stressata", "Pensiero".` + "\n\n")
	b.WriteString("REGOLE:\n")
	b.WriteString(`1. "Buongiorno": 7 frasi uniche, dolci, con 2 CITAZIONI.` + "\n")
	b.WriteString(`2. "Triste", "Felice", "Nostalgica", "Stressata": 7 frasi di supporto per mood.` + "\n")
	b.WriteString(`3. "Pensiero": 7 frasi BREVISSIME (max 6 parole) tipo "Ti penso", "Mi manchi", "Un bacio".` + "\n")
	b.WriteString(`4. USA SOLO APICE SINGOLO ('). NO virgolette doppie (").` + "\n")
	if len(avoid) > 0 {
		b.WriteString("5. Evita: " + strings.Join(avoid, " | ") + "\n")
	}
	return b.String()
}

// skipWeek implements the failure policy: log, tell the operator, cool
// down, move on to the next unit of work.
func (r *Runner) skipWeek(ctx context.Context, week int, err error) {
	r.Log.Error("weekly batch failed", zap.Int("week", week), zap.Error(err))
	r.Notify.Send(ctx, fmt.Sprintf("❌ Errore settimana %d: %v", week, err))
	r.sleep(ctx, r.ErrorCooldown)
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// markTomorrowNext stars tomorrow's calendar row so the lamp can announce
// that a greeting is staged without revealing it.
func (r *Runner) markTomorrowNext(ctx context.Context) {
	tomorrow := r.now().AddDate(0, 0, 1).Format(phrase.DateLayout)
	entries, err := r.Store.CalendarByDate(ctx, tomorrow)
	if err != nil || len(entries) == 0 {
		return
	}
	if err := r.Store.UpdateCalendarNote(ctx, entries[0].ID, NextStar); err != nil {
		r.Log.Warn("next star update failed", zap.Error(err))
	}
}
