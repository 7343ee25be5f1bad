package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cubo/internal/notify"
	"cubo/internal/phrase"
	"cubo/internal/presence"
	"cubo/internal/schedule"
)

type MoodHandler struct {
	Picker    *phrase.Picker
	Store     *phrase.Store
	Scheduler *schedule.Scheduler
	Lamp      *presence.Controller
	Notify    notify.Notifier
	Log       *zap.Logger

	Dwell          time.Duration
	CountdownDwell time.Duration
}

// Pick serves the on-demand mood flow: consume one phrase, light the
// lamp with it, audit and notify. Never returns an error body to the
// client.
func (h *MoodHandler) Pick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mood := strings.TrimSpace(chi.URLParam(r, "mood"))
	if mood == "" {
		http.Error(w, "mood required", http.StatusBadRequest)
		return
	}

	text := h.Picker.Pick(ctx, mood)

	if err := h.Lamp.Light(ctx, strings.ToUpper(mood), text, h.Dwell); err != nil {
		h.Log.Warn("lamp update failed", zap.Error(err))
	}
	if err := h.Store.LogInteraction(ctx, mood, time.Now()); err != nil {
		h.Log.Warn("interaction log failed", zap.Error(err))
	}
	h.Notify.Send(ctx, fmt.Sprintf("Mood: %s ☁️\nHa letto: %q", mood, text))

	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

// Countdown resolves the configured target and lights the lamp with the
// pre-computed payload.
func (h *MoodHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msg, payload, ok := h.Scheduler.Countdown(ctx, time.Now())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":   false,
			"text": "Il database è timido oggi, riprova tra un istante.",
		})
		return
	}

	if err := h.Lamp.Light(ctx, presence.ModeCountdown, payload, h.CountdownDwell); err != nil {
		h.Log.Warn("lamp update failed", zap.Error(err))
	}
	h.Notify.Send(ctx, "⏳ Anita ha attivato il Countdown")

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "text": msg})
}
