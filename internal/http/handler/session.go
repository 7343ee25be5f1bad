package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"cubo/internal/notify"
	"cubo/internal/presence"
	"cubo/internal/schedule"
)

type SessionHandler struct {
	Lamp      *presence.Controller
	Scheduler *schedule.Scheduler
	Notify    notify.Notifier
	Log       *zap.Logger
	Dwell     time.Duration
}

// Enter is the daily flow. A pending operator pensiero pre-empts the
// greeting; the first visit of the day resolves and lights today's
// content; later visits land on the mood view.
func (h *SessionHandler) Enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()

	h.Notify.Send(ctx, "🔔 Anita è entrata nell'app")

	visit, err := h.Lamp.FirstVisit(ctx, now, h.Dwell, func() (string, string) {
		res := h.Scheduler.ResolveToday(ctx, now)
		return res.Category, res.Text
	})
	if err != nil {
		// visit already carries the safe default view
		h.Log.Warn("session enter degraded", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"view": visit.View,
		"text": visit.Text,
	})
}
