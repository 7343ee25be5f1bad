package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cubo/internal/generate"
	"cubo/internal/notify"
	"cubo/internal/phrase"
	"cubo/internal/schedule"
)

// AdminHandler exposes the operator surface: trigger generation, seed
// overrides, inspect the weekly report.
type AdminHandler struct {
	Runner *generate.Runner
	Store  *phrase.Store
	DB     *gorm.DB
	Log    *zap.Logger
}

func (h *AdminHandler) Generate(w http.ResponseWriter, r *http.Request) {
	total, err := h.Runner.Run(r.Context())
	if err != nil {
		h.Log.Error("generation run failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"phrases": total})
}

func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	text, err := notify.WeeklyMoodReport(r.Context(), h.DB, time.Now())
	if err != nil {
		h.Log.Error("report failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": text})
}

type overrideReq struct {
	Date string `json:"date"` // YYYY-MM-DD
	Text string `json:"text"`
}

// Override seeds a one-shot manual greeting for a date; it beats
// generated calendar content at resolution time.
func (h *AdminHandler) Override(w http.ResponseWriter, r *http.Request) {
	var req overrideReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse(phrase.DateLayout, req.Date); err != nil {
		http.Error(w, "invalid date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	entry := phrase.CalendarEntry{
		Date:     req.Date,
		Category: "Buongiorno",
		Text:     req.Text,
		Kind:     schedule.KindManualOverride,
	}
	if err := h.Store.AppendCalendar(r.Context(), []phrase.CalendarEntry{entry}); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
