package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cubo/internal/notify"
	"cubo/internal/phrase"
	"cubo/internal/presence"
)

type LampHandler struct {
	Lamp   *presence.Controller
	Picker *phrase.Picker
	Store  *phrase.Store
	Notify notify.Notifier
	Log    *zap.Logger
	Dwell  time.Duration
}

func (h *LampHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.Lamp.Read(r.Context())
	if err != nil {
		h.Log.Warn("lamp read failed", zap.Error(err))
		st = presence.LampState{Power: presence.PowerOff, Mode: presence.ModeNone}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"power":                 st.Power,
		"mode":                  st.Mode,
		"payload":               st.Payload,
		"last_interaction_date": st.LastInteractionDate,
	})
}

func (h *LampHandler) Off(w http.ResponseWriter, r *http.Request) {
	if err := h.Lamp.Off(r.Context()); err != nil {
		h.Log.Warn("lamp off failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Next is the staged-pick flow for the always-on lamp: consume the
// pre-staged phrase and light it, so the next offer is always committed
// before it is revealed.
func (h *LampHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	text := h.Picker.ConsumeNext(ctx)

	if err := h.Lamp.Light(ctx, presence.ModePensiero, text, h.Dwell); err != nil {
		h.Log.Warn("lamp update failed", zap.Error(err))
	}
	if err := h.Store.LogInteraction(ctx, "Pensiero", time.Now()); err != nil {
		h.Log.Warn("interaction log failed", zap.Error(err))
	}
	h.Notify.Send(ctx, "💡 La lampada ha mostrato il pensiero in coda.")

	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

type pensieroReq struct {
	Text string `json:"text"`
}

// Pensiero lets the operator (console or chat-bot) stage a message that
// pre-empts the next session's daily flow.
func (h *LampHandler) Pensiero(w http.ResponseWriter, r *http.Request) {
	var req pensieroReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}

	if err := h.Lamp.SetPensiero(r.Context(), req.Text); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
