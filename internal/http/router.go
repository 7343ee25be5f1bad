package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cubo/internal/config"
	"cubo/internal/generate"
	"cubo/internal/http/handler"
	mw "cubo/internal/http/middleware"
	"cubo/internal/notify"
	"cubo/internal/phrase"
	"cubo/internal/presence"
	"cubo/internal/schedule"
)

type Deps struct {
	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Store     *phrase.Store
	Picker    *phrase.Picker
	Scheduler *schedule.Scheduler
	Lamp      *presence.Controller
	Runner    *generate.Runner
	Notify    notify.Notifier
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(d.Cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(d.Cfg.CORSAllowedOrigins, d.Cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	sh := &handler.SessionHandler{
		Lamp:      d.Lamp,
		Scheduler: d.Scheduler,
		Notify:    d.Notify,
		Log:       d.Log,
		Dwell:     d.Cfg.DwellDuration,
	}
	r.Post("/session/enter", sh.Enter)

	mh := &handler.MoodHandler{
		Picker:         d.Picker,
		Store:          d.Store,
		Scheduler:      d.Scheduler,
		Lamp:           d.Lamp,
		Notify:         d.Notify,
		Log:            d.Log,
		Dwell:          d.Cfg.DwellDuration,
		CountdownDwell: d.Cfg.CountdownDwell,
	}
	r.Post("/moods/{mood}", mh.Pick)
	r.Post("/countdown", mh.Countdown)

	lh := &handler.LampHandler{
		Lamp:   d.Lamp,
		Picker: d.Picker,
		Store:  d.Store,
		Notify: d.Notify,
		Log:    d.Log,
		Dwell:  d.Cfg.DwellDuration,
	}
	r.Get("/lamp", lh.Get)
	r.Post("/lamp/off", lh.Off)
	r.Post("/lamp/next", lh.Next)

	ah := &handler.AdminHandler{Runner: d.Runner, Store: d.Store, DB: d.DB, Log: d.Log}
	r.Route("/operator", func(r chi.Router) {
		r.Post("/pensiero", lh.Pensiero)
		r.Post("/generate", ah.Generate)
		r.Post("/override", ah.Override)
		r.Get("/report", ah.Report)
	})

	return r
}
