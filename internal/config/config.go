package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	GeminiAPIKey string
	GeminiModel  string

	TelegramToken  string
	TelegramChatID string

	// Lamp dwell durations before auto-off.
	DwellDuration  time.Duration
	CountdownDwell time.Duration

	// Generation pacing.
	GenerateWeeks    int
	GenerateCooldown time.Duration
	ErrorCooldown    time.Duration
	DedupLimit       int
	PromptExclusion  int

	// Calendar refill worker.
	RefillInterval  time.Duration
	RefillThreshold int

	// Anniversary epoch for duration counters (YYYY-MM-DD). Optional.
	AnniversaryEpoch time.Time

	Debug bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		GeminiAPIKey: mustGetenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.5-flash"),

		TelegramToken:  getenv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getenv("TELEGRAM_CHAT_ID", ""),

		DwellDuration:  getenvDuration("DWELL_DURATION", 300*time.Second),
		CountdownDwell: getenvDuration("COUNTDOWN_DWELL", 900*time.Second),

		GenerateWeeks:    getenvInt("GENERATE_WEEKS", 4),
		GenerateCooldown: getenvDuration("GENERATE_COOLDOWN", 3*time.Second),
		ErrorCooldown:    getenvDuration("ERROR_COOLDOWN", 5*time.Second),
		DedupLimit:       getenvInt("DEDUP_LIMIT", 150),
		PromptExclusion:  getenvInt("PROMPT_EXCLUSION", 30),

		RefillInterval:  getenvDuration("REFILL_INTERVAL", time.Hour),
		RefillThreshold: getenvInt("REFILL_THRESHOLD", 7),

		Debug: getenv("CUBO_DEBUG", "false") == "true",
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if v := getenv("ANNIVERSARY_EPOCH", ""); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			panic("invalid ANNIVERSARY_EPOCH (want YYYY-MM-DD): " + v)
		}
		cfg.AnniversaryEpoch = t
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic("invalid int env " + key + ": " + v)
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic("invalid duration env " + key + ": " + v)
	}
	return d
}
