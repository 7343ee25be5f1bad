package phrase

import "time"

// Marker is the per-row consumption state of a mood-pool entry.
const (
	MarkerAvailable = "AVAILABLE"
	MarkerNext      = "NEXT"
	MarkerUsed      = "USED"
)

const DateLayout = "2006-01-02"

// CalendarEntry is a date-scheduled daily phrase. Rows are append-only;
// consumed manual overrides are flagged via Note, never deleted.
type CalendarEntry struct {
	ID       uint64 `gorm:"primaryKey"`
	Date     string `gorm:"index;not null"` // YYYY-MM-DD
	Category string `gorm:"not null"`
	Text     string `gorm:"type:text;not null"`
	Kind     string `gorm:"not null;default:'Frase'"`
	Note     string `gorm:"not null;default:''"`

	CreatedAt time.Time
}

// MoodEntry is an on-demand phrase tagged by mood category.
type MoodEntry struct {
	ID       uint64 `gorm:"primaryKey"`
	Category string `gorm:"index;not null"`
	Text     string `gorm:"type:text;not null"`
	Kind     string `gorm:"not null;default:'Frase'"`
	Marker   string `gorm:"index;not null;default:'AVAILABLE'"`

	CreatedAt time.Time
}

// InteractionLog is the append-only audit of consumptions.
type InteractionLog struct {
	ID       uint64 `gorm:"primaryKey"`
	Date     string `gorm:"index;not null"` // YYYY-MM-DD
	Time     string `gorm:"not null"`       // HH:MM:SS
	Category string `gorm:"not null"`

	CreatedAt time.Time
}

// WeeklyReport is one aggregated row per report run.
type WeeklyReport struct {
	ID         uint64 `gorm:"primaryKey"`
	ReportDate string `gorm:"not null"`
	Triste     int    `gorm:"not null;default:0"`
	Felice     int    `gorm:"not null;default:0"`
	Nostalgica int    `gorm:"not null;default:0"`
	Stressata  int    `gorm:"not null;default:0"`
	Pensiero   int    `gorm:"not null;default:0"`

	CreatedAt time.Time
}
