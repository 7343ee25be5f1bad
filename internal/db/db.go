package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cubo/internal/phrase"
	"cubo/internal/presence"
	"cubo/internal/schedule"
)

// Connect opens the shared store. Postgres in production; any other DSN
// is treated as a sqlite path, which is what the tests use.
func Connect(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dial = postgres.Open(dsn)
	} else {
		dial = sqlite.Open(dsn)
	}
	gdb, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&phrase.CalendarEntry{},
		&phrase.MoodEntry{},
		&phrase.InteractionLog{},
		&phrase.WeeklyReport{},
		&presence.LampState{},
		&schedule.CountdownTarget{},
	); err != nil {
		return err
	}

	// Portable SQL only: the same statements run on postgres and sqlite.
	stmts := []string{
		`create index if not exists idx_calendar_date on calendar_entries(date);`,
		`create index if not exists idx_mood_marker on mood_entries(marker);`,
		`create index if not exists idx_mood_category on mood_entries(category);`,
		`create index if not exists idx_log_date on interaction_logs(date);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
