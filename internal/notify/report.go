package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"cubo/internal/phrase"
)

var reportMoods = []string{"Triste", "Felice", "Nostalgica", "Stressata", "Pensiero"}

// WeeklyMoodReport aggregates the last seven days of the interaction log,
// appends a WeeklyReport row and returns the operator-readable summary.
func WeeklyMoodReport(ctx context.Context, db *gorm.DB, ref time.Time) (string, error) {
	since := ref.AddDate(0, 0, -7).Format(phrase.DateLayout)

	var rows []phrase.InteractionLog
	if err := db.WithContext(ctx).
		Where("date >= ?", since).
		Find(&rows).Error; err != nil {
		return "", err
	}

	counts := map[string]int{}
	for _, r := range rows {
		counts[r.Category]++
	}

	var b strings.Builder
	b.WriteString("📊 Report ultimi 7 giorni:\n")
	for _, m := range reportMoods {
		fmt.Fprintf(&b, "- %s: %d\n", m, counts[m])
	}

	report := phrase.WeeklyReport{
		ReportDate: ref.Format(phrase.DateLayout),
		Triste:     counts["Triste"],
		Felice:     counts["Felice"],
		Nostalgica: counts["Nostalgica"],
		Stressata:  counts["Stressata"],
		Pensiero:   counts["Pensiero"],
	}
	if err := db.WithContext(ctx).Create(&report).Error; err != nil {
		return "", err
	}

	return b.String(), nil
}
