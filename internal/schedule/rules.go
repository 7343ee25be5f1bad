package schedule

import (
	"fmt"
	"time"
)

// EventRule is a recurring special date. Month == 0 means "day N of any
// month". Rules beat everything else in ResolveToday, and the generator
// uses HiddenKind to flag calendar rows it writes onto a rule date.
type EventRule struct {
	Name       string
	Month      time.Month // 0 = any month
	Day        int
	Message    string // fmt template; gets the months-since-epoch counter when Epoch is set
	HiddenKind string
	Epoch      time.Time // optional, drives duration counters
}

func (r EventRule) Matches(t time.Time) bool {
	if t.Day() != r.Day {
		return false
	}
	return r.Month == 0 || t.Month() == r.Month
}

// Render fills the rule message, computing elapsed counters from the
// epoch when one is configured.
func (r EventRule) Render(ref time.Time) string {
	if r.Epoch.IsZero() {
		return r.Message
	}
	return fmt.Sprintf(r.Message, MonthsSince(r.Epoch, ref))
}

// DefaultRules mirrors the recipient's recurring dates: the monthly
// anniversary on the 14th, the birthday and Christmas.
func DefaultRules(anniversaryEpoch time.Time) []EventRule {
	rules := []EventRule{
		{
			Name:       "Anniversario",
			Day:        14,
			Message:    "Buon mesiversario amore ❤️",
			HiddenKind: "Anniv/Mesi (Nascosta)",
		},
		{
			Name:       "Compleanno",
			Month:      time.April,
			Day:        12,
			Message:    "Buon compleanno amore mio! 🎂❤️",
			HiddenKind: "Compleanno (Nascosta)",
		},
		{
			Name:       "Natale",
			Month:      time.December,
			Day:        25,
			Message:    "Buon Natale insieme ❤️🎄",
			HiddenKind: "Natale (Nascosta)",
		},
	}
	if !anniversaryEpoch.IsZero() {
		rules[0].Epoch = anniversaryEpoch
		rules[0].Message = "Buon mesiversario amore, %d mesi insieme ❤️"
	}
	return rules
}

// DaysSince counts whole calendar days from epoch to ref, local wall clock.
func DaysSince(epoch, ref time.Time) int {
	e := time.Date(epoch.Year(), epoch.Month(), epoch.Day(), 0, 0, 0, 0, time.Local)
	r := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.Local)
	return int(r.Sub(e).Hours() / 24)
}

// MonthsSince counts whole elapsed months from epoch to ref.
func MonthsSince(epoch, ref time.Time) int {
	months := (ref.Year()-epoch.Year())*12 + int(ref.Month()) - int(epoch.Month())
	if ref.Day() < epoch.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}
