package phrase

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// Store is the typed adapter over the shared pools. Row writes are
// individually atomic; there are no cross-row transactions, so callers
// use CompareAndSetMarker to claim rows instead of read-then-write.
type Store struct {
	DB *gorm.DB
}

func (s *Store) AppendCalendar(ctx context.Context, entries []CalendarEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Create(&entries).Error
}

func (s *Store) AppendMood(ctx context.Context, entries []MoodEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Create(&entries).Error
}

// CalendarByDate returns entries for a date, newest first.
func (s *Store) CalendarByDate(ctx context.Context, date string) ([]CalendarEntry, error) {
	var out []CalendarEntry
	err := s.DB.WithContext(ctx).
		Where("date = ?", date).
		Order("id desc").
		Find(&out).Error
	return out, err
}

// MaxCalendarDate returns the latest scheduled date, or ErrNotFound on an
// empty pool.
func (s *Store) MaxCalendarDate(ctx context.Context) (string, error) {
	var e CalendarEntry
	err := s.DB.WithContext(ctx).Order("date desc").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return e.Date, nil
}

func (s *Store) FutureCalendarCount(ctx context.Context, fromDate string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&CalendarEntry{}).
		Where("date >= ?", fromDate).
		Count(&n).Error
	return n, err
}

func (s *Store) CalendarEntryByDate(ctx context.Context, date string) (CalendarEntry, error) {
	entries, err := s.CalendarByDate(ctx, date)
	if err != nil {
		return CalendarEntry{}, err
	}
	if len(entries) == 0 {
		return CalendarEntry{}, ErrNotFound
	}
	return entries[0], nil
}

func (s *Store) MoodByMarker(ctx context.Context, marker string) ([]MoodEntry, error) {
	var out []MoodEntry
	err := s.DB.WithContext(ctx).
		Where("marker = ?", marker).
		Find(&out).Error
	return out, err
}

// CompareAndSetMarker transitions a mood row from → to only if the row
// still carries the expected marker. Returns false when another actor
// won the race.
func (s *Store) CompareAndSetMarker(ctx context.Context, id uint64, from, to string) (bool, error) {
	res := s.DB.WithContext(ctx).
		Model(&MoodEntry{}).
		Where("id = ? AND marker = ?", id, from).
		Update("marker", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) UpdateCalendarNote(ctx context.Context, id uint64, note string) error {
	return s.DB.WithContext(ctx).
		Model(&CalendarEntry{}).
		Where("id = ?", id).
		Update("note", note).Error
}

func (s *Store) LogInteraction(ctx context.Context, category string, at time.Time) error {
	row := InteractionLog{
		Date:     at.Format(DateLayout),
		Time:     at.Format("15:04:05"),
		Category: category,
	}
	return s.DB.WithContext(ctx).Create(&row).Error
}

// RecentTexts returns the last limit texts of each pool, calendar first,
// oldest to newest within each pool.
func (s *Store) RecentTexts(ctx context.Context, limit int) ([]string, error) {
	var cal []CalendarEntry
	if err := s.DB.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&cal).Error; err != nil {
		return nil, err
	}
	var emo []MoodEntry
	if err := s.DB.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&emo).Error; err != nil {
		return nil, err
	}

	out := make([]string, 0, len(cal)+len(emo))
	for i := len(cal) - 1; i >= 0; i-- {
		out = append(out, cal[i].Text)
	}
	for i := len(emo) - 1; i >= 0; i-- {
		out = append(out, emo[i].Text)
	}
	return out, nil
}
