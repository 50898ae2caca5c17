package stats

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD local calendar date.
const DateKeyLayout = "2006-01-02"

// Clock answers calendar questions in one fixed timezone.
type Clock interface {
	Today() string
	DateKeyOf(t time.Time) string
	StartOf(dateKey string) (time.Time, error)
}

// LocalCalendarClock maps instants to local calendar days in Location.
type LocalCalendarClock struct {
	Location *time.Location
	Now      func() time.Time
}

// NewLocalCalendarClock resolves an IANA zone name. An empty name means the
// process local zone.
func NewLocalCalendarClock(zone string) (*LocalCalendarClock, error) {
	loc := time.Local
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", zone, err)
		}
		loc = l
	}
	return &LocalCalendarClock{Location: loc, Now: time.Now}, nil
}

func (c *LocalCalendarClock) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *LocalCalendarClock) Today() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return c.DateKeyOf(now())
}

func (c *LocalCalendarClock) DateKeyOf(t time.Time) string {
	return t.In(c.location()).Format(DateKeyLayout)
}

// StartOf returns local midnight of dateKey.
func (c *LocalCalendarClock) StartOf(dateKey string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, dateKey, c.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", dateKey)
	}
	return t, nil
}

// AddDays shifts a date key by n calendar days. Date keys carry no zone, so the
// arithmetic is done in UTC where every day is 24h long.
func AddDays(dateKey string, n int) string {
	t, err := time.Parse(DateKeyLayout, dateKey)
	if err != nil {
		return dateKey
	}
	return t.AddDate(0, 0, n).Format(DateKeyLayout)
}

// ValidDateKey reports whether s parses as YYYY-MM-DD.
func ValidDateKey(s string) bool {
	_, err := time.Parse(DateKeyLayout, s)
	return err == nil
}
