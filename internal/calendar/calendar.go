package calendar

import (
	"time"

	"github.com/guttosm/dipwatch/internal/domain/models"
)

// Today returns the [today, tomorrow) window for now as seen in loc.
func Today(now time.Time, loc *time.Location) models.Window {
	d := truncateToDate(now.In(loc))
	return models.Window{From: d, To: d.AddDate(0, 0, 1)}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsTradingDay reports whether d is a regular NYSE session.
// It excludes weekends and full-day exchange holidays.
func IsTradingDay(d time.Time) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := holidays(d.Year())[dateKey(d)]
	return !holiday
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// holidays lists the NYSE full-day closures for year, keyed by YYYY-MM-DD.
func holidays(year int) map[string]struct{} {
	loc := time.UTC
	out := map[string]struct{}{}
	add := func(t time.Time) { out[dateKey(t)] = struct{}{} }

	// Fixed-date holidays move to the nearest weekday when they land on a weekend.
	add(observed(time.Date(year, time.January, 1, 0, 0, 0, 0, loc)))
	add(observed(time.Date(year, time.July, 4, 0, 0, 0, 0, loc)))
	add(observed(time.Date(year, time.December, 25, 0, 0, 0, 0, loc)))
	if year >= 2022 {
		add(observed(time.Date(year, time.June, 19, 0, 0, 0, 0, loc))) // Juneteenth
	}

	add(nthWeekday(year, time.January, time.Monday, 3))   // Martin Luther King Jr. Day
	add(nthWeekday(year, time.February, time.Monday, 3))  // Washington's Birthday
	add(lastWeekday(year, time.May, time.Monday))         // Memorial Day
	add(nthWeekday(year, time.September, time.Monday, 1)) // Labor Day
	add(nthWeekday(year, time.November, time.Thursday, 4))

	add(easterSunday(year).AddDate(0, 0, -2)) // Good Friday

	return out
}

// observed shifts Saturday holidays to Friday and Sunday holidays to Monday.
func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		if t.Month() == time.January && t.Day() == 1 {
			return t // NYSE does not close on Dec 31 for a Saturday New Year.
		}
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != wd {
		t = t.AddDate(0, 0, 1)
	}
	return t.AddDate(0, 0, 7*(n-1))
}

func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for t.Weekday() != wd {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// easterSunday returns the date of Easter Sunday for a given year
// (Meeus/Jones/Butcher algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
