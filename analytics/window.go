package analytics

import (
	"errors"
	"fmt"
	"time"
)

// Period names the preset windows offered by the dashboard.
type Period string

const (
	PeriodWeek    Period = "7"
	PeriodMonth   Period = "30"
	PeriodQuarter Period = "90"
	PeriodYear    Period = "12m"
	PeriodDay     Period = "day"
	PeriodCustom  Period = "custom"
)

// MaxWindowDays bounds custom windows to about a year of daily points.
const MaxWindowDays = 366

var ErrInvalidWindow = errors.New("invalid report window")

// Window is an inclusive date range. Start is the first instant of its day
// and End the last instant of its day, both in Location.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowRequest carries the raw inputs of ResolveWindow. Zero times mean "not given".
type WindowRequest struct {
	Period Period
	Start  time.Time
	End    time.Time
	Day    time.Time
}

// ResolveWindow turns a period preset into a concrete window relative to now.
// An empty period means the last 30 days.
func ResolveWindow(req WindowRequest, now time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	end := endOfDay(now)
	if !req.End.IsZero() {
		end = endOfDay(req.End.In(loc))
	}

	var start time.Time
	switch req.Period {
	case PeriodWeek:
		start = startOfDay(end.AddDate(0, 0, -6))
	case PeriodMonth, "":
		start = startOfDay(end.AddDate(0, 0, -29))
	case PeriodQuarter:
		start = startOfDay(end.AddDate(0, 0, -89))
	case PeriodYear:
		start = startOfMonth(end).AddDate(0, -11, 0)
	case PeriodDay:
		day := now
		if !req.Day.IsZero() {
			day = req.Day.In(loc)
		}
		start, end = startOfDay(day), endOfDay(day)
	case PeriodCustom:
		start = startOfDay(end.AddDate(0, 0, -29))
		if !req.Start.IsZero() {
			start = startOfDay(req.Start.In(loc))
		}
	default:
		return Window{}, fmt.Errorf("%w: unknown period %q", ErrInvalidWindow, req.Period)
	}

	if start.After(end) {
		return Window{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidWindow,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if !start.AddDate(0, 0, MaxWindowDays).After(end) {
		return Window{}, fmt.Errorf("%w: windows are limited to %d days", ErrInvalidWindow, MaxWindowDays)
	}
	return Window{Start: start, End: end}, nil
}

// Days is the number of calendar days covered by the window.
func (w Window) Days() int {
	n := 0
	for d := startOfDay(w.Start); !d.After(w.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// FetchRange widens the window so one query also feeds the weekly, monthly
// and current-month views, which look past the requested window.
func (w Window) FetchRange(now time.Time) (time.Time, time.Time) {
	loc := w.End.Location()
	now = now.In(loc)

	from := w.Start
	for _, candidate := range []time.Time{
		startOfMonth(w.End).AddDate(0, -(monthsInSeries - 1), 0),
		startOfWeek(w.End).AddDate(0, 0, -7*(weeksInSeries-1)),
		startOfMonth(now),
	} {
		if candidate.Before(from) {
			from = candidate
		}
	}

	to := w.End
	if monthEnd := startOfMonth(now).AddDate(0, 1, 0).Add(-time.Nanosecond); monthEnd.After(to) {
		to = monthEnd
	}
	return from, to
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// startOfWeek returns the Monday of t's ISO week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
