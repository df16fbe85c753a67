// Package valueobject defines immutable values shared by the domain and application layers.
package valueobject

import (
	"errors"
	"time"
)

// WindowSelector names one of the predefined reporting ranges.
type WindowSelector string

const (
	WindowLastSixMonths WindowSelector = "6months"
	WindowYearToDate    WindowSelector = "ytd"
	WindowLastYear      WindowSelector = "1year"
)

// DefaultWindowSelector is used when the client does not pick a range.
const DefaultWindowSelector = WindowLastSixMonths

// ErrUnknownWindowSelector is returned for selectors outside the predefined set.
var ErrUnknownWindowSelector = errors.New("range must be one of: 6months, ytd, 1year")

// ErrInvalidWindow is returned when a window ends before it starts.
var ErrInvalidWindow = errors.New("window end must not be before its start")

// ParseWindowSelector parses a selector, defaulting to the last six months when empty.
func ParseWindowSelector(value string) (WindowSelector, error) {
	switch WindowSelector(value) {
	case "":
		return DefaultWindowSelector, nil
	case WindowLastSixMonths, WindowYearToDate, WindowLastYear:
		return WindowSelector(value), nil
	default:
		return "", ErrUnknownWindowSelector
	}
}

// ReportingWindow is the time range records are aggregated over.
// Start is inclusive, End is exclusive.
type ReportingWindow struct {
	Start time.Time
	End   time.Time
}

// NewReportingWindow builds an explicit window.
func NewReportingWindow(start, end time.Time) (ReportingWindow, error) {
	if end.Before(start) {
		return ReportingWindow{}, ErrInvalidWindow
	}
	return ReportingWindow{Start: start, End: end}, nil
}

// Resolve turns a selector into a concrete window ending at now.
func (s WindowSelector) Resolve(now time.Time) (ReportingWindow, error) {
	year, month, _ := now.Date()
	loc := now.Location()

	var start time.Time
	switch s {
	case WindowLastSixMonths:
		start = time.Date(year, month-6, 1, 0, 0, 0, 0, loc)
	case WindowYearToDate:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	case WindowLastYear:
		start = time.Date(year-1, month, 1, 0, 0, 0, 0, loc)
	default:
		return ReportingWindow{}, ErrUnknownWindowSelector
	}

	return ReportingWindow{Start: start, End: now}, nil
}

// Contains reports whether t falls inside the window.
func (w ReportingWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Months returns the first instant of every calendar month the window touches, in order.
func (w ReportingWindow) Months() []time.Time {
	loc := w.Start.Location()
	current := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, loc)
	end := w.End.In(loc)

	var months []time.Time
	for !current.After(end) {
		months = append(months, current)
		current = current.AddDate(0, 1, 0)
	}
	return months
}
