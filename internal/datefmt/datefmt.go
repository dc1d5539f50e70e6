package datefmt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultSeparator is the year/month/day separator used when none is
// configured.
const DefaultSeparator = "-"

// ErrUnrecognizedLayout is returned when a raw string matches neither
// accepted layout.
var ErrUnrecognizedLayout = errors.New("unrecognized date layout")

// InvalidDateError is returned when a raw string matches a layout but does
// not denote a real calendar day.
type InvalidDateError struct {
	Raw string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid calendar date %q", e.Raw)
}

// Date is a successfully resolved deletion date: the midnight-UTC instant
// plus the raw string it was parsed from.
type Date struct {
	Time time.Time
	Raw  string
}

// dayMonthYear is the fixed day/month/year layout with slash separators.
var dayMonthYear = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// Format validates date strings against two accepted layouts:
//
//	DD/MM/YYYY              (always, slash separated)
//	YYYY<sep>MM<sep>DD      (separator configurable, default "-")
//
// The second layout's recognizer and splitter are both derived from the
// same separator, so they cannot disagree.
type Format struct {
	sep          string
	yearMonthDay *regexp.Regexp
}

// New builds a Format with the given year/month/day separator. An empty
// separator selects DefaultSeparator.
func New(sep string) *Format {
	if sep == "" {
		sep = DefaultSeparator
	}
	quoted := regexp.QuoteMeta(sep)
	return &Format{
		sep:          sep,
		yearMonthDay: regexp.MustCompile(`^\d{4}` + quoted + `\d{2}` + quoted + `\d{2}$`),
	}
}

// Separator returns the configured year/month/day separator.
func (f *Format) Separator() string {
	return f.sep
}

// Layouts renders the accepted layouts for use in diagnostics.
func (f *Format) Layouts() string {
	return fmt.Sprintf("%q or %q", "DD/MM/YYYY", "YYYY"+f.sep+"MM"+f.sep+"DD")
}

// Parse checks raw against both layouts (full-string match, no whitespace
// tolerance) and resolves it to a midnight-UTC instant. It returns
// ErrUnrecognizedLayout when neither layout matches and *InvalidDateError
// when the matched triple is not a real calendar day.
func (f *Format) Parse(raw string) (Date, error) {
	switch {
	case dayMonthYear.MatchString(raw):
		parts := strings.Split(raw, "/")
		return f.resolve(raw, parts[2], parts[1], parts[0])
	case f.yearMonthDay.MatchString(raw):
		parts := strings.Split(raw, f.sep)
		return f.resolve(raw, parts[0], parts[1], parts[2])
	default:
		return Date{}, ErrUnrecognizedLayout
	}
}

func (f *Format) resolve(raw, year, month, day string) (Date, error) {
	// time.Parse enforces real calendar semantics: month 13, day 31 of a
	// 30-day month and Feb 29 off leap years all fail here
	canonical := year + "-" + month + "-" + day
	t, err := time.Parse("2006-01-02", canonical)
	if err != nil {
		return Date{}, &InvalidDateError{Raw: raw}
	}
	return Date{Time: t, Raw: raw}, nil
}
