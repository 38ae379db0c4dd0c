// Package jalali provides the BusinessDate type used to key every artifact
// in the pipeline. Dates are Jalali (Solar Hijri) calendar dates rendered as
// fixed-width "YYYY-MM-DD" strings, the same identifier TSETMC uses in its
// market-watch endpoint.
package jalali

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"

	"tsecli/internal/errors"
)

// datePattern accepts years 1300-1499, months 1-12 and days 1-31. Days in
// month are not validated against the calendar; the upstream source simply
// has no data for impossible dates, so the fetch loop treats them like any
// other non-trading day.
var datePattern = regexp.MustCompile(`^(1[34]\d{2})-(0?[1-9]|1[012])-(0?[1-9]|[12]\d|3[01])$`)

// BusinessDate is a single Jalali calendar date. The zero value is not a
// valid date; construct one with Parse, Today or New.
type BusinessDate struct {
	year  int
	month int
	day   int
}

// New builds a BusinessDate from raw components without range validation.
// Use Parse for untrusted input.
func New(year, month, day int) BusinessDate {
	return BusinessDate{year: year, month: month, day: day}
}

// Parse converts a "YYYY-MM-DD" string into a BusinessDate. It returns a
// FORMAT error when the text does not match the accepted pattern.
func Parse(s string) (BusinessDate, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return BusinessDate{}, errors.NewFormatError(
			fmt.Sprintf("invalid date %q, expected format YYYY-MM-DD", s), nil)
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	return BusinessDate{year: year, month: month, day: day}, nil
}

// Today returns the current date in the Jalali calendar.
func Today() BusinessDate {
	return fromPersian(ptime.New(time.Now()))
}

func fromPersian(pt ptime.Time) BusinessDate {
	return BusinessDate{year: pt.Year(), month: int(pt.Month()), day: pt.Day()}
}

func (d BusinessDate) persian() ptime.Time {
	return ptime.Date(d.year, ptime.Month(d.month), d.day, 12, 0, 0, 0, ptime.Iran())
}

// String renders the date as zero-padded "YYYY-MM-DD". It is the inverse of
// Parse for every valid date.
func (d BusinessDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Year returns the Jalali year.
func (d BusinessDate) Year() int { return d.year }

// Month returns the Jalali month, 1-12.
func (d BusinessDate) Month() int { return d.month }

// Day returns the day of month.
func (d BusinessDate) Day() int { return d.day }

// AddDays returns the date n days after d. It is pure; d is unchanged.
func (d BusinessDate) AddDays(n int) BusinessDate {
	return fromPersian(ptime.New(d.persian().Time().AddDate(0, 0, n)))
}

// Weekday returns the Gregorian weekday of the date.
func (d BusinessDate) Weekday() time.Weekday {
	return d.persian().Time().Weekday()
}

// IsWeekend reports whether the date falls on the Iranian weekend. TSETMC
// publishes no market watch on Thursdays and Fridays.
func (d BusinessDate) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Thursday || wd == time.Friday
}

// IsFuture reports whether the date is strictly after today.
func (d BusinessDate) IsFuture() bool {
	return d.After(Today())
}

// Compare returns -1, 0 or 1 as d is before, equal to or after other.
func (d BusinessDate) Compare(other BusinessDate) int {
	a := d.ordinal()
	b := other.ordinal()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// After reports whether d is strictly after other.
func (d BusinessDate) After(other BusinessDate) bool { return d.Compare(other) > 0 }

// Before reports whether d is strictly before other.
func (d BusinessDate) Before(other BusinessDate) bool { return d.Compare(other) < 0 }

func (d BusinessDate) ordinal() int {
	return d.year*10000 + d.month*100 + d.day
}
