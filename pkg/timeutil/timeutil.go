// Package timeutil holds the wall-clock date and time-of-day types used by the
// reservation engine together with the business-hour rules that bound every booking.
//
// All values are local wall-clock values: there is no timezone handling and no
// sub-minute precision. Reservations are hour aligned, but TimeOfDay keeps minutes so
// that inputs which are not on the hour can still be checked and rejected or rounded.
package timeutil

import (
	"fmt"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	DisplayDateLayout = "02/01/2006"
	TimeLayout        = "15:04"

	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

var (
	OpeningTime = NewTimeOfDay(8, 0)
	ClosingTime = NewTimeOfDay(18, 0)
)

// Clock abstracts the current instant so past-date checks can be tested.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*minutesPerHour + minute)
}

// ParseTimeOfDay accepts "HH:mm" and, for tolerance with older files, "HH:mm:ss".
// Seconds are discarded.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		var errSec error
		t, errSec = time.Parse("15:04:05", s)
		if errSec != nil {
			return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / minutesPerHour }
func (t TimeOfDay) Minute() int { return int(t) % minutesPerHour }

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t > other }

func (t TimeOfDay) AddHours(n int) TimeOfDay {
	return t + TimeOfDay(n*minutesPerHour)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a calendar date without a time or location. It is comparable with ==.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range values the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) asTime() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(other Date) bool { return d.asTime().Before(other.asTime()) }
func (d Date) After(other Date) bool  { return d.asTime().After(other.asTime()) }

func (d Date) AddDays(n int) Date {
	return DateOf(d.asTime().AddDate(0, 0, n))
}

func (d Date) String() string {
	return d.asTime().Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func Today(c Clock) Date {
	return DateOf(c.Now())
}

func IsPast(d Date, c Clock) bool {
	return d.Before(Today(c))
}

// IsWithinBusinessHours is inclusive at both ends: 18:00 is a valid end time.
func IsWithinBusinessHours(t TimeOfDay) bool {
	return !t.Before(OpeningTime) && !t.After(ClosingTime)
}

func IsValidRange(start, end TimeOfDay) bool {
	return IsWithinBusinessHours(start) && IsWithinBusinessHours(end) && start.Before(end)
}

// HoursBetween counts whole hours by hour-of-day only; minutes are ignored.
func HoursBetween(start, end TimeOfDay) int {
	return end.Hour() - start.Hour()
}

// AllSlots enumerates every hour boundary in business hours, 08:00 through 18:00.
func AllSlots() []TimeOfDay {
	var slots []TimeOfDay
	for t := OpeningTime; !t.After(ClosingTime); t = t.AddHours(1) {
		slots = append(slots, t)
	}
	return slots
}

// StartSlots enumerates the hours a booking may start at, 08:00 through 17:00.
func StartSlots() []TimeOfDay {
	var slots []TimeOfDay
	for t := OpeningTime; t.Before(ClosingTime); t = t.AddHours(1) {
		slots = append(slots, t)
	}
	return slots
}

func RoundToHour(t TimeOfDay) TimeOfDay {
	return NewTimeOfDay(t.Hour(), 0)
}

func FormatTime(t TimeOfDay) string {
	return t.String()
}

func FormatDate(d Date) string {
	return d.asTime().Format(DisplayDateLayout)
}
