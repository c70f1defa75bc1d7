package model

import (
	"fmt"
	"strings"

	"roombook/pkg/timeutil"
)

type ReservationType string

const (
	ReservationLesson  ReservationType = "LESSON"
	ReservationExam    ReservationType = "EXAM"
	ReservationCatchUp ReservationType = "CATCH_UP"
	ReservationOther   ReservationType = "OTHER"
)

var reservationTypes = []ReservationType{
	ReservationLesson,
	ReservationExam,
	ReservationCatchUp,
	ReservationOther,
}

func ReservationTypes() []ReservationType {
	out := make([]ReservationType, len(reservationTypes))
	copy(out, reservationTypes)
	return out
}

func ParseReservationType(s string) (ReservationType, error) {
	t := ReservationType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown reservation type %q", s)
	}
	return t, nil
}

func (t ReservationType) Valid() bool {
	for _, known := range reservationTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t ReservationType) DisplayName() string {
	switch t {
	case ReservationLesson:
		return "Lesson"
	case ReservationExam:
		return "Exam"
	case ReservationCatchUp:
		return "Catch-up"
	case ReservationOther:
		return "Other"
	default:
		return string(t)
	}
}

// ID identifies a reservation. It is unique because two reservations of the same
// room and date can never share a start time without overlapping.
type ID struct {
	Room  string             `json:"room"`
	Date  timeutil.Date      `json:"date"`
	Start timeutil.TimeOfDay `json:"start_time"`
}

func (id ID) String() string {
	return fmt.Sprintf("%s@%s %s", id.Room, id.Date, id.Start)
}

// Reservation refers to its room by name only; the catalogue owns the Room value.
type Reservation struct {
	Room       string             `json:"room"`
	Date       timeutil.Date      `json:"date"`
	StartTime  timeutil.TimeOfDay `json:"start_time"`
	EndTime    timeutil.TimeOfDay `json:"end_time"`
	ReservedBy string             `json:"reserved_by"`
	Type       ReservationType    `json:"type"`
}

func (r Reservation) ID() ID {
	return ID{Room: r.Room, Date: r.Date, Start: r.StartTime}
}

func (r Reservation) DurationHours() int {
	return timeutil.HoursBetween(r.StartTime, r.EndTime)
}

// Overlaps treats both reservations as half-open intervals: one ending exactly when
// the other starts does not overlap it.
func (r Reservation) Overlaps(other Reservation) bool {
	if r.Date != other.Date || r.Room != other.Room {
		return false
	}
	return r.StartTime.Before(other.EndTime) && other.StartTime.Before(r.EndTime)
}

// Covers reports whether the hour slot starting at t falls inside the reservation.
func (r Reservation) Covers(t timeutil.TimeOfDay) bool {
	return !t.Before(r.StartTime) && t.Before(r.EndTime)
}

func (r Reservation) String() string {
	return fmt.Sprintf("Reservation: %s - %s to %s by %s for %s",
		r.Date, r.StartTime, r.EndTime, r.ReservedBy, r.Type.DisplayName())
}

// Proposal carries the fields of a reservation that is not yet accepted.
// RequiredCapacity is optional; zero means no capacity requirement.
type Proposal struct {
	Room             string
	Date             timeutil.Date
	StartTime        timeutil.TimeOfDay
	EndTime          timeutil.TimeOfDay
	ReservedBy       string
	Type             ReservationType
	RequiredCapacity int
}

func (p Proposal) Reservation() Reservation {
	return Reservation{
		Room:       p.Room,
		Date:       p.Date,
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		ReservedBy: p.ReservedBy,
		Type:       p.Type,
	}
}

// Update holds the editable fields of a reservation. There is no room field:
// the room of a reservation is fixed when it is created.
type Update struct {
	Date       timeutil.Date
	StartTime  timeutil.TimeOfDay
	EndTime    timeutil.TimeOfDay
	ReservedBy string
	Type       ReservationType
}

func (u Update) Apply(r Reservation) Reservation {
	r.Date = u.Date
	r.StartTime = u.StartTime
	r.EndTime = u.EndTime
	r.ReservedBy = u.ReservedBy
	r.Type = u.Type
	return r
}

func UpdateOf(r Reservation) Update {
	return Update{
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		ReservedBy: r.ReservedBy,
		Type:       r.Type,
	}
}
