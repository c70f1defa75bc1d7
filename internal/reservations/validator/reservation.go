package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"roombook/pkg/model"
	"roombook/pkg/timeutil"
)

const (
	MinNameLength = 2
	MaxNameLength = 50
)

const (
	MsgRoomNotSelected  = "Room must be selected"
	MsgBusinessHours    = "Reservation must be within business hours (8:00-18:00)"
	MsgStartBeforeEnd   = "Start time must be before end time"
	MsgOnTheHour        = "Reservation times must be on the hour"
	MsgPastDate         = "Cannot make reservations for past dates"
	MsgNameRequired     = "Name is required"
	MsgNameInvalidChars = "Name can only contain letters, numbers, spaces, dots, and hyphens"
	MsgInvalidType      = "Reservation type must be one of LESSON, EXAM, CATCH_UP, OTHER"
	MsgConflict         = "This time slot conflicts with an existing reservation"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9 .\-]+$`)

// Result is the outcome of validating a proposal: either accepted, or rejected
// with a message meant for the user.
type Result struct {
	message string
}

func OK() Result { return Result{} }

func Reject(message string) Result { return Result{message: message} }

func (r Result) Ok() bool { return r.message == "" }

func (r Result) Message() string { return r.message }

func (r Result) String() string {
	if r.Ok() {
		return "Ok"
	}
	return "Err(" + r.message + ")"
}

type ReservationValidator struct {
	clock timeutil.Clock
}

func NewReservationValidator(clock timeutil.Clock) *ReservationValidator {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &ReservationValidator{clock: clock}
}

// Validate runs the checks in a fixed order and returns the first failure.
// excluding, when set, is left out of the conflict check so a reservation
// never conflicts with its own previous version.
func (v *ReservationValidator) Validate(room *model.Room, p model.Proposal, existing []model.Reservation, excluding *model.ID) Result {
	if res := ValidateRoom(room, p.RequiredCapacity); !res.Ok() {
		return res
	}
	if res := v.ValidateTime(*room, p.Date, p.StartTime, p.EndTime); !res.Ok() {
		return res
	}
	if res := ValidateReservedBy(p.ReservedBy); !res.Ok() {
		return res
	}
	if !p.Type.Valid() {
		return Reject(MsgInvalidType)
	}
	return ValidateNoConflict(p.Reservation(), existing, excluding)
}

func ValidateRoom(room *model.Room, requiredCapacity int) Result {
	if room == nil {
		return Reject(MsgRoomNotSelected)
	}
	if requiredCapacity > 0 && room.Capacity < requiredCapacity {
		return Reject(fmt.Sprintf("Room capacity (%d) is less than required (%d)", room.Capacity, requiredCapacity))
	}
	return OK()
}

func (v *ReservationValidator) ValidateTime(room model.Room, date timeutil.Date, start, end timeutil.TimeOfDay) Result {
	if res := ValidateSchedule(room, start, end); !res.Ok() {
		return res
	}
	if timeutil.IsPast(date, v.clock) {
		return Reject(MsgPastDate)
	}
	return OK()
}

// ValidateSchedule checks the time range against business hours, the hour grid
// and the room's duration rule. It does not look at the date.
func ValidateSchedule(room model.Room, start, end timeutil.TimeOfDay) Result {
	if !timeutil.IsWithinBusinessHours(start) || !timeutil.IsWithinBusinessHours(end) {
		return Reject(MsgBusinessHours)
	}
	if !start.Before(end) {
		return Reject(MsgStartBeforeEnd)
	}
	if start.Minute() != 0 || end.Minute() != 0 {
		return Reject(MsgOnTheHour)
	}
	if !room.IsValidDuration(timeutil.HoursBetween(start, end)) {
		rule := room.DurationRule()
		return Reject(fmt.Sprintf("Invalid duration for this room type. Min: %d, Max: %d, Increment: %d",
			rule.Min, rule.Max, rule.Increment))
	}
	return OK()
}

func ValidateReservedBy(name string) Result {
	name = strings.TrimSpace(name)
	if name == "" {
		return Reject(MsgNameRequired)
	}

	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return Reject(fmt.Sprintf("Name must be at least %d characters long", MinNameLength))
	}
	if n > MaxNameLength {
		return Reject(fmt.Sprintf("Name must not exceed %d characters", MaxNameLength))
	}
	if !nameRegex.MatchString(name) {
		return Reject(MsgNameInvalidChars)
	}
	return OK()
}

// ValidateNoConflict only compares against reservations of the same room and
// date; intervals are half-open so touching reservations are accepted.
func ValidateNoConflict(candidate model.Reservation, existing []model.Reservation, excluding *model.ID) Result {
	for _, r := range existing {
		if r.Room != candidate.Room || r.Date != candidate.Date {
			continue
		}
		if excluding != nil && r.ID() == *excluding {
			continue
		}
		if r.Overlaps(candidate) {
			return Reject(MsgConflict)
		}
	}
	return OK()
}
