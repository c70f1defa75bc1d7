package model

import (
	"testing"
	"time"

	"roombook/pkg/timeutil"
)

func at(hour int) timeutil.TimeOfDay { return timeutil.NewTimeOfDay(hour, 0) }

func TestDurationRules(t *testing.T) {
	classroom := NewClassroom("C1", 20, true, true)
	lab := NewLaboratory("L1", 16, true, true)

	tests := []struct {
		name  string
		room  Room
		hours int
		want  bool
	}{
		{"classroom zero hours", classroom, 0, false},
		{"classroom one hour", classroom, 1, true},
		{"classroom eight hours", classroom, 8, true},
		{"classroom nine hours", classroom, 9, false},
		{"lab one hour", lab, 1, false},
		{"lab two hours", lab, 2, true},
		{"lab three hours", lab, 3, false},
		{"lab four hours", lab, 4, true},
		{"lab six hours", lab, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.room.IsValidDuration(tt.hours); got != tt.want {
				t.Errorf("IsValidDuration(%d) = %v, want %v", tt.hours, got, tt.want)
			}
		})
	}
}

func TestParseVariant(t *testing.T) {
	for _, input := range []string{"classroom", "Classroom", "CLASSROOM", " classroom "} {
		v, err := ParseVariant(input)
		if err != nil || v != VariantClassroom {
			t.Errorf("ParseVariant(%q) = %v, %v", input, v, err)
		}
	}
	if v, err := ParseVariant("laboratory"); err != nil || v != VariantLaboratory {
		t.Errorf("ParseVariant(laboratory) = %v, %v", v, err)
	}
	if _, err := ParseVariant("office"); err == nil {
		t.Error("expected unknown variant to fail")
	}
}

func TestEndOptions(t *testing.T) {
	classroom := NewClassroom("C1", 20, false, false)
	lab := NewLaboratory("L1", 16, false, false)

	got := classroom.EndOptions(at(8))
	if len(got) != 8 || got[0] != at(9) || got[7] != at(16) {
		t.Errorf("classroom EndOptions(08:00) = %v", got)
	}

	got = classroom.EndOptions(at(15))
	if len(got) != 3 || got[2] != at(18) {
		t.Errorf("classroom EndOptions(15:00) = %v", got)
	}

	got = lab.EndOptions(at(8))
	if len(got) != 2 || got[0] != at(10) || got[1] != at(12) {
		t.Errorf("lab EndOptions(08:00) = %v", got)
	}

	got = lab.EndOptions(at(16))
	if len(got) != 1 || got[0] != at(18) {
		t.Errorf("lab EndOptions(16:00) = %v", got)
	}

	if got := lab.EndOptions(at(17)); len(got) != 0 {
		t.Errorf("lab EndOptions(17:00) = %v, want none", got)
	}
}

func TestOverlaps(t *testing.T) {
	day := timeutil.NewDate(2099, time.January, 10)
	base := Reservation{Room: "C1", Date: day, StartTime: at(9), EndTime: at(11)}

	tests := []struct {
		name  string
		other Reservation
		want  bool
	}{
		{"touching after", Reservation{Room: "C1", Date: day, StartTime: at(11), EndTime: at(12)}, false},
		{"touching before", Reservation{Room: "C1", Date: day, StartTime: at(8), EndTime: at(9)}, false},
		{"inside", Reservation{Room: "C1", Date: day, StartTime: at(10), EndTime: at(11)}, true},
		{"enclosing", Reservation{Room: "C1", Date: day, StartTime: at(8), EndTime: at(12)}, true},
		{"identical", base, true},
		{"other room", Reservation{Room: "C2", Date: day, StartTime: at(9), EndTime: at(11)}, false},
		{"other date", Reservation{Room: "C1", Date: day.AddDays(1), StartTime: at(9), EndTime: at(11)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() is not symmetric: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReservationString(t *testing.T) {
	r := Reservation{
		Room:       "C1",
		Date:       timeutil.NewDate(2099, time.January, 10),
		StartTime:  at(9),
		EndTime:    at(11),
		ReservedBy: "Alice",
		Type:       ReservationCatchUp,
	}
	want := "Reservation: 2099-01-10 - 09:00 to 11:00 by Alice for Catch-up"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := NewClassroom("C1", 20, true, true).String(); got != "Room C1 (Capacity: 20)" {
		t.Errorf("Room.String() = %q", got)
	}
}

func TestParseReservationType(t *testing.T) {
	for _, rt := range ReservationTypes() {
		got, err := ParseReservationType(string(rt))
		if err != nil || got != rt {
			t.Errorf("ParseReservationType(%q) = %v, %v", rt, got, err)
		}
	}
	if _, err := ParseReservationType("Lesson"); err == nil {
		t.Error("expected display name to be rejected")
	}
}
