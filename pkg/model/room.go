package model

import (
	"fmt"
	"strings"

	"roombook/pkg/timeutil"
)

type Variant int

const (
	VariantClassroom Variant = iota + 1
	VariantLaboratory
)

const (
	variantClassroomName  = "CLASSROOM"
	variantLaboratoryName = "LABORATORY"
)

// ParseVariant is case-insensitive: "classroom", "Classroom" and "CLASSROOM" are equal.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case variantClassroomName:
		return VariantClassroom, nil
	case variantLaboratoryName:
		return VariantLaboratory, nil
	default:
		return 0, fmt.Errorf("unknown room variant %q", s)
	}
}

func (v Variant) String() string {
	switch v {
	case VariantClassroom:
		return variantClassroomName
	case VariantLaboratory:
		return variantLaboratoryName
	default:
		return "UNKNOWN"
	}
}

func (v Variant) DisplayName() string {
	switch v {
	case VariantClassroom:
		return "Classroom"
	case VariantLaboratory:
		return "Laboratory"
	default:
		return "Unknown"
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// DurationRule bounds the whole-hour length of a reservation for a room variant.
type DurationRule struct {
	Min       int `json:"min"`
	Max       int `json:"max"`
	Increment int `json:"increment"`
}

var (
	classroomRule  = DurationRule{Min: 1, Max: 8, Increment: 1}
	laboratoryRule = DurationRule{Min: 2, Max: 4, Increment: 2}
)

func (r DurationRule) Allows(hours int) bool {
	if r.Increment <= 0 {
		return false
	}
	return hours >= r.Min && hours <= r.Max && hours%r.Increment == 0
}

type ClassroomFeatures struct {
	HasWhiteboard bool `json:"has_whiteboard"`
	HasProjector  bool `json:"has_projector"`
}

type LaboratoryFeatures struct {
	HasPCs               bool `json:"has_pcs"`
	HasElectricalOutlets bool `json:"has_electrical_outlets"`
}

// Room is a tagged variant: exactly one of Classroom or Laboratory is set,
// matching Variant. Rooms are built once from the catalogue and never mutated.
type Room struct {
	Name       string              `json:"name" validate:"required,max=100"`
	Capacity   int                 `json:"capacity" validate:"required,min=1"`
	Variant    Variant             `json:"variant" validate:"required,min=1,max=2"`
	Classroom  *ClassroomFeatures  `json:"classroom,omitempty" validate:"required_if=Variant 1,excluded_unless=Variant 1"`
	Laboratory *LaboratoryFeatures `json:"laboratory,omitempty" validate:"required_if=Variant 2,excluded_unless=Variant 2"`
}

func NewClassroom(name string, capacity int, hasWhiteboard, hasProjector bool) Room {
	return Room{
		Name:     name,
		Capacity: capacity,
		Variant:  VariantClassroom,
		Classroom: &ClassroomFeatures{
			HasWhiteboard: hasWhiteboard,
			HasProjector:  hasProjector,
		},
	}
}

func NewLaboratory(name string, capacity int, hasPCs, hasElectricalOutlets bool) Room {
	return Room{
		Name:     name,
		Capacity: capacity,
		Variant:  VariantLaboratory,
		Laboratory: &LaboratoryFeatures{
			HasPCs:               hasPCs,
			HasElectricalOutlets: hasElectricalOutlets,
		},
	}
}

func (r Room) DurationRule() DurationRule {
	switch r.Variant {
	case VariantClassroom:
		return classroomRule
	case VariantLaboratory:
		return laboratoryRule
	default:
		return DurationRule{}
	}
}

func (r Room) IsValidDuration(hours int) bool {
	return r.DurationRule().Allows(hours)
}

// EndOptions lists the end times a booking starting at start may choose, stepping
// by the variant increment and never passing closing time.
func (r Room) EndOptions(start timeutil.TimeOfDay) []timeutil.TimeOfDay {
	rule := r.DurationRule()
	if rule.Increment <= 0 || !timeutil.IsWithinBusinessHours(start) {
		return nil
	}

	var options []timeutil.TimeOfDay
	for hours := rule.Increment; hours <= rule.Max; hours += rule.Increment {
		end := start.AddHours(hours)
		if end.After(timeutil.ClosingTime) {
			break
		}
		if rule.Allows(timeutil.HoursBetween(start, end)) {
			options = append(options, end)
		}
	}
	return options
}

func (r Room) String() string {
	return fmt.Sprintf("Room %s (Capacity: %d)", r.Name, r.Capacity)
}
