package catalogue

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"roombook/pkg/model"

	"github.com/go-playground/validator/v10"
)

const fieldsPerLine = 5

var validate = validator.New()

// MalformedError reports a rooms file line that could not be turned into a room.
type MalformedError struct {
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed rooms file at line %d: %s", e.Line, e.Reason)
}

func ParseBytes(b []byte) ([]model.Room, error) {
	return Parse(bytes.NewReader(b))
}

// Parse reads one room per non-empty line in the form
// name,variant,capacity,flag1,flag2.
func Parse(r io.Reader) ([]model.Room, error) {
	var rooms []model.Room
	seen := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		room, err := parseLine(line)
		if err != nil {
			return nil, &MalformedError{Line: lineNo, Reason: err.Error()}
		}
		if first, dup := seen[room.Name]; dup {
			return nil, &MalformedError{Line: lineNo, Reason: fmt.Sprintf("duplicate room %q (first defined at line %d)", room.Name, first)}
		}
		seen[room.Name] = lineNo
		rooms = append(rooms, room)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rooms: %w", err)
	}
	return rooms, nil
}

func parseLine(line string) (model.Room, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldsPerLine {
		return model.Room{}, fmt.Errorf("expected %d fields, got %d", fieldsPerLine, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	name := parts[0]
	variant, err := model.ParseVariant(parts[1])
	if err != nil {
		return model.Room{}, err
	}
	capacity, err := strconv.Atoi(parts[2])
	if err != nil {
		return model.Room{}, fmt.Errorf("invalid capacity %q", parts[2])
	}
	flag1, err := parseFlag(parts[3])
	if err != nil {
		return model.Room{}, err
	}
	flag2, err := parseFlag(parts[4])
	if err != nil {
		return model.Room{}, err
	}

	var room model.Room
	switch variant {
	case model.VariantClassroom:
		room = model.NewClassroom(name, capacity, flag1, flag2)
	case model.VariantLaboratory:
		room = model.NewLaboratory(name, capacity, flag1, flag2)
	}

	if err := validate.Struct(room); err != nil {
		return model.Room{}, translateValidationErrors(err)
	}
	return room, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag %q, want true or false", s)
	}
}

func translateValidationErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
