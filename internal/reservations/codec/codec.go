package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"roombook/internal/catalogue"
	reserrors "roombook/internal/reservations/errors"
	"roombook/internal/reservations/validator"
	"roombook/pkg/model"
	"roombook/pkg/timeutil"
)

const (
	Extension = ".resv"

	recordStart = "RESERVATION"
	recordEnd   = "END"

	keyRoom       = "room"
	keyDate       = "date"
	keyStartTime  = "startTime"
	keyEndTime    = "endTime"
	keyReservedBy = "reservedBy"
	keyType       = "type"
)

var keyOrder = []string{keyRoom, keyDate, keyStartTime, keyEndTime, keyReservedBy, keyType}

// WithExtension appends .resv unless the path already ends with it.
func WithExtension(path string) string {
	if strings.HasSuffix(path, Extension) {
		return path
	}
	return path + Extension
}

// Encode writes the reservations in the given order, one framed record each.
func Encode(w io.Writer, reservations []model.Reservation) error {
	bw := bufio.NewWriter(w)
	for _, r := range reservations {
		values := map[string]string{
			keyRoom:       r.Room,
			keyDate:       r.Date.String(),
			keyStartTime:  r.StartTime.String(),
			keyEndTime:    r.EndTime.String(),
			keyReservedBy: r.ReservedBy,
			keyType:       string(r.Type),
		}
		if _, err := bw.WriteString(recordStart + "\n"); err != nil {
			return err
		}
		for _, key := range keyOrder {
			if _, err := fmt.Fprintf(bw, "%s=%s\n", key, values[key]); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(recordEnd + "\n\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type record struct {
	line        int
	reservation model.Reservation
}

// Decode parses a reservation file. Any line that does not fit the format
// yields a MalformedError carrying its 1-based line number.
func Decode(r io.Reader) ([]model.Reservation, error) {
	records, err := decode(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reservation, len(records))
	for i, rec := range records {
		out[i] = rec.reservation
	}
	return out, nil
}

func decode(r io.Reader) ([]record, error) {
	var (
		records []record
		fields  map[string]string
		start   int
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == recordStart:
			if fields != nil {
				return nil, malformed(lineNo, "RESERVATION before END of the record started at line %d", start)
			}
			fields = make(map[string]string, len(keyOrder))
			start = lineNo

		case line == recordEnd:
			if fields == nil {
				return nil, malformed(lineNo, "END without RESERVATION")
			}
			res, err := build(fields, lineNo)
			if err != nil {
				return nil, err
			}
			records = append(records, record{line: start, reservation: res})
			fields = nil

		case line == "":
			// records may be separated by any number of blank lines

		default:
			if fields == nil {
				return nil, malformed(lineNo, "unexpected content outside a record")
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, malformed(lineNo, "expected key=value")
			}
			if !knownKey(key) {
				return nil, malformed(lineNo, "unknown key %q", key)
			}
			if _, dup := fields[key]; dup {
				return nil, malformed(lineNo, "duplicate key %q", key)
			}
			if err := checkValue(key, value); err != nil {
				return nil, malformed(lineNo, "%v", err)
			}
			fields[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if fields != nil {
		return nil, malformed(lineNo, "unterminated record started at line %d", start)
	}
	return records, nil
}

func knownKey(key string) bool {
	for _, k := range keyOrder {
		if k == key {
			return true
		}
	}
	return false
}

func checkValue(key, value string) error {
	var err error
	switch key {
	case keyRoom:
		if value == "" {
			err = errors.New("empty room")
		}
	case keyDate:
		_, err = timeutil.ParseDate(value)
	case keyStartTime, keyEndTime:
		var t timeutil.TimeOfDay
		if t, err = timeutil.ParseTimeOfDay(value); err == nil && t.Minute() != 0 {
			err = fmt.Errorf("time %q is not on the hour", value)
		}
	case keyType:
		_, err = model.ParseReservationType(value)
	}
	return err
}

func build(fields map[string]string, endLine int) (model.Reservation, error) {
	for _, key := range keyOrder {
		if _, ok := fields[key]; !ok {
			return model.Reservation{}, malformed(endLine, "record is missing %q", key)
		}
	}

	// values were checked as they were read
	date, _ := timeutil.ParseDate(fields[keyDate])
	start, _ := timeutil.ParseTimeOfDay(fields[keyStartTime])
	end, _ := timeutil.ParseTimeOfDay(fields[keyEndTime])
	typ, _ := model.ParseReservationType(fields[keyType])

	return model.Reservation{
		Room:       fields[keyRoom],
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		ReservedBy: fields[keyReservedBy],
		Type:       typ,
	}, nil
}

func malformed(line int, format string, args ...any) error {
	return &reserrors.MalformedError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// Save writes the reservations to path (with .resv appended if needed) and
// returns the path actually written. The file is replaced atomically.
func Save(path string, reservations []model.Reservation) (string, error) {
	path = WithExtension(path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return path, &reserrors.IOError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, reservations); err != nil {
		tmp.Close()
		return path, &reserrors.IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return path, &reserrors.IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return path, &reserrors.IOError{Path: path, Err: err}
	}
	return path, nil
}

// Load reads path (with .resv appended if needed) and checks that every
// reservation names a room in cat, fits its room's schedule rules and does not
// overlap an earlier record. Nothing is returned unless the whole file is valid.
func Load(path string, cat *catalogue.Catalogue) ([]model.Reservation, error) {
	path = WithExtension(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, &reserrors.IOError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := decode(f)
	if err != nil {
		var m *reserrors.MalformedError
		if errors.As(err, &m) {
			return nil, err
		}
		return nil, &reserrors.IOError{Path: path, Err: err}
	}

	out := make([]model.Reservation, len(records))
	for i, rec := range records {
		r := rec.reservation
		room, ok := cat.Get(r.Room)
		if !ok {
			return nil, &reserrors.UnknownRoomError{Room: r.Room, Line: rec.line}
		}
		// Past dates are fine here; a saved file legitimately holds history.
		res := validator.ValidateSchedule(room, r.StartTime, r.EndTime)
		if res.Ok() {
			res = validator.ValidateNoConflict(r, out[:i], nil)
		}
		if !res.Ok() {
			return nil, &reserrors.MalformedError{Line: rec.line, Reason: res.Message()}
		}
		out[i] = r
	}
	return out, nil
}
