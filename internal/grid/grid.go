package grid

import (
	"roombook/pkg/model"
	"roombook/pkg/timeutil"
)

const TimeColumn = "Time"

// Source is the read side of the reservation store used to build a grid.
type Source interface {
	ForDate(d timeutil.Date) []model.Reservation
}

// Grid is the schedule of one day: a row per start slot and a column per room
// in catalogue order.
type Grid struct {
	Date    timeutil.Date `json:"date"`
	Columns []string      `json:"columns"`
	Rows    []Row         `json:"rows"`
}

type Row struct {
	Time  timeutil.TimeOfDay   `json:"time"`
	Label string               `json:"label"`
	Cells []*model.Reservation `json:"cells"`

	rooms []string
}

// Build projects the reservations of date onto rows 08:00 to 17:00 and the given
// room columns. rooms must be in catalogue order.
func Build(src Source, rooms []string, date timeutil.Date) *Grid {
	byRoom := make(map[string][]model.Reservation, len(rooms))
	for _, r := range src.ForDate(date) {
		byRoom[r.Room] = append(byRoom[r.Room], r)
	}

	columns := make([]string, 0, len(rooms)+1)
	columns = append(columns, TimeColumn)
	columns = append(columns, rooms...)

	slots := timeutil.StartSlots()
	g := &Grid{
		Date:    date,
		Columns: columns,
		Rows:    make([]Row, 0, len(slots)),
	}

	for _, slot := range slots {
		row := Row{
			Time:  slot,
			Label: timeutil.FormatTime(slot),
			Cells: make([]*model.Reservation, len(rooms)),
			rooms: rooms,
		}
		for i, room := range rooms {
			for _, r := range byRoom[room] {
				if r.Covers(slot) {
					row.Cells[i] = &r
					break
				}
			}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// Row returns the row starting at t, or nil when t is not a slot of the grid.
func (g *Grid) Row(t timeutil.TimeOfDay) *Row {
	for i := range g.Rows {
		if g.Rows[i].Time == t {
			return &g.Rows[i]
		}
	}
	return nil
}

// Column returns the reservation occupying room in this row, or nil.
func (r *Row) Column(room string) *model.Reservation {
	if r == nil {
		return nil
	}
	for i, name := range r.rooms {
		if name == room {
			return r.Cells[i]
		}
	}
	return nil
}
