package handler

import (
	"roombook/pkg/model"
	"roombook/pkg/timeutil"
)

// ReservationRequest is the body of POST /api/v1/reservations. The name is
// left to the reservation pipeline so that its message reaches the user.
type ReservationRequest struct {
	Room             string `json:"room" validate:"required"`
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime        string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime          string `json:"end_time" validate:"required,datetime=15:04"`
	ReservedBy       string `json:"reserved_by"`
	Type             string `json:"type" validate:"required,reservation_type"`
	RequiredCapacity int    `json:"required_capacity" validate:"min=0"`
}

func (r ReservationRequest) Proposal() model.Proposal {
	date, _ := timeutil.ParseDate(r.Date)
	start, _ := timeutil.ParseTimeOfDay(r.StartTime)
	end, _ := timeutil.ParseTimeOfDay(r.EndTime)
	return model.Proposal{
		Room:             r.Room,
		Date:             date,
		StartTime:        start,
		EndTime:          end,
		ReservedBy:       r.ReservedBy,
		Type:             model.ReservationType(r.Type),
		RequiredCapacity: r.RequiredCapacity,
	}
}

// UpdateRequest is the body of PATCH /api/v1/reservations. It has no room:
// a reservation never moves to another room.
type UpdateRequest struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime    string `json:"end_time" validate:"required,datetime=15:04"`
	ReservedBy string `json:"reserved_by"`
	Type       string `json:"type" validate:"required,reservation_type"`
}

func (r UpdateRequest) Update() model.Update {
	date, _ := timeutil.ParseDate(r.Date)
	start, _ := timeutil.ParseTimeOfDay(r.StartTime)
	end, _ := timeutil.ParseTimeOfDay(r.EndTime)
	return model.Update{
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		ReservedBy: r.ReservedBy,
		Type:       model.ReservationType(r.Type),
	}
}

type FileRequest struct {
	Path string `json:"path" validate:"required"`
}

type RemoveResponse struct {
	Removed bool `json:"removed"`
}

type RoomResponse struct {
	model.Room
	DisplayName  string             `json:"display_name"`
	VariantName  string             `json:"variant_name"`
	DurationRule model.DurationRule `json:"duration_rule"`
}

func newRoomResponse(room model.Room) RoomResponse {
	return RoomResponse{
		Room:         room,
		DisplayName:  room.String(),
		VariantName:  room.Variant.DisplayName(),
		DurationRule: room.DurationRule(),
	}
}
