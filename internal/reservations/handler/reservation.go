package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"roombook/internal/reservations/service"
	"roombook/internal/reservations/validator"
	apperrors "roombook/pkg/errors"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service   service.ReservationService
	validator *validator.RequestValidator
	log       *logger.Logger
}

func NewReservationHandler(svc service.ReservationService, v *validator.RequestValidator, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service:   svc,
		validator: v,
		log:       log.Component("http"),
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms", h.ListRooms)
	router.GET("/api/v1/rooms/:name", h.GetRoom)
	router.GET("/api/v1/rooms/:name/end-options", h.EndOptions)
	router.GET("/api/v1/rooms/:name/free", h.FreeIntervals)

	router.GET("/api/v1/reservations", h.ListReservations)
	router.POST("/api/v1/reservations", h.Create)
	router.PATCH("/api/v1/reservations", h.Update)
	router.DELETE("/api/v1/reservations", h.Remove)

	router.GET("/api/v1/grid", h.Grid)

	router.POST("/api/v1/files/save", h.Save)
	router.POST("/api/v1/files/load", h.Load)
}

func (h *ReservationHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms := h.service.Rooms(r.Context())
	resp := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, newRoomResponse(room))
	}
	h.writeSuccess(w, "ListRooms", resp)
}

func (h *ReservationHandler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.Room(r.Context(), ps.ByName("name"))
	if err != nil {
		h.writeError(w, "GetRoom", err)
		return
	}
	h.writeSuccess(w, "GetRoom", newRoomResponse(room))
}

func (h *ReservationHandler) EndOptions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, err := httputil.QueryTime(r, "start")
	if err != nil {
		h.writeError(w, "EndOptions", err)
		return
	}

	options, err := h.service.EndOptions(r.Context(), ps.ByName("name"), start)
	if err != nil {
		h.writeError(w, "EndOptions", err)
		return
	}
	h.writeSuccess(w, "EndOptions", options)
}

func (h *ReservationHandler) FreeIntervals(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		h.writeError(w, "FreeIntervals", err)
		return
	}

	free, err := h.service.FreeIntervals(r.Context(), ps.ByName("name"), date)
	if err != nil {
		h.writeError(w, "FreeIntervals", err)
		return
	}
	h.writeSuccess(w, "FreeIntervals", free)
}

// ListReservations filters by date, by room, or both. Without filters it
// returns every reservation in insertion order.
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	room := query.Get("room")

	var list []model.Reservation
	switch {
	case query.Get("date") != "":
		date, err := httputil.QueryDate(r, "date")
		if err != nil {
			h.writeError(w, "ListReservations", err)
			return
		}
		list = h.service.ForDate(r.Context(), date)
		if room != "" {
			list = filterRoom(list, room)
		}
	case room != "":
		list = h.service.ForRoom(r.Context(), room)
	default:
		list = h.service.Snapshot(r.Context())
	}

	h.writeSuccess(w, "ListReservations", list)
}

func filterRoom(list []model.Reservation, room string) []model.Reservation {
	out := make([]model.Reservation, 0, len(list))
	for _, r := range list {
		if r.Room == room {
			out = append(out, r)
		}
	}
	return out
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ReservationRequest
	if !h.decode(w, r, "Create", &req) {
		return
	}

	created, err := h.service.Add(r.Context(), req.Proposal())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := reservationID(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var req UpdateRequest
	if !h.decode(w, r, "Update", &req) {
		return
	}

	updated, err := h.service.Edit(r.Context(), id, req.Update())
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", updated)
}

// Remove never fails for an unknown reservation; it reports removed=false.
func (h *ReservationHandler) Remove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := reservationID(r)
	if err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	removed := h.service.Remove(r.Context(), id)
	h.writeSuccess(w, "Remove", RemoveResponse{Removed: removed})
}

func (h *ReservationHandler) Grid(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		h.writeError(w, "Grid", err)
		return
	}
	h.writeSuccess(w, "Grid", h.service.Grid(r.Context(), date))
}

func (h *ReservationHandler) Save(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req FileRequest
	if !h.decode(w, r, "Save", &req) {
		return
	}

	result, err := h.service.Save(r.Context(), req.Path)
	if err != nil {
		h.writeError(w, "Save", err)
		return
	}
	h.writeSuccess(w, "Save", result)
}

func (h *ReservationHandler) Load(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req FileRequest
	if !h.decode(w, r, "Load", &req) {
		return
	}

	result, err := h.service.Load(r.Context(), req.Path)
	if err != nil {
		h.writeError(w, "Load", err)
		return
	}
	h.writeSuccess(w, "Load", result)
}

func reservationID(r *http.Request) (model.ID, error) {
	room, err := httputil.RequiredQuery(r, "room")
	if err != nil {
		return model.ID{}, err
	}
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		return model.ID{}, err
	}
	start, err := httputil.QueryTime(r, "start")
	if err != nil {
		return model.ID{}, err
	}
	return model.ID{Room: room, Date: date, Start: start}, nil
}

// decode reads a JSON body into dst and checks its shape. On failure the
// response has already been written.
func (h *ReservationHandler) decode(w http.ResponseWriter, r *http.Request, handler string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, handler, apperrors.TooLarge(tooLarge.Limit))
			return false
		}
		h.writeError(w, handler, apperrors.InvalidInput("Invalid request body"))
		return false
	}

	if err := h.validator.Validate(dst); err != nil {
		h.log.Debug("Request validation failed", "handler", handler, "error", err)
		appErr := apperrors.InvalidInput("Invalid request")
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			appErr = appErr.WithDetails(map[string]any{"errors": verrs})
		}
		h.writeError(w, handler, appErr)
		return false
	}
	return true
}

func (h *ReservationHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
