package handler

import (
	"net/http"

	"roombook/internal/reservations/service"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status       string `json:"status"`
	Rooms        int    `json:"rooms"`
	Reservations int    `json:"reservations"`
}

type HealthHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewHealthHandler(svc service.ReservationService, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		service: svc,
		log:     log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats := h.service.Stats(r.Context())
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Rooms:        stats.Rooms,
		Reservations: stats.Reservations,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
}
