package route

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gorodgid/go-route-planner/internal/api"
	"github.com/gorodgid/go-route-planner/internal/content"
	"github.com/gorodgid/go-route-planner/internal/types"
)

// Handler exposes route generation and place detail lookup over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GenerateRoute handles POST /api/v1/routes. Signal errors map to distinct
// statuses and user-facing messages; anything else is a 500.
func (h *Handler) GenerateRoute(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRouteRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.GenerateRoute(r.Context(), req.Interests, req.Time, req.Location)
	if err != nil {
		status, message := signalStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "route generation failed", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, message)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// GetPlace handles GET /api/v1/places/{id}, resolving route place IDs to
// full records for the detail view.
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place id must be an integer")
		return
	}
	place, ok := h.service.PlaceByID(id)
	if !ok {
		api.ErrorResponse(w, r, http.StatusNotFound, "place not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, place)
}

// signalStatus maps the service signal errors onto HTTP statuses and the
// Russian user-facing texts the conversation layer shows verbatim.
func signalStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSearchUninitialized):
		return http.StatusServiceUnavailable, content.ErrorSearchSystemInit
	case errors.Is(err, ErrInvalidTimeFormat):
		return http.StatusBadRequest, content.ErrorInvalidTime
	case errors.Is(err, ErrTimeNotPositive):
		return http.StatusBadRequest, content.ErrorTimeNotPositive
	case errors.Is(err, ErrTimeOutOfRange):
		return http.StatusBadRequest, content.ErrorTimeTooLong
	case errors.Is(err, ErrNoPlacesAfterFallback):
		return http.StatusNotFound, content.RAGFallbackNotification + "\n\n" + content.ErrorNoPlacesFound
	case errors.Is(err, ErrNoPlacesFound):
		return http.StatusNotFound, content.ErrorNoPlacesFound
	case errors.Is(err, ErrCannotCreateRoute):
		return http.StatusUnprocessableEntity, content.ErrorCannotMakeRoute
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
