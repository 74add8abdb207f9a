package handler

import (
	"context"
	"net/http"

	"playday/internal/rentals/service"
	"playday/pkg/auth"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
	"playday/pkg/middleware"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RentalHandler struct {
	service service.RentalService
	log     *logger.Logger
}

func NewRentalHandler(service service.RentalService, log *logger.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		log:     log,
	}
}

func (h *RentalHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RentalHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start, err := httputil.ParseTimeParam(r, "start_time")
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}
	end, err := httputil.ParseTimeParam(r, "end_time")
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	quote, err := h.service.Quote(r.Context(), r.URL.Query().Get("field_id"), start, end)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.RentalRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	rental, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, rental); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RentalHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	rental, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, rental); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "GetMine", h.service.GetMine)
}

func (h *RentalHandler) GetBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "GetBookings", h.service.GetBookings)
}

type listFunc func(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error)

func (h *RentalHandler) list(w http.ResponseWriter, r *http.Request, name string, fetch listFunc) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	rentals, total, err := fetch(r.Context(), caller, limit, offset)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WritePaginated(w, rentals, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
	}
}

func (h *RentalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rentals", h.Create)
	router.GET("/api/v1/rentals/quote", h.Quote)
	router.GET("/api/v1/rentals/mine", h.GetMine)
	router.GET("/api/v1/rentals/bookings", h.GetBookings)
	router.GET("/api/v1/rentals/id/:id", h.GetByID)
}
