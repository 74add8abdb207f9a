package handler

import (
	"net/http"

	"playday/internal/fields/service"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
	"playday/pkg/middleware"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type FieldHandler struct {
	service service.FieldService
	log     *logger.Logger
}

func NewFieldHandler(service service.FieldService, log *logger.Logger) *FieldHandler {
	return &FieldHandler{
		service: service,
		log:     log,
	}
}

func (h *FieldHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *FieldHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var field model.Field
	if err := httputil.DecodeJSON(r, &field); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), caller, &field); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, field); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *FieldHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	field, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, field); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FieldHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	fields, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, fields, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *FieldHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	fields, total, err := h.service.GetByOwner(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WritePaginated(w, fields, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *FieldHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var updates model.FieldUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	field, err := h.service.Update(r.Context(), caller, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, field); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FieldHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.service.Delete(r.Context(), caller, ps.ByName("id"), confirmed); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *FieldHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/fields", h.Create)
	router.GET("/api/v1/fields", h.GetAll)
	router.GET("/api/v1/fields/mine", h.GetMine)
	router.GET("/api/v1/fields/id/:id", h.GetByID)
	router.PATCH("/api/v1/fields/id/:id", h.Update)
	router.DELETE("/api/v1/fields/id/:id", h.Delete)
}
