package handler

import (
	"net/http"

	"playday/internal/games/service"
	"playday/pkg/auth"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
	"playday/pkg/middleware"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type GameHandler struct {
	service service.GameService
	log     *logger.Logger
}

func NewGameHandler(service service.GameService, log *logger.Logger) *GameHandler {
	return &GameHandler{
		service: service,
		log:     log,
	}
}

func (h *GameHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.GameRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	game, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, game); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// GetByID is public; signed-in viewers also get their own eligibility.
func (h *GameHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var viewerID string
	if caller, ok := auth.FromContext(r.Context()); ok {
		viewerID = caller.UserID
	}

	view, err := h.service.GetByID(r.Context(), viewerID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GameHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	games, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, games, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Join", err)
		return
	}

	game, err := h.service.Join(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Join", err)
		return
	}

	if err := httputil.WriteSuccess(w, game); err != nil {
		h.log.Error("failed to write success response", "handler", "Join", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GameHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/games", h.Create)
	router.GET("/api/v1/games", h.GetAll)
	router.GET("/api/v1/games/id/:id", h.GetByID)
	router.POST("/api/v1/games/id/:id/join", h.Join)
}
