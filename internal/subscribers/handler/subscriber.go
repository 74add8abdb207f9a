package handler

import (
	"net/http"

	"playday/internal/subscribers/service"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SubscriberHandler struct {
	service service.SubscriberService
	log     *logger.Logger
}

func NewSubscriberHandler(service service.SubscriberService, log *logger.Logger) *SubscriberHandler {
	return &SubscriberHandler{
		service: service,
		log:     log,
	}
}

func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SubscribeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Subscribe", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	sub, err := h.service.Subscribe(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Subscribe", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sub); err != nil {
		h.log.Error("failed to write success response", "handler", "Subscribe", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SubscriberHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/subscribers", h.Subscribe)
}
