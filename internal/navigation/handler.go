package navigation

import (
	"net/http"

	"playday/pkg/auth"
	httputil "playday/pkg/http"
	"playday/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type NavigationHandler struct {
	policy Policy
	log    *logger.Logger
}

func NewNavigationHandler(policy Policy, log *logger.Logger) *NavigationHandler {
	return &NavigationHandler{policy: policy, log: log}
}

func (h *NavigationHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := auth.FromContext(r.Context())
	links := h.policy.Links(ok, id.Role)

	if err := httputil.WriteSuccess(w, links); err != nil {
		h.log.Error("failed to write success response", "handler", "Navigation", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NavigationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/navigation", h.Get)
}
