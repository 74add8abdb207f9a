package handler

import (
	"net/http"

	"playday/internal/users/service"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
	"playday/pkg/middleware"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignUpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SignUp", err)
		return
	}

	user, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		h.writeError(w, "SignUp", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "SignUp", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SignIn", err)
		return
	}

	session, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		h.writeError(w, "SignIn", err)
		return
	}
	h.writeSuccess(w, "SignIn", session)
}

func (h *UserHandler) FederatedSignIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.FederatedSignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "FederatedSignIn", err)
		return
	}

	session, err := h.service.FederatedSignIn(r.Context(), ps.ByName("provider"), &req)
	if err != nil {
		h.writeError(w, "FederatedSignIn", err)
		return
	}
	h.writeSuccess(w, "FederatedSignIn", session)
}

func (h *UserHandler) SignOut(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "SignOut", err)
		return
	}

	if err := h.service.SignOut(r.Context(), caller); err != nil {
		h.writeError(w, "SignOut", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := middleware.RequireIdentity(r)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	user, err := h.service.Me(r.Context(), caller)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}
	h.writeSuccess(w, "Me", user)
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/signup", h.SignUp)
	router.POST("/api/v1/auth/signin", h.SignIn)
	router.POST("/api/v1/auth/federated/:provider", h.FederatedSignIn)
	router.POST("/api/v1/auth/signout", h.SignOut)
	router.GET("/api/v1/users/me", h.Me)
}
