package handlers

import (
	"context"
	"net/http"

	"icarus-bknd/internal/models"
	"icarus-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userUUID string) (*models.User, error)
	GetUserType(ctx context.Context, userUUID string) (*int, error)
	SetUserType(ctx context.Context, callerUUID, targetUUID string, userType *int) (int, error)
	UpdateProvider(ctx context.Context, callerUUID, targetUUID string, upd *services.ProviderUpdate) error
	DeleteAccount(ctx context.Context, callerUUID, targetUUID string) error
}

type ProfileHandler struct {
	profiles ProfileService
	logr     *zap.Logger
}

func NewProfileHandler(svc ProfileService, logr *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: svc, logr: logr}
}

type profileUpdateReq struct {
	Provider *services.ProviderUpdate `json:"provider"`
}

type profileResp struct {
	Message string       `json:"message"`
	Profile *models.User `json:"profile"`
}

type userTypeReq struct {
	UserType *int `json:"user_type"`
}

type userTypeResp struct {
	Message  string `json:"message,omitempty"`
	UserType *int   `json:"user_type"`
}

// GET /users/{userUUID}/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.profiles.GetProfile(r.Context(), chi.URLParam(r, "userUUID"))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// PUT /users/{userUUID}/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	callerUUID, ok := caller(w, r)
	if !ok {
		return
	}
	target := chi.URLParam(r, "userUUID")

	var req profileUpdateReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logr, err)
		return
	}

	if err := h.profiles.UpdateProvider(r.Context(), callerUUID, target, req.Provider); err != nil {
		writeError(w, h.logr, err)
		return
	}

	u, err := h.profiles.GetProfile(r.Context(), target)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusCreated, profileResp{Message: services.ProfileUpdatedMessage, Profile: u})
}

// DELETE /users/{userUUID}/profile
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	callerUUID, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.profiles.DeleteAccount(r.Context(), callerUUID, chi.URLParam(r, "userUUID")); err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResp{Message: "Account deleted."})
}

// GET /users/{userUUID}/user_type
func (h *ProfileHandler) GetUserType(w http.ResponseWriter, r *http.Request) {
	t, err := h.profiles.GetUserType(r.Context(), chi.URLParam(r, "userUUID"))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, userTypeResp{UserType: t})
}

// PUT /users/{userUUID}/user_type
func (h *ProfileHandler) SetUserType(w http.ResponseWriter, r *http.Request) {
	callerUUID, ok := caller(w, r)
	if !ok {
		return
	}

	var req userTypeReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logr, err)
		return
	}

	t, err := h.profiles.SetUserType(r.Context(), callerUUID, chi.URLParam(r, "userUUID"), req.UserType)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusCreated, userTypeResp{Message: services.ProfileUpdatedMessage, UserType: &t})
}
