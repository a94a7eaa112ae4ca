package handlers

import (
	"context"
	"net/http"
	"time"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/auth"
	"icarus-bknd/internal/config"
	"icarus-bknd/internal/middleware"
	"icarus-bknd/internal/models"
	"icarus-bknd/internal/services"

	"go.uber.org/zap"
)

const refreshCookie = "refresh_token"

// AuthService is the account and session backend the auth endpoints call.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	LoginLocal(ctx context.Context, email, password, deviceInfo string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken, deviceInfo string) (*auth.TokenPair, error)
	Logout(ctx context.Context, access *auth.Claims, refreshToken string) error
	Me(ctx context.Context, userUUID string) (*models.User, error)
}

type AuthHandler struct {
	authSvc AuthService
	logr    *zap.Logger
	cfg     *config.Config
}

func NewAuthHandler(svc AuthService, logr *zap.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authSvc: svc, logr: logr, cfg: cfg}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResp struct {
	Message    string `json:"message"`
	UUID       string `json:"u"`
	FirstLogin bool   `json:"first_login"`
}

type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

type loginResp struct {
	Message                string    `json:"message"`
	UUID                   string    `json:"u"`
	UserType               *int      `json:"user_type"`
	IsConfirmed            bool      `json:"is_confirmed"`
	IsInitialSetupComplete bool      `json:"is_initial_setup_complete"`
	AccessToken            string    `json:"access_token"`
	RefreshToken           string    `json:"refresh_token"`
	ExpiresAt              time.Time `json:"access_expires_at"`
}

type tokenResp struct {
	Message      string    `json:"message"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"access_expires_at"`
}

type loggedInAsResp struct {
	Email                  string  `json:"email"`
	Name                   string  `json:"name"`
	ProfilePicture         *string `json:"profile_picture"`
	IsInitialSetupComplete bool    `json:"is_initial_setup_complete"`
}

// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logr, err)
		return
	}

	u, err := h.authSvc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResp{
		Message:    "Account created successfully, a confirmation email is on its way!",
		UUID:       u.UUID.String(),
		FirstLogin: true,
	})
}

// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logr, err)
		return
	}

	res, err := h.authSvc.LoginLocal(r.Context(), req.Email, req.Password, req.DeviceInfo)
	if err != nil {
		if apperrors.Is(err, apperrors.KindUnauthenticated) {
			h.logr.Warn("local login failed", zap.String("email", req.Email))
		}
		writeError(w, h.logr, err)
		return
	}

	h.setRefreshCookie(w, res.Tokens.RefreshToken, res.Tokens.RefreshExp)
	writeJSON(w, http.StatusOK, loginResp{
		Message:                "User Login successful!",
		UUID:                   res.User.UUID.String(),
		UserType:               res.User.UserType,
		IsConfirmed:            res.User.IsConfirmed,
		IsInitialSetupComplete: res.User.IsInitialSetupComplete,
		AccessToken:            res.Tokens.AccessToken,
		RefreshToken:           res.Tokens.RefreshToken,
		ExpiresAt:              res.Tokens.AccessExp,
	})
}

// POST /refresh (reads the refresh token from the cookie or the body)
type refreshReq struct {
	RefreshToken string `json:"refresh_token,omitempty"`
	DeviceInfo   string `json:"device_info,omitempty"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	_ = decodeJSON(r, &req)

	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	}
	if req.RefreshToken == "" {
		writeError(w, h.logr, apperrors.InvalidCriteria("refresh_token", "refresh token required"))
		return
	}

	pair, err := h.authSvc.Refresh(r.Context(), req.RefreshToken, req.DeviceInfo)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken, pair.RefreshExp)
	writeJSON(w, http.StatusOK, tokenResp{
		Message:      "successful refresh",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExp,
	})
}

// POST /logout
type logoutReq struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutReq
	_ = decodeJSON(r, &req)

	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.authSvc.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		writeError(w, h.logr, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, messageResp{Message: "Successfully logged out."})
}

// GET /verifyAuth
func (h *AuthHandler) VerifyAuth(w http.ResponseWriter, r *http.Request) {
	if _, ok := caller(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, true)
}

// GET /loggedInAs
func (h *AuthHandler) LoggedInAs(w http.ResponseWriter, r *http.Request) {
	callerUUID, ok := caller(w, r)
	if !ok {
		return
	}

	u, err := h.authSvc.Me(r.Context(), callerUUID)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}

	writeJSON(w, http.StatusOK, loggedInAsResp{
		Email:                  u.Email,
		Name:                   u.Name,
		ProfilePicture:         u.ProfilePictureLink,
		IsInitialSetupComplete: u.IsInitialSetupComplete,
	})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cfg.Environment == "production",
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}
