package handlers

import (
	"encoding/json"
	"net/http"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/middleware"

	"go.uber.org/zap"
)

type messageResp struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}

// writeError answers with the status and public message of err. Causes are only logged.
func writeError(w http.ResponseWriter, logr *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logr.Error("request failed", zap.Error(err))
	} else {
		logr.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	msg, field := apperrors.PublicMessage(err)
	writeJSON(w, status, messageResp{Message: msg, Field: field})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidCriteria("body", "invalid payload")
	}
	return nil
}

// caller returns the authenticated uuid or answers 401.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResp{Message: "Invalid access credentials."})
	}
	return id, ok
}
