package http

import (
	"errors"
	"net/http"

	"github.com/sherinaayu/prototype-ecommerce/internal/auth"
)

type AuthHandler struct {
	authenticator auth.Authenticator
}

func NewAuthHandler(authenticator auth.Authenticator) *AuthHandler {
	return &AuthHandler{authenticator: authenticator}
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
		return
	}

	if err := h.authenticator.SignOut(token); err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to sign out")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
