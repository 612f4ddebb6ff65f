package handlers

import (
	"net/http"

	"github.com/facturio/relance/httpx"
	"github.com/facturio/relance/internal/auth"
	"github.com/facturio/relance/internal/services"
)

// ProfileHandler lists the owner's reminder profiles.
type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	profiles, err := h.profiles.List(r.Context(), userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "profiles_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, profiles)
}
