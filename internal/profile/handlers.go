// internal/profile/handlers.go

package profile

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/TomShtern/Date-Program-sub007/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := h.service.GetUser(r.Context(), vars["id"])
	if err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) GetProfileCompletion(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]float64{
		"completion": user.Completeness(),
	})
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var prefs Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.UpdatePreferences(r.Context(), userID, prefs); err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update preferences")
		return
	}

	utils.MessageResponse(w, "Preferences updated", http.StatusOK)
}

func (h *Handler) UpdateDealbreakers(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var db Dealbreakers
	if err := json.NewDecoder(r.Body).Decode(&db); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.UpdateDealbreakers(r.Context(), userID, db); err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update dealbreakers")
		return
	}

	utils.MessageResponse(w, "Dealbreakers updated", http.StatusOK)
}
