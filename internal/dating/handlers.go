package dating

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/TomShtern/Date-Program-sub007/internal/common/utils"
	"github.com/TomShtern/Date-Program-sub007/internal/profile"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var dto SwipeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ProcessSwipe(r.Context(), userID, dto.TargetID, dto.Direction)
	if err != nil {
		switch err {
		case ErrCannotSwipeSelf:
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case ErrTargetNotFound, profile.ErrUserNotFound:
			utils.RespondWithError(w, http.StatusNotFound, "Target user not found")
		case ErrSwiperBanned:
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process swipe")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Rewind(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	swipe, err := h.service.RewindLastSwipe(r.Context(), userID)
	if err != nil {
		switch err {
		case ErrRewindNotAllowed:
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case ErrNothingToRewind:
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to rewind swipe")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, swipe)
}

func (h *Handler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	candidates, err := h.service.GetCandidates(r.Context(), userID)
	if err != nil {
		if err == ErrSwiperBanned {
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get candidates")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *Handler) GetStandouts(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	standouts, err := h.service.GetStandouts(r.Context(), userID)
	if err != nil {
		if err == ErrSwiperBanned {
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get standouts")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, standouts)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var state *State
	if s := r.URL.Query().Get("state"); s != "" {
		candidate := State(s)
		if !ValidState(candidate) {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown match state")
			return
		}
		state = &candidate
	}

	matches, err := h.service.GetMatches(r.Context(), userID, state)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		return
	}

	responses := make([]*MatchResponseDTO, 0, len(matches))
	for _, match := range matches {
		responses = append(responses, NewMatchResponse(match, userID))
	}

	utils.RespondWithJSON(w, http.StatusOK, responses)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, event Event) {
	userID := r.Context().Value("userID").(string)
	matchID := mux.Vars(r)["id"]

	match, err := h.service.TransitionMatch(r.Context(), matchID, userID, event)
	if err != nil {
		switch err {
		case ErrMatchNotFound:
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case ErrNotParticipant:
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case ErrInvalidTransition:
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update match")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, NewMatchResponse(match, userID))
}

func (h *Handler) MoveToFriends(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, EventMoveToFriends)
}

func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, EventUnmatch)
}

func (h *Handler) GracefulExit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, EventGracefulExit)
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	targetID := mux.Vars(r)["id"]

	if err := h.service.BlockUser(r.Context(), userID, targetID); err != nil {
		if err == ErrCannotSwipeSelf {
			utils.RespondWithError(w, http.StatusBadRequest, "Cannot block yourself")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to block user")
		return
	}

	utils.MessageResponse(w, "User blocked", http.StatusOK)
}

func (h *Handler) ReportUser(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	targetID := mux.Vars(r)["id"]

	var dto ReportRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ReportUser(r.Context(), userID, targetID, dto.Reason); err != nil {
		if err == ErrCannotSwipeSelf {
			utils.RespondWithError(w, http.StatusBadRequest, "Cannot report yourself")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to report user")
		return
	}

	utils.MessageResponse(w, "Report received", http.StatusCreated)
}
