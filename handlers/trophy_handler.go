package handlers

import (
	"errors"
	"net/http"

	"github.com/Toleubekov/auction-system/middleware"
	"github.com/Toleubekov/auction-system/models"
	"github.com/Toleubekov/auction-system/services"
)

type TrophyHandler struct {
	trophyService services.TrophyService
}

func NewTrophyHandler(ts services.TrophyService) *TrophyHandler {
	return &TrophyHandler{trophyService: ts}
}

// CreateHandler обрабатывает POST /competitions/{competitionID}/trophies
func (h *TrophyHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Name       string `json:"name"`
		Season     string `json:"season"`
		WinnerTeam string `json:"winner_team"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Name == "" || input.WinnerTeam == "" {
		badRequestResponse(w, r, errors.New("name and winner_team are required"))
		return
	}

	trophy := &models.Trophy{
		CompetitionID: competitionID,
		Name:          input.Name,
		Season:        input.Season,
		WinnerTeam:    input.WinnerTeam,
	}

	if err := h.trophyService.Create(r.Context(), currentUserID, trophy); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"trophy": trophy}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByCompetitionHandler обрабатывает GET /competitions/{competitionID}/trophies
func (h *TrophyHandler) ListByCompetitionHandler(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	trophies, err := h.trophyService.ListByCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"trophies": trophies}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /competitions/{competitionID}/trophies/{trophyID}
func (h *TrophyHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	trophyID, err := getIDFromURL(r, "trophyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.trophyService.Delete(r.Context(), currentUserID, competitionID, trophyID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
