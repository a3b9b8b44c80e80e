package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Toleubekov/auction-system/middleware"
	"github.com/Toleubekov/auction-system/models"
	"github.com/Toleubekov/auction-system/repositories"
	"github.com/Toleubekov/auction-system/services"
)

type CompetitionHandler struct {
	competitionService services.CompetitionService
	standingService    services.StandingService
}

func NewCompetitionHandler(cs services.CompetitionService, ss services.StandingService) *CompetitionHandler {
	return &CompetitionHandler{competitionService: cs, standingService: ss}
}

type competitionInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Season      string  `json:"season"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Location    *string `json:"location"`
}

func (in *competitionInput) toModel() (*models.Competition, error) {
	start, err := time.Parse(time.RFC3339, in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date, expected RFC3339: %w", err)
	}
	end, err := time.Parse(time.RFC3339, in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date, expected RFC3339: %w", err)
	}
	return &models.Competition{
		Name:        in.Name,
		Description: in.Description,
		Season:      in.Season,
		StartDate:   start,
		EndDate:     end,
		Location:    in.Location,
	}, nil
}

// CreateHandler обрабатывает POST /competitions
func (h *CompetitionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create competition")
		return
	}

	var input competitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := input.toModel()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitionService.Create(r.Context(), currentUserID, competition); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /competitions/{competitionID}
func (h *CompetitionHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /competitions
func (h *CompetitionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListCompetitionsFilter
	query := r.URL.Query()

	if organizerIDStr := query.Get("organizer_id"); organizerIDStr != "" {
		id, err := strconv.Atoi(organizerIDStr)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, errors.New("invalid organizer_id query parameter"))
			return
		}
		filter.OrganizerID = &id
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := models.CompetitionStatus(statusStr)
		filter.Status = &status
	}
	if season := query.Get("season"); season != "" {
		filter.Season = &season
	}
	filter.Limit = 20
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	competitions, err := h.competitionService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitions": competitions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PUT /competitions/{competitionID}
func (h *CompetitionHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input competitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := input.toModel()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competition.ID = id

	if err := h.competitionService.Update(r.Context(), currentUserID, competition); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler обрабатывает PATCH /competitions/{competitionID}/status
func (h *CompetitionHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
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
		Status models.CompetitionStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitionService.UpdateStatus(r.Context(), currentUserID, id, input.Status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": input.Status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogoHandler обрабатывает POST /competitions/{competitionID}/logo
func (h *CompetitionHandler) UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user for logo upload")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for logo"))
		return
	}

	competition, err := h.competitionService.UploadLogo(r.Context(), currentUserID, id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /competitions/{competitionID}
func (h *CompetitionHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.competitionService.Delete(r.Context(), currentUserID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListStandingsHandler обрабатывает GET /competitions/{competitionID}/standings
func (h *CompetitionHandler) ListStandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingService.ListByCompetition(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpsertStandingHandler обрабатывает PUT /competitions/{competitionID}/standings
func (h *CompetitionHandler) UpsertStandingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var standing models.Standing
	if err := readJSON(w, r, &standing); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	standing.CompetitionID = id

	if err := h.standingService.Upsert(r.Context(), currentUserID, &standing); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
