package handlers

import (
	"net/http"

	"github.com/Toleubekov/auction-system/middleware"
	"github.com/Toleubekov/auction-system/services"
)

type AuctionHandler struct {
	auctionService services.AuctionService
}

func NewAuctionHandler(as services.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: as}
}

// CreateHandler обрабатывает POST /auctions
func (h *AuctionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create auction")
		return
	}

	var input services.CreateAuctionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	auction, err := h.auctionService.Create(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"auction": auction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /auctions/{auctionID}
func (h *AuctionHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "auctionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	auction, err := h.auctionService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"auction": auction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByCompetitionHandler обрабатывает GET /competitions/{competitionID}/auctions
func (h *AuctionHandler) ListByCompetitionHandler(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	auctions, err := h.auctionService.ListByCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"auctions": auctions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
