package adaptor

import (
	"encoding/json"
	"net/http"

	"golfbag-rental/internal/dto/request"
	"golfbag-rental/internal/usecase"
	"golfbag-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ListingHandler struct {
	service usecase.ListingService
	log     *zap.Logger
}

func NewListingHandler(service usecase.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log.With(zap.String("handler", "listing")),
	}
}

// CreateListing handles POST /api/listings (protected)
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	listing, err := h.service.CreateListing(r.Context(), userID.String(), &req)
	if err != nil {
		respondServiceError(w, h.log, err, "create listing")
		return
	}

	utils.ResponseCreated(w, "success", listing)
}

// GetListingByID handles GET /api/listings/{id}
func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	listing, err := h.service.GetListingByID(r.Context(), listingID)
	if err != nil {
		respondServiceError(w, h.log, err, "get listing by ID")
		return
	}

	utils.ResponseSuccess(w, "success", listing)
}

// GetMyListings handles GET /api/listings/my-listings (protected)
func (h *ListingHandler) GetMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	listings, err := h.service.GetMyListings(r.Context(), userID.String())
	if err != nil {
		respondServiceError(w, h.log, err, "get my listings")
		return
	}

	utils.ResponseSuccess(w, "success", listings)
}
