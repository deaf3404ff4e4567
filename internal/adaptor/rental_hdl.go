package adaptor

import (
	"encoding/json"
	"io"
	"net/http"

	"golfbag-rental/internal/dto/request"
	"golfbag-rental/internal/usecase"
	"golfbag-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RentalHandler struct {
	service usecase.RentalService
	log     *zap.Logger
}

func NewRentalHandler(service usecase.RentalService, log *zap.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		log:     log.With(zap.String("handler", "rental")),
	}
}

// CheckAvailability handles POST /api/rentals/check-availability
func (h *RentalHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req request.CheckAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.log, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// CreateRental handles POST /api/rentals (protected)
func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	rental, err := h.service.CreateRental(r.Context(), userID.String(), &req)
	if err != nil {
		respondServiceError(w, h.log, err, "create rental")
		return
	}

	utils.ResponseCreated(w, "success", rental)
}

// ConfirmPayment handles PATCH /api/rentals/{id}/confirm-payment.
// Driven by the payment collaborator (webhook adapter), not end users.
func (h *RentalHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	rentalID := chi.URLParam(r, "id")

	var req request.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	rental, err := h.service.ConfirmPayment(r.Context(), rentalID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "success", rental)
}

// CancelByRenter handles PATCH /api/rentals/{id}/cancel-by-renter (protected)
func (h *RentalHandler) CancelByRenter(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	rentalID := chi.URLParam(r, "id")

	var req request.CancelRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	rental, err := h.service.CancelByRenter(r.Context(), userID.String(), rentalID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "cancel rental by renter")
		return
	}

	utils.ResponseSuccess(w, "success", rental)
}

// CancelByOwner handles PATCH /api/rentals/{id}/cancel-by-owner (protected)
func (h *RentalHandler) CancelByOwner(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	rentalID := chi.URLParam(r, "id")

	var req request.CancelRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	rental, err := h.service.CancelByOwner(r.Context(), userID.String(), rentalID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "cancel rental by owner")
		return
	}

	utils.ResponseSuccess(w, "success", rental)
}

// GetMyRentals handles GET /api/rentals/my-rentals (protected)
func (h *RentalHandler) GetMyRentals(w http.ResponseWriter, r *http.Request) {
	h.listRentals(w, r, usecase.RoleRenter)
}

// GetOwnerRentals handles GET /api/rentals/owner-rentals (protected)
func (h *RentalHandler) GetOwnerRentals(w http.ResponseWriter, r *http.Request) {
	h.listRentals(w, r, usecase.RoleOwner)
}

func (h *RentalHandler) listRentals(w http.ResponseWriter, r *http.Request, role string) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := request.NewPaginatedRequest(
		utils.ParseInt(query.Get("page"), request.DefaultPage),
		utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	)

	rentals, err := h.service.GetRentalsForUser(r.Context(), userID.String(), role, req)
	if err != nil {
		respondServiceError(w, h.log, err, "get rentals for user")
		return
	}

	utils.ResponseSuccess(w, "success", rentals)
}

// GetRentalByID handles GET /api/rentals/{id} (protected)
func (h *RentalHandler) GetRentalByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	rentalID := chi.URLParam(r, "id")

	rental, err := h.service.GetRentalByID(r.Context(), userID.String(), rentalID)
	if err != nil {
		respondServiceError(w, h.log, err, "get rental by ID")
		return
	}

	utils.ResponseSuccess(w, "success", rental)
}

// GetBlockedDates handles GET /api/listings/{id}/blocked-dates
func (h *RentalHandler) GetBlockedDates(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	blocked, err := h.service.GetBlockedDates(r.Context(), listingID)
	if err != nil {
		respondServiceError(w, h.log, err, "get blocked dates")
		return
	}

	utils.ResponseSuccess(w, "success", blocked)
}
