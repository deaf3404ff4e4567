package wire

import (
	"golfbag-rental/internal/adaptor"
	"golfbag-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRental(r chi.Router, rentalHandler *adaptor.RentalHandler, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/rentals/check-availability - calendar pre-check
	r.Post("/api/rentals/check-availability", rentalHandler.CheckAvailability)

	// GET /api/listings/{id}/blocked-dates - calendar day view
	r.Get("/api/listings/{id}/blocked-dates", rentalHandler.GetBlockedDates)

	// PATCH /api/rentals/{id}/confirm-payment - payment collaborator callback
	r.Patch("/api/rentals/{id}/confirm-payment", rentalHandler.ConfirmPayment)

	// ==================== PROTECTED ROUTES (verified identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/rentals - reserve a date range
		r.Post("/api/rentals", rentalHandler.CreateRental)

		// GET /api/rentals/my-rentals - rentals where caller is the renter
		r.Get("/api/rentals/my-rentals", rentalHandler.GetMyRentals)

		// GET /api/rentals/owner-rentals - rentals on the caller's listings
		r.Get("/api/rentals/owner-rentals", rentalHandler.GetOwnerRentals)

		// GET /api/rentals/{id} - rental detail, parties only
		r.Get("/api/rentals/{id}", rentalHandler.GetRentalByID)

		// PATCH /api/rentals/{id}/cancel-by-renter
		r.Patch("/api/rentals/{id}/cancel-by-renter", rentalHandler.CancelByRenter)

		// PATCH /api/rentals/{id}/cancel-by-owner
		r.Patch("/api/rentals/{id}/cancel-by-owner", rentalHandler.CancelByOwner)
	})
}
