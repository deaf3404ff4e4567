package wire

import (
	"golfbag-rental/internal/adaptor"
	"golfbag-rental/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireListing(r chi.Router, listingHandler *adaptor.ListingHandler, log *zap.Logger) {
	// ==================== PROTECTED ROUTES (verified identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		// POST /api/listings - publish a bag
		r.Post("/api/listings", listingHandler.CreateListing)

		// GET /api/listings/my-listings - caller's own listings
		r.Get("/api/listings/my-listings", listingHandler.GetMyListings)
	})

	// ==================== PUBLIC ROUTES ====================
	// GET /api/listings/{id} - listing detail
	r.Get("/api/listings/{id}", listingHandler.GetListingByID)
}
