package wire

import (
	"net/http"

	"golfbag-rental/internal/adaptor"
	"golfbag-rental/internal/data/repository"
	"golfbag-rental/internal/scheduler"
	"golfbag-rental/internal/usecase"
	"golfbag-rental/pkg/middleware"
	"golfbag-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Router    *chi.Mux
	Scheduler *scheduler.Scheduler
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) (*App, error) {
	service := usecase.NewService(repo, config, logger)
	handler := adaptor.NewHandler(service, logger)

	sched, err := scheduler.NewScheduler(service.Rental, config.Booking.SweepSpec, logger)
	if err != nil {
		return nil, err
	}

	router := setupRouter(handler, logger)

	return &App{
		Router:    router,
		Scheduler: sched,
	}, nil
}

// setupRouter configures the chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireListing(r, handler.Listing, logger)
	wireRental(r, handler.Rental, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
