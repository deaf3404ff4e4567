package adaptor

import (
	"errors"
	"net/http"

	"golfbag-rental/internal/usecase"
	"golfbag-rental/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Listing *ListingHandler
	Rental  *RentalHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Listing: NewListingHandler(service.Listing, log),
		Rental:  NewRentalHandler(service.Rental, log),
	}
}

// respondServiceError maps typed service errors onto HTTP responses.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var svcErr *usecase.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case usecase.ErrorKindNotFound:
			log.Warn(operation+" failed - not found", zap.Error(err))
			utils.ResponseNotFound(w, svcErr.Message)
		case usecase.ErrorKindInvalidRequest:
			log.Warn(operation+" failed - invalid request", zap.Error(err))
			utils.ResponseBadRequest(w, svcErr.Message, nil)
		case usecase.ErrorKindConflict:
			log.Warn(operation+" failed - dates conflict",
				zap.Error(err),
				zap.Strings("blocked_ranges", svcErr.BlockedRanges),
			)
			utils.ResponseConflict(w, svcErr.Message, map[string]any{
				"blocked_ranges": svcErr.BlockedRanges,
			})
		case usecase.ErrorKindForbidden:
			log.Warn(operation+" failed - forbidden", zap.Error(err))
			utils.ResponseForbidden(w, svcErr.Message)
		case usecase.ErrorKindInvalidState:
			log.Warn(operation+" failed - invalid state", zap.Error(err))
			utils.ResponseConflict(w, svcErr.Message, nil)
		default:
			log.Error("Failed to "+operation, zap.Error(err))
			utils.ResponseInternalError(w, "Internal server error")
		}
		return
	}

	log.Error("Failed to "+operation, zap.Error(err))
	utils.ResponseInternalError(w, "Internal server error")
}
