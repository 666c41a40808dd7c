package httpapi

import (
	"errors"
	"net/http"

	"github.com/mentorias-app/slots-service/internal/schedule"
	"github.com/mentorias-app/slots-service/internal/service"
	"go.uber.org/zap"
)

type errorResponse struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Conflicts []schedule.Conflict `json:"conflicts,omitempty"`
}

func (a *API) respondError(w http.ResponseWriter, status int, code, message string) {
	a.respond(w, status, errorResponse{Code: code, Message: message})
}

// writeServiceError maps the core's failure taxonomy onto distinct HTTP
// responses. Conflict and slot-no-longer-available explicitly say that
// someone else took the slot rather than showing a generic error.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		a.respond(w, http.StatusBadRequest, errorResponse{
			Code:      "validation_error",
			Message:   vErr.Msg,
			Conflicts: vErr.Conflicts,
		})
	case errors.Is(err, service.ErrSlotNotFound):
		a.respondError(w, http.StatusNotFound, "slot_not_found",
			"the slot does not exist")
	case errors.Is(err, service.ErrConflict):
		a.respondError(w, http.StatusConflict, "conflict",
			"someone else just took this slot, refresh and pick another time")
	case errors.Is(err, service.ErrSlotNoLongerAvailable):
		a.respondError(w, http.StatusConflict, "slot_no_longer_available",
			"your hold expired or someone else took the slot, start again from slot selection")
	case errors.Is(err, service.ErrAlreadyBooked):
		a.respondError(w, http.StatusConflict, "already_booked",
			"this slot is already booked for you")
	case errors.Is(err, service.ErrPaymentFailed):
		a.respondError(w, http.StatusPaymentRequired, "payment_failed",
			"the payment was declined, your hold is still active so you can retry")
	case errors.Is(err, service.ErrInconsistency):
		a.logger.Error("Booking inconsistency surfaced", zap.Error(err))
		a.respondError(w, http.StatusInternalServerError, "inconsistency",
			"the booking could not be finalized consistently, support has been notified")
	default:
		a.logger.Error("Unhandled service error", zap.Error(err))
		a.respondError(w, http.StatusInternalServerError, "internal",
			"internal error, try again later")
	}
}
