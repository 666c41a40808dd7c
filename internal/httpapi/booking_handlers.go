package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mentorias-app/slots-service/internal/service"
)

func (a *API) slotID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

func (a *API) reserve(w http.ResponseWriter, r *http.Request) {
	slotID, ok := a.slotID(r)
	if !ok {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid slot id")
		return
	}

	slot, err := a.reservations.Reserve(r.Context(), slotID, callerID(r))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.respond(w, http.StatusOK, slot)
}

func (a *API) confirm(w http.ResponseWriter, r *http.Request) {
	slotID, ok := a.slotID(r)
	if !ok {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid slot id")
		return
	}

	slot, err := a.reservations.Confirm(r.Context(), slotID, callerID(r))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.respond(w, http.StatusOK, slot)
}

func (a *API) cancel(w http.ResponseWriter, r *http.Request) {
	slotID, ok := a.slotID(r)
	if !ok {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid slot id")
		return
	}

	slot, err := a.reservations.Cancel(r.Context(), slotID, callerID(r))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.respond(w, http.StatusOK, slot)
}

type completeBookingRequest struct {
	SlotID            string   `json:"slot_id" validate:"required,uuid"`
	SubjectID         string   `json:"subject_id" validate:"required,uuid"`
	ParticipantCount  int      `json:"participant_count" validate:"required,min=1"`
	ParticipantEmails []string `json:"participant_emails" validate:"required,min=1"`
	Note              string   `json:"note,omitempty"`
}

func (a *API) completeBooking(w http.ResponseWriter, r *http.Request) {
	var req completeBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	slotID, _ := uuid.Parse(req.SlotID)
	subjectID, _ := uuid.Parse(req.SubjectID)

	session, err := a.bookings.CompleteBooking(r.Context(), service.BookingRequest{
		SlotID:            slotID,
		StudentID:         callerID(r),
		SubjectID:         subjectID,
		ParticipantCount:  req.ParticipantCount,
		ParticipantEmails: req.ParticipantEmails,
		Note:              req.Note,
	})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.respond(w, http.StatusCreated, session)
}
