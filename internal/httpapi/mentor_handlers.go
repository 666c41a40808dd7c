package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mentorias-app/slots-service/internal/schedule"
)

type profileRequest struct {
	DisplayName string  `json:"display_name" validate:"required"`
	AvatarURL   *string `json:"avatar_url"`
}

func (a *API) upsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	mentor, err := a.mentors.UpsertProfile(r.Context(), callerID(r), req.DisplayName, req.AvatarURL)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.respond(w, http.StatusOK, mentor)
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	mentorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid mentor id")
		return
	}

	mentor, err := a.mentors.GetProfile(r.Context(), mentorID)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	if mentor == nil {
		a.respondError(w, http.StatusNotFound, "not_found", "mentor not found")
		return
	}

	a.respond(w, http.StatusOK, mentor)
}

func (a *API) getSlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	date, err := parseDate(vars["date"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	startMin, err := schedule.ParseClock(vars["hora"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	slot, err := a.availability.GetSlot(r.Context(), callerID(r), date, startMin)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	if slot == nil {
		a.respondError(w, http.StatusNotFound, "not_found", "slot not found")
		return
	}

	a.respond(w, http.StatusOK, slot)
}
