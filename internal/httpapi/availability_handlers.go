package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mentorias-app/slots-service/internal/model"
)

func (a *API) validateDay(w http.ResponseWriter, r *http.Request) {
	var req dayConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	seeds, err := req.toSeeds(req.defaultDuration())
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	a.respond(w, http.StatusOK, a.availability.ValidateDay(seeds))
}

func (a *API) replaceDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(mux.Vars(r)["date"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	var req dayConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	seeds, err := req.toSeeds(req.defaultDuration())
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := a.availability.ReplaceDay(r.Context(), callerID(r), date, seeds, req.defaultDuration()); err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.respond(w, http.StatusOK, map[string]any{"date": date.Format("2006-01-02"), "slots": len(seeds)})
}

func (a *API) clearDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(mux.Vars(r)["date"])
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	removed, err := a.availability.ClearDay(r.Context(), callerID(r), date)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.respond(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (a *API) listConfigured(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	slots, err := a.availability.ListConfigured(r.Context(), callerID(r), from, to)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	if slots == nil {
		slots = []*model.Slot{}
	}

	a.respond(w, http.StatusOK, map[string]any{"slots": slots})
}

func (a *API) listGlobalAvailable(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	slots, err := a.availability.ListGlobalAvailable(r.Context(), from, to)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	if slots == nil {
		slots = []*model.AvailableSlot{}
	}

	a.respond(w, http.StatusOK, map[string]any{"slots": slots})
}
