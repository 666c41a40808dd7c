package httpapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/schedule"
)

// windowDTO is one proposed time window as the calendar UI sends it. The
// legacy client sends duracion either as a bare number or as a numeric
// string; it is normalized here before anything reaches the core.
type windowDTO struct {
	Hora      string          `json:"hora" validate:"required"`
	Duracion  json.RawMessage `json:"duracion,omitempty"`
	Modalidad string          `json:"modalidad" validate:"required,oneof=virtual presencial"`
	Lugar     *string         `json:"lugar,omitempty"`
	Cupo      int             `json:"cupo,omitempty"`
}

func (w windowDTO) durationMin() (int, error) {
	if len(w.Duracion) == 0 || string(w.Duracion) == "null" {
		return 0, nil
	}

	var n int
	if err := json.Unmarshal(w.Duracion, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(w.Duracion, &s); err == nil {
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("duracion %q is not a number", s)
		}
		return n, nil
	}

	return 0, fmt.Errorf("duracion has an unsupported shape")
}

func (w windowDTO) toSeed() (model.SlotSeed, error) {
	startMin, err := schedule.ParseClock(w.Hora)
	if err != nil {
		return model.SlotSeed{}, err
	}

	duration, err := w.durationMin()
	if err != nil {
		return model.SlotSeed{}, err
	}

	return model.SlotSeed{
		StartMin:        startMin,
		DurationMin:     duration,
		Modality:        model.Modality(w.Modalidad),
		Location:        w.Lugar,
		MaxParticipants: w.Cupo,
	}, nil
}

// dayConfigRequest is the body of replace-day and validate requests.
type dayConfigRequest struct {
	Slots           []windowDTO `json:"slots" validate:"required,dive"`
	DuracionDefault int         `json:"duracion_default,omitempty"`
}

const defaultSlotDuration = 60

func (r dayConfigRequest) defaultDuration() int {
	if r.DuracionDefault > 0 {
		return r.DuracionDefault
	}
	return defaultSlotDuration
}

func (r dayConfigRequest) toSeeds(defaultDuration int) ([]model.SlotSeed, error) {
	seeds := make([]model.SlotSeed, len(r.Slots))
	for i, w := range r.Slots {
		seed, err := w.toSeed()
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		if seed.DurationMin == 0 {
			seed.DurationMin = defaultDuration
		}
		seeds[i] = seed
	}
	return seeds, nil
}

// parseDate parses a YYYY-MM-DD path or query value as a UTC calendar date.
func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return date.UTC(), nil
}

// parseRange reads from/to query parameters; to defaults to from+28 days.
func parseRange(fromValue, toValue string) (time.Time, time.Time, error) {
	from, err := parseDate(fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if toValue == "" {
		return from, from.AddDate(0, 0, 28), nil
	}

	to, err := parseDate(toValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to %q must be after from %q", toValue, fromValue)
	}

	return from, to, nil
}
