package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/schedule"
	"github.com/mentorias-app/slots-service/internal/service"
	"go.uber.org/zap"
)

// AvailabilityService is the mentor-configuration surface consumed by the
// API.
type AvailabilityService interface {
	ValidateDay(seeds []model.SlotSeed) schedule.Result
	ReplaceDay(ctx context.Context, mentorID uuid.UUID, date time.Time, seeds []model.SlotSeed, defaultDuration int) error
	ListConfigured(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*model.Slot, error)
	ListGlobalAvailable(ctx context.Context, from, to time.Time) ([]*model.AvailableSlot, error)
	GetSlot(ctx context.Context, mentorID uuid.UUID, date time.Time, startMin int) (*model.Slot, error)
	ClearDay(ctx context.Context, mentorID uuid.UUID, date time.Time) (int64, error)
}

// MentorService maintains mentor display metadata.
type MentorService interface {
	UpsertProfile(ctx context.Context, mentorID uuid.UUID, displayName string, avatarURL *string) (*model.Mentor, error)
	GetProfile(ctx context.Context, mentorID uuid.UUID) (*model.Mentor, error)
}

// ReservationService is the student booking surface consumed by the API.
type ReservationService interface {
	Reserve(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error)
	Confirm(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error)
	Cancel(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error)
}

// BookingService completes checkout for a held slot.
type BookingService interface {
	CompleteBooking(ctx context.Context, req service.BookingRequest) (*model.Session, error)
}

// API wires the HTTP surface over the core services.
type API struct {
	router       *mux.Router
	availability AvailabilityService
	reservations ReservationService
	bookings     BookingService
	mentors      MentorService
	jwtSecret    []byte
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewAPI(
	availability AvailabilityService,
	reservations ReservationService,
	bookings BookingService,
	mentors MentorService,
	jwtSecret string,
	logger *zap.Logger,
) *API {
	r := mux.NewRouter()
	r = r.PathPrefix("/api").Subrouter()

	return &API{
		router:       r,
		availability: availability,
		reservations: reservations,
		bookings:     bookings,
		mentors:      mentors,
		jwtSecret:    []byte(jwtSecret),
		validate:     validator.New(),
		logger:       logger,
	}
}

// Handler returns the root handler with request logging and CORS for the
// mobile app's web build.
func (a *API) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
	)
	return handlers.LoggingHandler(os.Stdout, cors(a.router))
}

// RegisterRoutes attaches all endpoints. Everything except the health check
// requires an authenticated caller.
func (a *API) RegisterRoutes() {
	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)

	authed := a.router.NewRoute().Subrouter()
	authed.Use(a.authMiddleware)

	// Mentor configuration surface.
	authed.HandleFunc("/availability/validate", a.validateDay).Methods(http.MethodPost)
	authed.HandleFunc("/mentors/me/days/{date}", a.replaceDay).Methods(http.MethodPut)
	authed.HandleFunc("/mentors/me/days/{date}", a.clearDay).Methods(http.MethodDelete)
	authed.HandleFunc("/mentors/me/days/{date}/slots/{hora}", a.getSlot).Methods(http.MethodGet)
	authed.HandleFunc("/mentors/me/slots", a.listConfigured).Methods(http.MethodGet)
	authed.HandleFunc("/mentors/me/profile", a.upsertProfile).Methods(http.MethodPut)
	authed.HandleFunc("/mentors/{id}/profile", a.getProfile).Methods(http.MethodGet)

	// Student booking surface.
	authed.HandleFunc("/slots", a.listGlobalAvailable).Methods(http.MethodGet)
	authed.HandleFunc("/slots/{id}/reserve", a.reserve).Methods(http.MethodPost)
	authed.HandleFunc("/slots/{id}/confirm", a.confirm).Methods(http.MethodPost)
	authed.HandleFunc("/slots/{id}/cancel", a.cancel).Methods(http.MethodPost)
	authed.HandleFunc("/bookings", a.completeBooking).Methods(http.MethodPost)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	a.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("Failed to encode response", zap.Error(err))
	}
}
