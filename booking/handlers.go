package booking

import (
	"context"
	"net/http"
	"strings"

	"devevent/errs"
	"devevent/models"
	"devevent/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// EventFinder resolves the :slug in the event bookings route.
type EventFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
}

type Handler struct {
	store  *Store
	events EventFinder
	log    zerolog.Logger
}

func NewHandler(store *Store, events EventFinder, log zerolog.Logger) *Handler {
	return &Handler{store: store, events: events, log: log}
}

// CreateBooking serves POST /api/bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in models.BookingInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	b, err := h.store.Create(r.Context(), in)
	if err != nil {
		if errs.Status(err) == http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Error creating booking")
		}
		utils.RespondWithStoreError(w, err, "Failed to create booking")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Booking created successfully",
		"booking": b,
	})
}

// ChangeBookingEvent serves PATCH /api/bookings/:id with {"eventId": "..."}.
func (h *Handler) ChangeBookingEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		EventID string `json:"eventId"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	b, err := h.store.ChangeEvent(r.Context(), ps.ByName("id"), body.EventID)
	if err != nil {
		if errs.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
			return
		}
		if errs.Status(err) == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("id", ps.ByName("id")).Msg("Error updating booking")
		}
		utils.RespondWithStoreError(w, err, "Failed to update booking")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Booking updated successfully",
		"booking": b,
	})
}

// ListEventBookings serves GET /api/events/:slug/bookings.
func (h *Handler) ListEventBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := strings.TrimSpace(ps.ByName("slug"))
	if slug == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid or missing slug parameter")
		return
	}

	ev, err := h.events.FindBySlug(r.Context(), slug)
	if err == nil {
		var list []models.Booking
		list, err = h.store.FindByEvent(r.Context(), ev.ID)
		if err == nil {
			utils.RespondWithJSON(w, http.StatusOK, utils.M{
				"message":  "Bookings fetched successfully",
				"bookings": list,
			})
			return
		}
	}

	if errs.IsNotFound(err) {
		utils.RespondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	h.log.Error().Err(err).Str("slug", slug).Msg("Error fetching bookings")
	utils.RespondWithStoreError(w, err, "Failed to fetch bookings")
}
