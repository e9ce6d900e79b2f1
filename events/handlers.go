package events

import (
	"net/http"
	"strings"

	"devevent/errs"
	"devevent/models"
	"devevent/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

type Handler struct {
	store *Store
	log   zerolog.Logger
}

func NewHandler(store *Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// GetEvent serves GET /api/events/:slug.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := strings.TrimSpace(ps.ByName("slug"))
	if slug == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid or missing slug parameter")
		return
	}

	ev, err := h.store.FindBySlug(r.Context(), slug)
	if err != nil {
		if errs.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error().Err(err).Str("slug", slug).Msg("Error fetching event")
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
			"message": "Failed to fetch event",
			"error":   utils.ShortError(err),
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Event fetched successfully",
		"event":   ev,
	})
}

// CreateEvent serves POST /api/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in models.EventInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ev, err := h.store.Create(r.Context(), in)
	if err != nil {
		if errs.Status(err) == http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Error creating event")
		}
		utils.RespondWithStoreError(w, err, "Failed to create event")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message": "Event created successfully",
		"event":   ev,
	})
}

// UpdateEvent serves PATCH /api/events/:slug.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slug := strings.TrimSpace(ps.ByName("slug"))
	if slug == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid or missing slug parameter")
		return
	}

	var patch models.EventPatch
	if err := utils.DecodeJSON(w, r, &patch); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ev, err := h.store.Update(r.Context(), slug, patch)
	if err != nil {
		if errs.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		if errs.Status(err) == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("slug", slug).Msg("Error updating event")
		}
		utils.RespondWithStoreError(w, err, "Failed to update event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Event updated successfully",
		"event":   ev,
	})
}
