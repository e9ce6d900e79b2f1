package routes

import (
	"context"
	"net/http"

	"devevent/booking"
	"devevent/db"
	"devevent/events"
	"devevent/ratelim"
	"devevent/utils"

	"github.com/julienschmidt/httprouter"
)

func AddEventsRoutes(router *httprouter.Router, h *events.Handler, rl *ratelim.RateLimiter) {
	router.GET("/api/events/:slug", h.GetEvent)
	router.POST("/api/events", rl.Limit(h.CreateEvent))
	router.PATCH("/api/events/:slug", rl.Limit(h.UpdateEvent))
}

func AddBookingRoutes(router *httprouter.Router, h *booking.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/bookings", rl.Limit(h.CreateBooking))
	router.PATCH("/api/bookings/:id", rl.Limit(h.ChangeBookingEvent))
	router.GET("/api/events/:slug/bookings", h.ListEventBookings)
}

// StateReporter is satisfied by *db.Manager.
type StateReporter interface {
	State() db.State
}

// Pinger checks the optional notification backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AddHealthRoutes reports the database connection state without forcing a
// connection attempt. redis may be nil when notifications are disabled.
func AddHealthRoutes(router *httprouter.Router, dbState StateReporter, redis Pinger) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		out := utils.M{"status": "ok", "database": dbState.State().String()}
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				out["notifications"] = "unreachable"
			} else {
				out["notifications"] = "ok"
			}
		}
		utils.RespondWithJSON(w, http.StatusOK, out)
	})
}
