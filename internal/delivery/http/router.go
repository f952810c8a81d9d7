package http

import (
	"net/http"

	"conferencegateway/internal/delivery/http/controllers"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth guards every mutating route; metrics may be nil.
func NewRouter(
	sessions *controllers.SessionController,
	speakers *controllers.SpeakerController,
	requireAuth func(http.HandlerFunc) http.HandlerFunc,
	metrics http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Sessions
	mux.HandleFunc("GET /api/sessions", sessions.ListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", sessions.GetSession)
	mux.HandleFunc("GET /api/sessions/{id}/speakers", speakers.ListSessionSpeakers)
	mux.HandleFunc("POST /api/sessions", requireAuth(sessions.CreateSession))
	mux.HandleFunc("PUT /api/sessions/{id}", requireAuth(sessions.UpdateSession))
	mux.HandleFunc("PATCH /api/sessions/{id}", requireAuth(sessions.PatchSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", requireAuth(sessions.DeleteSession))

	// Speakers
	mux.HandleFunc("GET /api/speakers", speakers.ListSpeakers)
	mux.HandleFunc("GET /api/speakers/{id}", speakers.GetSpeaker)
	mux.HandleFunc("POST /api/speakers", requireAuth(speakers.CreateSpeaker))
	mux.HandleFunc("PUT /api/speakers/{id}", requireAuth(speakers.UpdateSpeaker))
	mux.HandleFunc("PATCH /api/speakers/{id}", requireAuth(speakers.PatchSpeaker))
	mux.HandleFunc("DELETE /api/speakers/{id}", requireAuth(speakers.DeleteSpeaker))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return mux
}
