package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/chatledger/internal/http/auth"
	"github.com/MrJamesThe3rd/chatledger/internal/http/tracker"
)

type Options struct {
	// JWTSecret enables bearer authentication on /api/v1 when set.
	JWTSecret      []byte
	AllowedOrigins []string
}

func New(trackersV1 *tracker.Handler, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if len(opts.JWTSecret) > 0 {
			r.Use(auth.Middleware(opts.JWTSecret))
		}

		r.Route("/trackers", trackersV1.Routes)
	})

	return router
}
