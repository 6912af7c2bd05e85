package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jgoulah/envirolink/internal/handlers"
	envmiddleware "github.com/jgoulah/envirolink/internal/server/middleware"
)

type WebAPI struct {
	router          http.Handler
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    handlers.Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(logger, config)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// ConfigureRouter builds the API routes
func ConfigureRouter(logger zerolog.Logger, config Config) http.Handler {
	h := handlers.NewHandler(config.Dependencies)

	router := chi.NewRouter()

	router.Use(envmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/energy", func(r chi.Router) {
			r.Get("/daily", h.GetDaily)
			r.Get("/week", h.GetWeek)
			r.Get("/realtime", h.GetRealTime)
			r.Get("/breakdown", h.GetBreakdown)
			r.Get("/insights", h.GetInsights)
		})

		r.Route("/chat/{session}", func(r chi.Router) {
			r.Get("/messages", h.ListMessages)
			r.Post("/messages", h.PostMessage)
			r.Post("/retry", h.PostRetry)
			r.Get("/suggestions", h.ListSuggestions)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.AddItem)
			r.Get("/stats", h.GetStats)
			r.Post("/{id}/used", h.MarkUsed)
			r.Post("/{id}/wasted", h.MarkWasted)
		})

		r.Post("/recipes", h.PostRecipes)
		r.Post("/vision", h.PostVision)
		r.Post("/carbon", h.PostCarbon)
	})

	return router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	return nil
}
