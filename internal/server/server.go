package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"coursemarket/internal/auth"
	"coursemarket/internal/config"
	mw "coursemarket/internal/middleware"
	rtr "coursemarket/internal/router"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/golang/glog"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/cors"
)

// Dependencies are the components the HTTP layer is built from.
type Dependencies struct {
	Courses  rtr.CourseService
	Verifier *auth.Verifier
	NewRelic *newrelic.Application
}

func Routes(cfg *config.ServerConfig, deps Dependencies) *chi.Mux {
	compressor := middleware.NewCompressor(5, "application/json")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Logger, // Log API Request Calls
		middleware.Recoverer,
		mw.NewRelic(deps.NewRelic),
		compressor.Handler,
	)
	if cfg.HTTP.RateLimitPerMinute > 0 {
		router.Use(httprate.LimitByIP(cfg.HTTP.RateLimitPerMinute, time.Minute))
	}

	router.Route("/", func(r chi.Router) {
		r.Mount("/", rtr.HealthRoutes())
	})

	requireAuth := auth.RequireAuth(deps.Verifier, cfg.Auth.CookieName)
	router.Route("/api/v1", func(r chi.Router) {
		r.Mount("/course", rtr.CourseRoutes(deps.Courses, requireAuth, cfg.HTTP.MaxUploadBytes))
	})

	return router
}

// Start serves the API until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, cfg *config.ServerConfig, deps Dependencies) error {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedHeaders:   []string{"Authorization", "Cookie", "Content-Type"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PATCH"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", cfg.HTTP.Port),
		Handler:           c.Handler(Routes(cfg, deps)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		glog.Infof("Server is listening on port %v", cfg.HTTP.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	glog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
