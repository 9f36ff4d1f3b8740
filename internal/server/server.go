// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires services, middleware and routes into an Echo
// instance and runs it with graceful shutdown.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/assets"
	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"codeberg.org/oliverandrich/teaching-award/internal/database"
	"codeberg.org/oliverandrich/teaching-award/internal/handlers"
	"codeberg.org/oliverandrich/teaching-award/internal/i18n"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/services/auth"
	"codeberg.org/oliverandrich/teaching-award/internal/services/email"
	"codeberg.org/oliverandrich/teaching-award/internal/services/lecturers"
	"codeberg.org/oliverandrich/teaching-award/internal/services/maintenance"
	"codeberg.org/oliverandrich/teaching-award/internal/services/nomination"
	"codeberg.org/oliverandrich/teaching-award/internal/services/session"
	"codeberg.org/oliverandrich/teaching-award/internal/services/verification"
	"codeberg.org/oliverandrich/teaching-award/internal/sse"
	"codeberg.org/oliverandrich/teaching-award/internal/validate"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
)

const (
	shutdownTimeout = 10 * time.Second
	eventsPath      = "/admin/events"
)

// Server is the HTTP application together with its purge job.
type Server struct {
	Echo    *echo.Echo
	cleaner *maintenance.Cleaner
	cfg     *config.Config
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to init i18n: %w", err)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create email service: %w", err)
	}

	srv, err := New(cfg, repository.New(db), mailer)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// New builds the services and the Echo instance serving them.
func New(cfg *config.Config, repo *repository.Repository, mailer verification.Mailer) (*Server, error) {
	sessMgr, err := session.NewManager(&cfg.Session, strings.HasPrefix(cfg.Server.BaseURL, "https://"))
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	validator := validate.New(cfg.Award.EmailDomains)
	if err := repo.SetEmailDomains(context.Background(), validator.Domains()); err != nil {
		return nil, fmt.Errorf("failed to store email domains: %w", err)
	}
	engine := verification.NewEngine(repo, mailer, verification.WithValidity(cfg.Award.TokenValidity))

	h := handlers.New(handlers.Deps{
		Repo:        repo,
		Lecturers:   lecturers.NewService(repo, cfg.Award.SearchMatcher),
		Nominations: nomination.NewService(repo, validator, engine),
		Verifier:    engine,
		Auth:        auth.NewService(repo),
		Sessions:    sessMgr,
		Validator:   validator,
		Events:      sse.NewHub(),
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	setupMiddleware(e, cfg, findAssets(), sessMgr, repo)
	setupRoutes(e, h)

	cleaner := maintenance.NewCleaner(engine,
		maintenance.WithSchedule(cfg.Award.PurgeSchedule),
		maintenance.WithGrace(cfg.Award.PurgeGrace),
	)

	return &Server{Echo: e, cleaner: cleaner, cfg: cfg}, nil
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers) {
	// Infrastructure
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/static/*", echo.WrapHandler(assets.FileServer()))

	// Public
	e.GET("/", h.Index)
	e.POST("/", h.DismissHint)
	e.GET("/nominate", h.NominateForm)
	e.POST("/nominate", h.Nominate)
	e.GET("/nominate/success", h.NominateSuccess)
	e.GET("/verify/:token", h.Verify)
	e.GET("/renew", h.RenewForm)
	e.POST("/renew", h.Renew)
	e.GET("/renew/success", h.RenewSuccess)

	// Admin
	e.GET("/admin/login", h.LoginPage)
	e.POST("/admin/login", h.Login)
	e.POST("/admin/logout", h.Logout)

	requireAuth := RequireAuth()
	e.GET("/admin", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/admin/lecturers")
	}, requireAuth)
	e.GET("/admin/lecturers", h.AdminLecturers, requireAuth)
	e.GET("/admin/lecturers/:id", h.AdminLecturer, requireAuth)
	e.POST("/admin/lecturers/:id/favorite", h.ToggleFavorite, requireAuth)
	e.GET("/admin/nominations", h.AdminNominations, requireAuth)
	e.GET("/admin/verifications", h.AdminVerifications, requireAuth)
	e.GET(eventsPath, h.Events, requireAuth)
}

// Serve listens until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down the listeners and the purge job.
func (s *Server) Serve(ctx context.Context) error {
	tlsSetup, err := SetupTLS(s.cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	if err := s.cleaner.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	var redirect *http.Server

	switch tlsSetup.Mode {
	case TLSModeOff:
		go func() {
			slog.Info("Server running", "url", s.cfg.Server.BaseURL)
			if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("Server running", "url", s.cfg.Server.BaseURL)
			if err := s.serveTLS(":443", tlsSetup.Config); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		redirect = &http.Server{
			Addr:              ":80",
			Handler:           tlsSetup.Redirect,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP→HTTPS redirect active", "addr", ":80")
			if err := redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	default:
		go func() {
			slog.Info("Server running", "url", s.cfg.Server.BaseURL)
			if err := s.serveTLS(addr, tlsSetup.Config); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case serveErr = <-errChan:
		slog.Error("server error", "error", serveErr)
	}

	return multierr.Append(serveErr, s.shutdown(redirect))
}

func (s *Server) shutdown(redirect *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if shutdownErr := s.Echo.Shutdown(ctx); shutdownErr != nil {
		err = multierr.Append(err, fmt.Errorf("shutdown server: %w", shutdownErr))
	}
	if redirect != nil {
		if shutdownErr := redirect.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown redirect server: %w", shutdownErr))
		}
	}

	select {
	case <-s.cleaner.Stop().Done():
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("stop purge job: %w", ctx.Err()))
	}

	if err == nil {
		slog.Info("server stopped")
	}
	return err
}

// serveTLS starts Echo on addr with a custom TLS configuration.
func (s *Server) serveTLS(addr string, tlsConfig *tls.Config) error {
	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	s.Echo.TLSListener = tls.NewListener(ln, tlsConfig)
	s.Echo.TLSServer.TLSConfig = tlsConfig
	return s.Echo.TLSServer.Serve(s.Echo.TLSListener)
}
