// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package lecturers serves the public lecturer list and the admin views.
package lecturers

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"codeberg.org/oliverandrich/teaching-award/internal/metrics"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/search"
)

// Filter narrows the public list.
type Filter struct {
	Query   string
	Faculty models.Faculty
}

// Store is what the listing reads and toggles.
type Store interface {
	repository.LecturerStore
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Service lists lecturers using a primary matcher and falls back to
// substring matching when the store cannot run the primary one.
type Service struct {
	store    Store
	primary  search.Matcher
	fallback search.Matcher
}

// Option customises the Service.
type Option func(*Service)

// WithMatcher overrides the primary matcher.
func WithMatcher(m search.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.primary = m
		}
	}
}

// NewService creates a listing service for the configured matcher mode.
func NewService(store Store, mode string, opts ...Option) *Service {
	s := &Service{
		store:    store,
		primary:  search.NewTrigram(),
		fallback: search.Substring{},
	}

	switch mode {
	case config.MatcherSubstring:
		s.primary = search.Substring{}
	case config.MatcherTrigram:
		s.fallback = nil
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns lecturers with at least one verified nomination matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]models.LecturerSummary, error) {
	q := repository.LecturerQuery{
		Matcher: s.primary,
		Faculty: f.Faculty,
		Terms:   search.Terms(f.Query),
	}

	lecturers, err := s.store.SearchLecturers(ctx, q)
	if err != nil && repository.IsUndefinedFunction(err) && s.fallback != nil && len(q.Terms) > 0 {
		slog.WarnContext(ctx, "search matcher unavailable, falling back",
			"matcher", s.primary.Name(), "fallback", s.fallback.Name(), "error", err)
		metrics.SearchFallbacks.WithLabelValues(s.primary.Name()).Inc()

		q.Matcher = s.fallback
		lecturers, err = s.store.SearchLecturers(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("search lecturers: %w", err)
	}
	return lecturers, nil
}

// Stats returns the public tallies.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

// All lists every lecturer with tallies for administrators.
func (s *Service) All(ctx context.Context, faculty models.Faculty) ([]models.LecturerSummary, error) {
	lecturers, err := s.store.ListLecturers(ctx, faculty)
	if err != nil {
		return nil, fmt.Errorf("list lecturers: %w", err)
	}
	return lecturers, nil
}

// Get returns one lecturer with tallies.
func (s *Service) Get(ctx context.Context, id int64) (*models.LecturerSummary, error) {
	return s.store.GetLecturerSummary(ctx, id)
}

// ToggleFavorite applies the favorite form convention: a current value of
// "no" marks the lecturer as favorite, anything else clears the flag.
func (s *Service) ToggleFavorite(ctx context.Context, id int64, current string) (*models.LecturerSummary, error) {
	if err := s.store.SetLecturerFavorite(ctx, id, current == "no"); err != nil {
		return nil, err
	}
	return s.store.GetLecturerSummary(ctx, id)
}
