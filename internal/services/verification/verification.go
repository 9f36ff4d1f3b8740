// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package verification issues, redeems and renews the single-use tokens
// that confirm nominations.
//
// A nomination starts unverified with exactly one live verification. The
// emailed token either confirms it (the verification is deleted and the
// nomination marked verified) or expires, after which the submitter can
// renew: every unverified nomination of that email gets a fresh token and
// all links arrive in a single email.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/metrics"
	"codeberg.org/oliverandrich/teaching-award/internal/models"
	"codeberg.org/oliverandrich/teaching-award/internal/repository"
	"codeberg.org/oliverandrich/teaching-award/internal/services/email"
)

// DefaultValidity is how long a confirmation link stays valid.
const DefaultValidity = 48 * time.Hour

// ErrAlreadyVerified is returned when issuing a token for a verified nomination.
var ErrAlreadyVerified = errors.New("nomination already verified")

// Mailer delivers confirmation links.
type Mailer interface {
	SendConfirmation(ctx context.Context, to string, confirmations []email.Confirmation) error
}

// Status is the outcome of redeeming a token.
type Status int

const (
	StatusInvalid Status = iota
	StatusExpired
	StatusConfirmed
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// Result describes a redemption. Lecturer is set for confirmed tokens,
// Email and ExpiresAt for expired ones.
type Result struct {
	ExpiresAt time.Time
	Lecturer  string
	Email     string
	Status    Status
}

// Engine runs the token lifecycle against the repository.
type Engine struct {
	store    repository.Store
	mailer   Mailer
	now      func() time.Time
	validity time.Duration
}

// Option customises the Engine.
type Option func(*Engine)

// WithNow overrides the clock used for expiry decisions.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithValidity overrides how long issued tokens stay valid.
func WithValidity(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.validity = d
		}
	}
}

// NewEngine creates a verification engine.
func NewEngine(store repository.Store, mailer Mailer, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		mailer:   mailer,
		now:      time.Now,
		validity: DefaultValidity,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Issue replaces any verification of the nomination with a fresh one and
// emails the link. It returns the plaintext token.
func (e *Engine) Issue(ctx context.Context, nominationID int64) (string, error) {
	var (
		token    string
		to       string
		lecturer string
	)

	err := e.store.InTx(ctx, func(tx repository.Store) error {
		n, err := tx.GetNomination(ctx, nominationID)
		if err != nil {
			return fmt.Errorf("get nomination: %w", err)
		}
		if n.IsVerified {
			return ErrAlreadyVerified
		}
		l, err := tx.GetLecturer(ctx, n.LecturerID)
		if err != nil {
			return fmt.Errorf("get lecturer: %w", err)
		}

		token, err = e.replace(ctx, tx, n.ID)
		if err != nil {
			return err
		}
		to, lecturer = n.SubEmail, l.FullName()
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.TokensIssued.WithLabelValues("submit").Inc()

	if err := e.mailer.SendConfirmation(ctx, to, []email.Confirmation{{Lecturer: lecturer, Token: token}}); err != nil {
		return "", fmt.Errorf("send confirmation: %w", err)
	}
	return token, nil
}

// replace deletes the nomination's verification and inserts a new one.
func (e *Engine) replace(ctx context.Context, tx repository.Store, nominationID int64) (string, error) {
	token, hash, err := GenerateToken()
	if err != nil {
		return "", err
	}

	if err := tx.DeleteNominationVerification(ctx, nominationID); err != nil {
		return "", fmt.Errorf("delete verification: %w", err)
	}

	now := e.now().UTC()
	v := &models.Verification{
		NominationID: nominationID,
		TokenHash:    hash,
		CreatedAt:    now,
		ExpiresAt:    now.Add(e.validity),
	}
	if err := tx.CreateVerification(ctx, v); err != nil {
		return "", fmt.Errorf("create verification: %w", err)
	}
	return token, nil
}

// Redeem confirms the nomination behind token. Unknown and expired tokens
// are reported in the Result, not as errors; expired verifications stay
// in place so the submitter can be offered a renewal.
func (e *Engine) Redeem(ctx context.Context, token string) (Result, error) {
	var res Result

	err := e.store.InTx(ctx, func(tx repository.Store) error {
		res = Result{Status: StatusInvalid}

		v, err := tx.GetVerificationByTokenHash(ctx, HashToken(token))
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get verification: %w", err)
		}

		n, err := tx.GetNomination(ctx, v.NominationID)
		if err != nil {
			return fmt.Errorf("get nomination: %w", err)
		}

		if v.IsExpired(e.now()) {
			res = Result{Status: StatusExpired, Email: n.SubEmail, ExpiresAt: v.ExpiresAt}
			return nil
		}

		deleted, err := tx.DeleteVerification(ctx, v.ID)
		if err != nil {
			return fmt.Errorf("delete verification: %w", err)
		}
		if deleted != 1 {
			// redeemed concurrently
			return nil
		}

		if err := tx.MarkNominationVerified(ctx, n.ID); err != nil {
			return fmt.Errorf("mark verified: %w", err)
		}

		l, err := tx.GetLecturer(ctx, n.LecturerID)
		if err != nil {
			return fmt.Errorf("get lecturer: %w", err)
		}
		res = Result{Status: StatusConfirmed, Lecturer: l.FullName()}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	metrics.Redemptions.WithLabelValues(res.Status.String()).Inc()
	return res, nil
}

// Renew issues fresh tokens for every unverified nomination of addr and
// sends them in one email. It returns how many nominations were renewed;
// zero sends nothing.
func (e *Engine) Renew(ctx context.Context, addr string) (int, error) {
	addr = NormalizeEmail(addr)
	var confirmations []email.Confirmation

	err := e.store.InTx(ctx, func(tx repository.Store) error {
		confirmations = nil

		nominations, err := tx.ListUnverifiedNominations(ctx, addr)
		if err != nil {
			return fmt.Errorf("list nominations: %w", err)
		}

		for i := range nominations {
			token, err := e.replace(ctx, tx, nominations[i].ID)
			if err != nil {
				return err
			}
			confirmations = append(confirmations, email.Confirmation{
				Lecturer: nominations[i].LecturerName(),
				Token:    token,
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(confirmations) == 0 {
		return 0, nil
	}

	metrics.TokensIssued.WithLabelValues("renew").Add(float64(len(confirmations)))

	if err := e.mailer.SendConfirmation(ctx, addr, confirmations); err != nil {
		return 0, fmt.Errorf("send confirmation: %w", err)
	}
	return len(confirmations), nil
}

// PurgeExpired deletes verifications that expired more than grace ago.
func (e *Engine) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	cutoff := e.now().Add(-grace)
	n, err := e.store.DeleteVerificationsExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge verifications: %w", err)
	}
	metrics.TokensPurged.Add(float64(n))
	return n, nil
}
