// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
)

// SetEmailDomains replaces the institutional domains the store accepts
// for nomination emails.
func (r *Repository) SetEmailDomains(ctx context.Context, domains []string) error {
	return r.inTx(ctx, func(tx *Repository) error {
		if _, err := tx.exec(ctx, `DELETE FROM email_domains`); err != nil {
			return err
		}
		for _, d := range domains {
			if _, err := tx.exec(ctx, `INSERT INTO email_domains (domain) VALUES (?)`, strings.ToLower(d)); err != nil {
				return err
			}
		}
		return nil
	})
}
