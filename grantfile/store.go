// Package grantfile loads role grants from configuration and JSON files.
package grantfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/folio"
)

// GrantsConfig holds configuration for bootstrapping role grants.
type GrantsConfig struct {
	Inline []Grant `mapstructure:"inline"` // Inline grants from config
	File   string  `mapstructure:"file"`   // Path to JSON file containing grants
}

// Load merges inline and file grants, dropping duplicates and blank entries.
// Inline grants come first.
func Load(cfg GrantsConfig) ([]Grant, error) {
	seen := make(map[Grant]struct{})
	var grants []Grant

	add := func(g Grant) {
		if !g.valid() {
			return
		}
		if _, dup := seen[g]; dup {
			return
		}
		seen[g] = struct{}{}
		grants = append(grants, g)
	}

	for _, g := range cfg.Inline {
		add(g)
	}

	if cfg.File != "" {
		fileGrants, err := LoadGrantsFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for _, g := range fileGrants {
			add(g)
		}
	}

	return grants, nil
}

// Seed writes every configured grant into repo and returns the grants written.
// Existing grants are left as they are.
func Seed(ctx context.Context, repo folio.GrantRepo, cfg GrantsConfig) ([]Grant, error) {
	grants, err := Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("seed grants: %w", err)
	}

	for i, g := range grants {
		if err := repo.Grant(ctx, g.Identity, g.Role); err != nil {
			return grants[:i], fmt.Errorf("seed grant %s/%s: %w", g.Identity, g.Role, err)
		}
		slog.Debug("role grant seeded", "identity", g.Identity, "role", g.Role)
	}

	return grants, nil
}
