// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package share manages share links for computed reports. A share is a
// stored grant (scope, year, anonymize mode, expiry) addressed by a signed
// token; resolving a token re-checks the stored record so shares can be
// revoked after the link is out.
package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/rewound/internal/metrics"
	"github.com/tomtom215/rewound/internal/models"
	"github.com/tomtom215/rewound/internal/stats"
)

// Service errors.
var (
	// ErrShareNotFound is returned when no share exists for an ID.
	ErrShareNotFound = errors.New("share not found")

	// ErrShareRevoked is returned for shares revoked after creation.
	ErrShareRevoked = errors.New("share revoked")

	// ErrShareExpired is returned for shares past their expiry.
	ErrShareExpired = errors.New("share expired")

	// ErrTTLTooLong is returned when a requested lifetime exceeds the
	// configured maximum.
	ErrTTLTooLong = errors.New("share ttl exceeds maximum")

	// ErrInvalidScope is returned for scopes outside user/server or a
	// user scope without an account ID.
	ErrInvalidScope = errors.New("invalid share scope")
)

// Store persists share records. Implemented by the DuckDB layer.
type Store interface {
	InsertShare(ctx context.Context, share *models.Share) error
	GetShareByID(ctx context.Context, id string) (*models.Share, error)
	RevokeShare(ctx context.Context, id string) (bool, error)
	DeleteExpiredShares(ctx context.Context, before time.Time) (int64, error)
}

// Config holds share lifetime bounds.
type Config struct {
	DefaultTTL time.Duration // Applied when a create request omits a TTL
	MaxTTL     time.Duration
}

// DefaultConfig returns the share lifetime defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 30 * 24 * time.Hour,
		MaxTTL:     365 * 24 * time.Hour,
	}
}

// CreateParams describes a share to create.
type CreateParams struct {
	Scope   models.StatsScope
	ScopeID int // account ID for user scope, ignored for server scope
	Year    int
	Mode    models.AnonymizeMode
	TTL     time.Duration // 0 means Config.DefaultTTL
}

// Service creates, resolves, and revokes shares.
type Service struct {
	store  Store
	issuer *TokenIssuer
	cfg    Config

	now func() time.Time
}

// NewService creates a share service.
func NewService(store Store, issuer *TokenIssuer, cfg Config) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	if cfg.MaxTTL < cfg.DefaultTTL {
		cfg.MaxTTL = DefaultConfig().MaxTTL
	}

	return &Service{
		store:  store,
		issuer: issuer,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Create validates the params, stores a share record, and returns it with
// its signed token.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Share, string, error) {
	switch p.Scope {
	case models.ScopeServer:
		p.ScopeID = 0
	case models.ScopeUser:
		if p.ScopeID <= 0 {
			return nil, "", fmt.Errorf("%w: user scope needs an account id", ErrInvalidScope)
		}
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidScope, p.Scope)
	}

	// Same year window as report computation.
	if _, err := stats.NewYearFilter(p.Year); err != nil {
		return nil, "", err
	}

	if !p.Mode.Valid() {
		return nil, "", fmt.Errorf("invalid anonymize mode %q", p.Mode)
	}

	ttl := p.TTL
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	if ttl > s.cfg.MaxTTL {
		return nil, "", fmt.Errorf("%w: %s > %s", ErrTTLTooLong, ttl, s.cfg.MaxTTL)
	}

	now := s.now().UTC()
	sh := &models.Share{
		ID:        uuid.NewString(),
		Scope:     p.Scope,
		ScopeID:   p.ScopeID,
		Year:      p.Year,
		Mode:      p.Mode,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.store.InsertShare(ctx, sh); err != nil {
		return nil, "", fmt.Errorf("failed to store share: %w", err)
	}

	token, err := s.issuer.Issue(sh.ID, sh.ExpiresAt)
	if err != nil {
		return nil, "", err
	}

	metrics.RecordShareCreated()
	return sh, token, nil
}

// Resolve verifies a token and loads its share, rejecting revoked and
// expired grants. Every outcome is counted in the share access metrics.
func (s *Service) Resolve(ctx context.Context, token string) (*models.Share, error) {
	shareID, err := s.issuer.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			metrics.RecordShareAccess("expired")
			return nil, ErrShareExpired
		}
		metrics.RecordShareAccess("invalid")
		return nil, err
	}

	sh, err := s.store.GetShareByID(ctx, shareID)
	if err != nil {
		metrics.RecordShareAccess("invalid")
		return nil, fmt.Errorf("failed to load share %s: %w", shareID, err)
	}
	if sh == nil {
		metrics.RecordShareAccess("invalid")
		return nil, ErrShareNotFound
	}

	if sh.Revoked {
		metrics.RecordShareAccess("revoked")
		return nil, ErrShareRevoked
	}
	if sh.Expired(s.now()) {
		metrics.RecordShareAccess("expired")
		return nil, ErrShareExpired
	}

	metrics.RecordShareAccess("ok")
	return sh, nil
}

// Revoke marks a share revoked. Resolving its token fails afterwards.
func (s *Service) Revoke(ctx context.Context, id string) error {
	found, err := s.store.RevokeShare(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to revoke share %s: %w", id, err)
	}
	if !found {
		return ErrShareNotFound
	}
	return nil
}

// PurgeExpired deletes shares whose expiry has passed, returning the count
// removed. Meant for a periodic housekeeping pass.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.store.DeleteExpiredShares(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired shares: %w", err)
	}
	return removed, nil
}
