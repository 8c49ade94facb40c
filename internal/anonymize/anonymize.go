// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

// Package anonymize replaces viewer usernames on shared reports with
// deterministic pseudonyms. Pseudonyms derive from a keyed BLAKE2b hash of
// the account ID, so the same viewer gets the same alias on every report
// from one server while different servers produce unrelated aliases.
package anonymize

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/tomtom215/rewound/internal/models"
)

// pseudonymSaltContext binds derived keys to this use case so the server
// salt can never collide with other key derivations.
const pseudonymSaltContext = "rewound-viewer-pseudonyms-v1:"

// Anonymization errors.
var (
	// ErrEmptySalt is returned when no server salt is configured.
	ErrEmptySalt = errors.New("anonymize salt cannot be empty")

	// ErrInvalidMode is returned for modes outside the closed set.
	ErrInvalidMode = errors.New("invalid anonymize mode")
)

// Pseudonym word lists. Combined with the two-digit suffix they give
// 48k distinct aliases, plenty for one server's viewer population.
var adjectives = []string{
	"Mellow", "Brisk", "Quiet", "Vivid", "Drowsy", "Plucky", "Solemn",
	"Breezy", "Rustic", "Nimble", "Dapper", "Mythic", "Cosmic", "Gentle",
	"Restless", "Golden", "Velvet", "Wandering", "Patient", "Curious",
	"Midnight", "Amber", "Frosty", "Lively",
}

var animals = []string{
	"Walrus", "Heron", "Lynx", "Otter", "Badger", "Falcon", "Marmot",
	"Puffin", "Gecko", "Ibis", "Stoat", "Tapir", "Osprey", "Beaver",
	"Raven", "Dormouse", "Pangolin", "Kestrel", "Narwhal", "Wombat",
}

// ParseMode validates a mode string against the closed set.
func ParseMode(s string) (models.AnonymizeMode, error) {
	mode := models.AnonymizeMode(s)
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return mode, nil
}

// Anonymizer applies one configured mode to viewer leaderboards.
type Anonymizer struct {
	mode models.AnonymizeMode
	key  [blake2b.Size256]byte
}

// New creates an anonymizer for the given mode, deriving its hash key from
// the server salt.
func New(mode models.AnonymizeMode, salt string) (*Anonymizer, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if salt == "" {
		return nil, ErrEmptySalt
	}

	return &Anonymizer{
		mode: mode,
		key:  blake2b.Sum256([]byte(pseudonymSaltContext + salt)),
	}, nil
}

// Mode returns the configured mode.
func (a *Anonymizer) Mode() models.AnonymizeMode {
	return a.mode
}

// Apply transforms usernames according to the configured mode. Only the
// Username field changes; ranks, IDs, and totals pass through, and the
// input slice is never mutated.
func (a *Anonymizer) Apply(viewers []models.TopViewer, viewingUserID int) []models.TopViewer {
	return a.ApplyMode(viewers, a.mode, viewingUserID)
}

// ApplyMode is Apply with an explicit mode, used when a share record
// carries its own stored mode.
func (a *Anonymizer) ApplyMode(viewers []models.TopViewer, mode models.AnonymizeMode, viewingUserID int) []models.TopViewer {
	out := make([]models.TopViewer, len(viewers))
	copy(out, viewers)

	if mode == models.AnonymizeNone {
		return out
	}

	for i := range out {
		if mode == models.AnonymizeOthers && out[i].UserID == viewingUserID {
			continue
		}
		out[i].Username = a.Pseudonym(out[i].UserID)
	}
	return out
}

// Pseudonym returns the stable alias for one account ID.
func (a *Anonymizer) Pseudonym(userID int) string {
	h, err := blake2b.New256(a.key[:])
	if err != nil {
		// Only reachable with an oversized key, which the fixed-size
		// derivation rules out.
		panic(fmt.Sprintf("blake2b init: %v", err))
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(userID))
	h.Write(buf[:])
	sum := h.Sum(nil)

	adjective := adjectives[binary.BigEndian.Uint32(sum[0:4])%uint32(len(adjectives))]
	animal := animals[binary.BigEndian.Uint32(sum[4:8])%uint32(len(animals))]
	suffix := binary.BigEndian.Uint16(sum[8:10]) % 100

	return fmt.Sprintf("%s %s %02d", adjective, animal, suffix)
}
