// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package share

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is the iss claim on every share token.
const tokenIssuer = "rewound"

// Token errors.
var (
	// ErrEmptySecret is returned when no signing secret is configured.
	ErrEmptySecret = errors.New("share token secret cannot be empty")

	// ErrTokenExpired is returned for tokens past their exp claim.
	ErrTokenExpired = errors.New("share token expired")

	// ErrTokenInvalid is returned for malformed, tampered, or otherwise
	// unverifiable tokens.
	ErrTokenInvalid = errors.New("share token invalid")
)

// shareClaims carries the share reference inside a signed token.
type shareClaims struct {
	ShareID string `json:"share_id"`
	jwt.RegisteredClaims
}

// TokenIssuer creates and verifies the signed tokens embedded in share URLs.
// Tokens are HMAC-SHA256 signed and reference a stored Share by ID; expiry
// and revocation state live on the stored record, with the token exp claim
// as a second, offline-checkable bound.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer with the given signing secret.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &TokenIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue signs a token for the given share, expiring alongside it.
func (t *TokenIssuer) Issue(shareID string, expiresAt time.Time) (string, error) {
	claims := &shareClaims{
		ShareID: shareID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(t.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign share token: %w", err)
	}

	return signedToken, nil
}

// Verify checks a token's signature, issuer, and expiry, returning the
// share ID it references. Expired tokens return ErrTokenExpired; every
// other failure returns ErrTokenInvalid.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &shareClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*shareClaims)
	if !ok || !token.Valid || claims.ShareID == "" {
		return "", ErrTokenInvalid
	}

	return claims.ShareID, nil
}
