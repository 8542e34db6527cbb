// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/rs/xid"
)

// DefaultTokenLifetime is how long a token is valid unless asked
// otherwise.
const DefaultTokenLifetime = 30 * 24 * time.Hour

// TokenClaims are the claims of a Slurm JWT token. Slurm reads the user
// name from the "sun" claim.
type TokenClaims struct {
	jwt.RegisteredClaims

	SlurmUsername string `json:"sun,omitempty"`
}

// Issuer issues and verifies HS256 signed Slurm tokens.
type Issuer struct {
	key   []byte
	name  string
	clock clock.Clock
}

// NewIssuer returns an Issuer signing with the given base64 encoded JWT
// key. A nil clock uses the wall clock.
func NewIssuer(name, key string, clk clock.Clock) (*Issuer, error) {
	raw, err := DecodeKey(key)
	if err != nil {
		return nil, errors.Annotate(err, "jwt key")
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &Issuer{key: raw, name: name, clock: clk}, nil
}

// Issue returns a signed token for the Slurm user, valid for lifetime.
func (i *Issuer) Issue(username string, lifetime time.Duration) (string, error) {
	if username == "" {
		return "", errors.NotValidf("empty username")
	}
	if lifetime <= 0 {
		return "", errors.NotValidf("token lifetime %v", lifetime)
	}
	now := i.clock.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.name,
			Subject:   username,
			ID:        xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		SlurmUsername: username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", errors.Annotate(err, "signing token")
	}
	return signed, nil
}

// Parse verifies the token and returns its claims.
func (i *Issuer) Parse(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithIssuer(i.name),
	)
	if err != nil {
		return nil, errors.NewUnauthorized(err, "invalid token")
	}
	if claims.SlurmUsername == "" {
		return nil, errors.Unauthorizedf("token without slurm user")
	}
	return claims, nil
}
