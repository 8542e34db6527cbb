// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package auth generates the keys slurmctld shares with the Slurm services
// it is integrated with, and issues the JWT tokens slurmrestd and slurmdbd
// clients authenticate with.
package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/juju/errors"
)

const (
	// AuthKeyLength is the size in bytes of an auth/slurm key.
	AuthKeyLength = 1024

	// JWTKeyLength is the size in bytes of a JWT signing key.
	JWTKeyLength = 32
)

// NewAuthKey returns a new base64 encoded auth/slurm key.
func NewAuthKey() (string, error) {
	key, err := randomKey(AuthKeyLength)
	return key, errors.Annotate(err, "generating auth key")
}

// NewJWTKey returns a new base64 encoded JWT signing key.
func NewJWTKey() (string, error) {
	key, err := randomKey(JWTKeyLength)
	return key, errors.Annotate(err, "generating jwt key")
}

func randomKey(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Trace(err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// DecodeKey returns the raw bytes of a key returned by NewAuthKey or
// NewJWTKey.
func DecodeKey(key string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, errors.NewNotValid(err, "key is not base64 encoded")
	}
	if len(raw) == 0 {
		return nil, errors.NotValidf("empty key")
	}
	return raw, nil
}
