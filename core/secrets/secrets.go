// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package secrets

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/rs/xid"
)

// Kind identifies which key a secret shared over an integration holds.
type Kind string

const (
	// AuthKind is the Slurm authentication key (auth/slurm).
	AuthKind Kind = "auth"

	// JWTKind is the key used to sign and verify JWT tokens.
	JWTKind Kind = "jwt"
)

// Validate returns an error if the kind is not known.
func (k Kind) Validate() error {
	switch k {
	case AuthKind, JWTKind:
		return nil
	}
	return errors.NotValidf("secret kind %q", string(k))
}

const (
	// Redacted replaces a secret value in a databag once the value has
	// been moved into a secret.
	Redacted = "***"

	// ContentKey is the single key of the content of an integration secret.
	ContentKey = "key"

	// IDSuffix is appended to a databag field name to form the name of the
	// field holding the id of the secret that stores the field's value.
	IDSuffix = "_id"
)

// IntegrationLabel returns the label of the secret of the given kind shared
// over the integration with the given id.
func IntegrationLabel(integrationID int, kind Kind) string {
	return fmt.Sprintf("integration-%d-%s-key-secret", integrationID, kind)
}

// ParseIntegrationLabel is the inverse of IntegrationLabel.
func ParseIntegrationLabel(label string) (int, Kind, error) {
	var (
		id   int
		rest string
	)
	if _, err := fmt.Sscanf(label, "integration-%d-%s", &id, &rest); err != nil {
		return 0, "", errors.NotValidf("integration secret label %q", label)
	}
	kind, ok := strings.CutSuffix(rest, "-key-secret")
	if !ok {
		return 0, "", errors.NotValidf("integration secret label %q", label)
	}
	if err := Kind(kind).Validate(); err != nil {
		return 0, "", errors.Annotatef(err, "label %q", label)
	}
	return id, Kind(kind), nil
}

// IDField returns the databag field holding the secret id for field.
func IDField(field string) string {
	return field + IDSuffix
}

// NewContent returns the content of a secret holding value.
func NewContent(value string) map[string]string {
	return map[string]string{ContentKey: value}
}

// NewID returns a new unique secret id.
func NewID() string {
	return "secret:" + xid.New().String()
}

// IsRedacted reports whether a databag value is the redaction sentinel.
func IsRedacted(value string) bool {
	return value == Redacted
}
