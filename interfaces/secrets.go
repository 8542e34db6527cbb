// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package interfaces

import (
	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/core/secrets"
)

// UpdateSecret sets the content of the application secret with the given
// label, creating the secret if it does not exist yet.
func UpdateSecret(model charm.Model, label string, content map[string]string) (charm.Secret, error) {
	store := model.Secrets()
	secret, err := store.SecretByLabel(label)
	if errors.Is(err, errors.NotFound) {
		logger.Debugf("creating secret %q", label)
		secret, err = store.AddSecret(label, content)
		return secret, errors.Annotatef(err, "creating secret %q", label)
	} else if err != nil {
		return nil, errors.Annotatef(err, "getting secret %q", label)
	}
	logger.Debugf("updating secret %q", label)
	if err := secret.SetContent(content); err != nil {
		return nil, errors.Annotatef(err, "updating secret %q", label)
	}
	return secret, nil
}

// LoadSecret returns the application secret with the given label. The
// boolean is false if no such secret exists.
func LoadSecret(model charm.Model, label string) (charm.Secret, bool, error) {
	secret, err := model.Secrets().SecretByLabel(label)
	if errors.Is(err, errors.NotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Annotatef(err, "getting secret %q", label)
	}
	return secret, true, nil
}

// RevokeSecrets removes every revision of the secrets of the given kinds
// backing the integration with the given id. Missing secrets are skipped.
func RevokeSecrets(model charm.Model, id int, kinds ...secrets.Kind) error {
	for _, kind := range kinds {
		label := secrets.IntegrationLabel(id, kind)
		secret, found, err := LoadSecret(model, label)
		if err != nil {
			return errors.Trace(err)
		}
		if !found {
			logger.Tracef("no secret %q to remove", label)
			continue
		}
		logger.Debugf("removing secret %q", label)
		if err := secret.RemoveAllRevisions(); err != nil {
			return errors.Annotatef(err, "removing secret %q", label)
		}
	}
	return nil
}

// SecretValue returns the value held by the secret with the given id.
func SecretValue(model charm.Model, id string) (string, error) {
	secret, err := model.Secrets().SecretByID(id)
	if err != nil {
		return "", errors.Annotatef(err, "getting secret %q", id)
	}
	content, err := secret.Content()
	if err != nil {
		return "", errors.Annotatef(err, "reading secret %q", id)
	}
	value, ok := content[secrets.ContentKey]
	if !ok {
		return "", errors.NotValidf("secret %q without %q", id, secrets.ContentKey)
	}
	return value, nil
}
