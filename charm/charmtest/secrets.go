// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmtest

import (
	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/core/secrets"
)

// SecretStore is an in-memory charm.SecretStore.
type SecretStore struct {
	model   *Model
	byID    map[string]*Secret
	byLabel map[string]*Secret
}

// AddSecret is part of the charm.SecretStore interface.
func (s *SecretStore) AddSecret(label string, content map[string]string) (charm.Secret, error) {
	s.model.AddCall("AddSecret", label)
	if err := s.model.NextErr(); err != nil {
		return nil, err
	}
	if !s.model.unit.leader {
		return nil, errors.Forbiddenf("%s creating application secret", s.model.unit.name)
	}
	if _, ok := s.byLabel[label]; ok && label != "" {
		return nil, errors.AlreadyExistsf("secret with label %q", label)
	}
	if len(content) == 0 {
		return nil, errors.NotValidf("empty secret content")
	}
	secret := &Secret{
		store:     s,
		id:        secrets.NewID(),
		label:     label,
		revisions: []map[string]string{copyContent(content)},
		grants:    set.NewStrings(),
	}
	s.byID[secret.id] = secret
	if label != "" {
		s.byLabel[label] = secret
	}
	return secret, nil
}

// SecretByLabel is part of the charm.SecretStore interface.
func (s *SecretStore) SecretByLabel(label string) (charm.Secret, error) {
	secret, ok := s.byLabel[label]
	if !ok {
		return nil, errors.NotFoundf("secret with label %q", label)
	}
	return secret, nil
}

// SecretByID is part of the charm.SecretStore interface.
func (s *SecretStore) SecretByID(id string) (charm.Secret, error) {
	secret, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFoundf("secret %q", id)
	}
	return secret, nil
}

// Lookup returns the secret with the given label with its test helpers,
// or nil.
func (s *SecretStore) Lookup(label string) *Secret {
	return s.byLabel[label]
}

// Len returns the number of secrets in the store.
func (s *SecretStore) Len() int {
	return len(s.byID)
}

// Secret is an in-memory charm.Secret.
type Secret struct {
	store     *SecretStore
	id        string
	label     string
	revisions []map[string]string
	grants    set.Strings
}

// ID is part of the charm.Secret interface.
func (s *Secret) ID() string {
	return s.id
}

// Label is part of the charm.Secret interface.
func (s *Secret) Label() string {
	return s.label
}

// Content is part of the charm.Secret interface.
func (s *Secret) Content() (map[string]string, error) {
	if err := s.checkExists(); err != nil {
		return nil, errors.Trace(err)
	}
	return copyContent(s.revisions[len(s.revisions)-1]), nil
}

// SetContent is part of the charm.Secret interface.
func (s *Secret) SetContent(content map[string]string) error {
	s.store.model.AddCall("SetContent", s.label)
	if err := s.checkExists(); err != nil {
		return errors.Trace(err)
	}
	if len(content) == 0 {
		return errors.NotValidf("empty secret content")
	}
	s.revisions = append(s.revisions, copyContent(content))
	return nil
}

// Grant is part of the charm.Secret interface.
func (s *Secret) Grant(rel charm.Relation) error {
	s.store.model.AddCall("Grant", s.label, rel.Id())
	if err := s.checkExists(); err != nil {
		return errors.Trace(err)
	}
	s.grants.Add(rel.RemoteApp())
	return nil
}

// RemoveAllRevisions is part of the charm.Secret interface.
func (s *Secret) RemoveAllRevisions() error {
	s.store.model.AddCall("RemoveAllRevisions", s.label)
	if err := s.checkExists(); err != nil {
		return errors.Trace(err)
	}
	delete(s.store.byID, s.id)
	if s.label != "" {
		delete(s.store.byLabel, s.label)
	}
	s.revisions = nil
	return nil
}

// Revisions returns the number of revisions of the secret.
func (s *Secret) Revisions() int {
	return len(s.revisions)
}

// GrantedTo returns whether the application was granted access.
func (s *Secret) GrantedTo(app string) bool {
	return s.grants.Contains(app)
}

func (s *Secret) checkExists() error {
	if _, ok := s.store.byID[s.id]; !ok {
		return errors.NotFoundf("secret %q", s.id)
	}
	return nil
}

func copyContent(content map[string]string) map[string]string {
	out := make(map[string]string, len(content))
	for k, v := range content {
		out[k] = v
	}
	return out
}
