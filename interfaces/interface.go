// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package interfaces provides the building blocks of integration
// interfaces between charms: access to the integrations established on an
// endpoint, readiness evaluation, databag encoding and secret handling.
package interfaces

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/kr/pretty"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/hook"
)

var logger = loggo.GetLogger("hpc.interfaces")

// Interface is the base of an integration interface implementation bound
// to one endpoint of the charm.
type Interface struct {
	fw       *charm.Framework
	endpoint string
	schema   ReadinessSchema
}

// New returns an Interface for the endpoint. An integration is ready once
// the remote application databag satisfies schema.
func New(fw *charm.Framework, endpoint string, schema ReadinessSchema) *Interface {
	if meta := fw.Meta(); meta != nil {
		if _, ok := meta.Endpoint(endpoint); !ok {
			logger.Warningf("endpoint %q is not declared in the metadata of %q", endpoint, meta.Name)
		}
	}
	return &Interface{
		fw:       fw,
		endpoint: endpoint,
		schema:   schema,
	}
}

// Endpoint returns the name of the endpoint the interface is bound to.
func (i *Interface) Endpoint() string {
	return i.endpoint
}

// Framework returns the framework events are observed on.
func (i *Interface) Framework() *charm.Framework {
	return i.fw
}

// Model returns the model the charm runs in.
func (i *Interface) Model() charm.Model {
	return i.fw.Model()
}

// Schema returns the readiness schema of the interface.
func (i *Interface) Schema() ReadinessSchema {
	return i.schema
}

// EventKind returns the observer key of the named event on the endpoint.
func (i *Interface) EventKind(name string) string {
	return charm.EventKind(i.endpoint, name)
}

// Observe registers handler for a relation hook on the endpoint.
func (i *Interface) Observe(kind hook.Kind, handler charm.Handler) {
	i.fw.Observe(i.EventKind(string(kind)), handler)
}

// On registers handler for the named event derived on the endpoint.
func (i *Interface) On(name string, handler charm.Handler) {
	i.fw.Observe(i.EventKind(name), handler)
}

// Emit emits the named event carrying the relation context of cause.
func (i *Interface) Emit(ctx context.Context, cause *charm.Event, name string) error {
	return errors.Trace(i.fw.Emit(ctx, cause.Derive(name)))
}

// IsLeader returns whether the local unit is the application leader.
func (i *Interface) IsLeader() (bool, error) {
	leader, err := i.Model().Unit().IsLeader()
	return leader, errors.Annotate(err, "checking leadership")
}

// IsDeparting returns whether the event reports the local unit leaving
// the relation.
func (i *Interface) IsDeparting(e *charm.Event) bool {
	return e.DepartingUnit != "" && e.DepartingUnit == i.Model().Unit().Name()
}

// Integrations returns the integrations established on the endpoint whose
// data can currently be accessed. Integrations being torn down are left
// out.
func (i *Interface) Integrations() ([]charm.Relation, error) {
	rels, err := i.Model().Relations(i.endpoint)
	if err != nil {
		return nil, errors.Annotatef(err, "getting %q integrations", i.endpoint)
	}
	active := make([]charm.Relation, 0, len(rels))
	for _, rel := range rels {
		if _, err := rel.LocalAppData(); errors.Is(err, charm.ErrRelationDataUnavailable) {
			logger.Debugf("integration %s:%d is not active", i.endpoint, rel.Id())
			continue
		} else if err != nil {
			return nil, errors.Annotatef(err, "reading integration %s:%d", i.endpoint, rel.Id())
		}
		active = append(active, rel)
	}
	return active, nil
}

// IsJoined returns whether any integration is established on the
// endpoint. It does not check whether the integration carries data.
func (i *Interface) IsJoined() (bool, error) {
	rels, err := i.Model().Relations(i.endpoint)
	if err != nil {
		return false, errors.Annotatef(err, "getting %q integrations", i.endpoint)
	}
	return len(rels) > 0, nil
}

// Integration returns the integration with the given id, or an error
// satisfying IntegrationNotFound.
func (i *Interface) Integration(id int) (charm.Relation, error) {
	rel, err := charm.RelationByID(i.Model(), i.endpoint, id)
	if errors.Is(err, errors.NotFound) {
		return nil, errors.Annotatef(IntegrationNotFound, "%s:%d", i.endpoint, id)
	}
	return rel, errors.Trace(err)
}

// SoleIntegration returns the integration established on the endpoint. It
// fails with IntegrationNotFound if there is none, and with
// AmbiguousIntegration if there are several.
func (i *Interface) SoleIntegration() (charm.Relation, error) {
	rels, err := i.Model().Relations(i.endpoint)
	if err != nil {
		return nil, errors.Annotatef(err, "getting %q integrations", i.endpoint)
	}
	switch len(rels) {
	case 0:
		return nil, errors.Annotatef(IntegrationNotFound, "endpoint %q", i.endpoint)
	case 1:
		return rels[0], nil
	}
	return nil, errors.Annotatef(AmbiguousIntegration, "%d integrations on endpoint %q", len(rels), i.endpoint)
}

// IsReady returns true if there is at least one integration and every
// integration is ready.
func (i *Interface) IsReady() (bool, error) {
	rels, err := i.Integrations()
	if err != nil {
		return false, errors.Trace(err)
	}
	if len(rels) == 0 {
		return false, nil
	}
	for _, rel := range rels {
		if !i.Ready(rel) {
			return false, nil
		}
	}
	return true, nil
}

// IsIntegrationReady returns whether the integration with the given id is
// ready.
func (i *Interface) IsIntegrationReady(id int) (bool, error) {
	rel, err := i.Integration(id)
	if err != nil {
		return false, errors.Trace(err)
	}
	return i.Ready(rel), nil
}

// Ready returns whether the remote application databag of rel satisfies
// the readiness schema.
func (i *Interface) Ready(rel charm.Relation) bool {
	if rel.RemoteApp() == "" {
		return false
	}
	data, err := rel.RemoteAppData()
	if err != nil {
		logger.Debugf("reading integration %s:%d: %v", i.endpoint, rel.Id(), err)
		return false
	}
	missing, ok := i.schema.Missing(data)
	if !ok {
		logger.Tracef("integration %s:%d is missing %v", i.endpoint, rel.Id(), missing)
	}
	return ok
}

// NotReady returns a condition holding while the interface is not ready.
// For an event about an integration on the endpoint only that integration
// is checked; otherwise every integration is.
func (i *Interface) NotReady(message string) charm.Condition {
	return func(e *charm.Event) (bool, string) {
		if e != nil && e.Relation != nil && e.Relation.Endpoint() == i.endpoint {
			if i.Ready(e.Relation) {
				return false, ""
			}
			return true, message
		}
		ready, err := i.IsReady()
		if err != nil {
			logger.Warningf("checking readiness of %q: %v", i.endpoint, err)
			return true, message
		}
		if ready {
			return false, ""
		}
		return true, message
	}
}

// SaveIntegrationData encodes data into the local application databag of
// the integrations with the given ids, or of every active integration
// when no id is given. It does nothing on a unit that is not the leader.
func (i *Interface) SaveIntegrationData(data interface{}, ids ...int) error {
	leader, err := i.IsLeader()
	if err != nil {
		return errors.Trace(err)
	}
	if !leader {
		logger.Debugf("%s is not leader, not saving %q data", i.Model().Unit().Name(), i.endpoint)
		return nil
	}
	encoded, err := Encode(data)
	if err != nil {
		return errors.Trace(err)
	}
	rels, err := i.Targets(ids...)
	if err != nil {
		return errors.Trace(err)
	}
	for _, rel := range rels {
		if err := rel.UpdateLocalAppData(encoded); err != nil {
			return errors.Annotatef(err, "saving data on integration %s:%d", i.endpoint, rel.Id())
		}
	}
	return nil
}

// Targets returns the integrations with the given ids, or every active
// integration when no id is given.
func (i *Interface) Targets(ids ...int) ([]charm.Relation, error) {
	if len(ids) == 0 {
		return i.Integrations()
	}
	rels := make([]charm.Relation, 0, len(ids))
	for _, id := range ids {
		rel, err := i.Integration(id)
		if err != nil {
			return nil, errors.Trace(err)
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// LoadIntegrationData decodes the remote application databag of rel into
// out.
func (i *Interface) LoadIntegrationData(rel charm.Relation, out interface{}) error {
	data, err := rel.RemoteAppData()
	if err != nil {
		return errors.Annotatef(err, "reading integration %s:%d", i.endpoint, rel.Id())
	}
	if err := Decode(data, out); err != nil {
		return errors.Annotatef(err, "loading integration %s:%d", i.endpoint, rel.Id())
	}
	if logger.IsTraceEnabled() {
		logger.Tracef("loaded %s:%d data: %# v", i.endpoint, rel.Id(), pretty.Formatter(out))
	}
	return nil
}

// Resolve returns the integration to read from: rel if given, otherwise
// the integration with the given id, otherwise the only integration.
func (i *Interface) Resolve(rel charm.Relation, ids ...int) (charm.Relation, error) {
	if rel != nil {
		return rel, nil
	}
	if len(ids) > 0 {
		return i.Integration(ids[0])
	}
	return i.SoleIntegration()
}
