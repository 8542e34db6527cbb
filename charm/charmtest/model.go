// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charmtest provides an in-memory host runtime for testing charms
// and integration libraries.
package charmtest

import (
	"sort"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"github.com/juju/testing"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/core/status"
)

// Epoch is the time the clock of a new Model starts at.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Model is an in-memory charm.Model. Calls that change state are recorded
// on the embedded Stub, which can also be used to inject errors.
type Model struct {
	*testing.Stub

	Clock *testclock.Clock

	name      string
	unit      *Unit
	relations map[string][]*Relation
	lastID    int
	secrets   *SecretStore
	networks  map[string]charm.NetworkInfo
	config    map[string]interface{}
}

var _ charm.Model = (*Model)(nil)

// NewModel returns a model holding a single local unit with the given
// name, eg. "slurmctld/0".
func NewModel(unitName string) (*Model, error) {
	if !names.IsValidUnit(unitName) {
		return nil, errors.NotValidf("unit name %q", unitName)
	}
	stub := &testing.Stub{}
	clk := testclock.NewClock(Epoch)
	m := &Model{
		Stub:      stub,
		Clock:     clk,
		name:      "hpc",
		relations: make(map[string][]*Relation),
		networks:  make(map[string]charm.NetworkInfo),
		config:    make(map[string]interface{}),
	}
	m.unit = &Unit{
		model:  m,
		name:   unitName,
		status: status.StatusInfo{Status: status.Unknown},
	}
	m.secrets = &SecretStore{
		model:   m,
		byID:    make(map[string]*Secret),
		byLabel: make(map[string]*Secret),
	}
	return m, nil
}

// Name is part of the charm.Model interface.
func (m *Model) Name() string {
	return m.name
}

// AppName is part of the charm.Model interface.
func (m *Model) AppName() string {
	app, _ := names.UnitApplication(m.unit.name)
	return app
}

// Unit is part of the charm.Model interface.
func (m *Model) Unit() charm.Unit {
	return m.unit
}

// LocalUnit returns the local unit with its test helpers.
func (m *Model) LocalUnit() *Unit {
	return m.unit
}

// SetLeader sets whether the local unit is the leader.
func (m *Model) SetLeader(leader bool) {
	m.unit.leader = leader
}

// Relations is part of the charm.Model interface.
func (m *Model) Relations(endpoint string) ([]charm.Relation, error) {
	m.AddCall("Relations", endpoint)
	if err := m.NextErr(); err != nil {
		return nil, err
	}
	var result []charm.Relation
	for _, rel := range m.relations[endpoint] {
		result = append(result, rel)
	}
	return result, nil
}

// AddRelation establishes a relation on the endpoint with the remote
// application, with the given remote units.
func (m *Model) AddRelation(endpoint, remoteApp string, units ...string) *Relation {
	m.lastID++
	rel := &Relation{
		model:     m,
		id:        m.lastID,
		endpoint:  endpoint,
		remoteApp: remoteApp,
		units:     units,
		local:     make(charm.Databag),
		remote:    make(charm.Databag),
	}
	m.relations[endpoint] = append(m.relations[endpoint], rel)
	return rel
}

// RemoveRelation removes the relation with the given id.
func (m *Model) RemoveRelation(id int) {
	for endpoint, rels := range m.relations {
		for i, rel := range rels {
			if rel.id == id {
				m.relations[endpoint] = append(rels[:i], rels[i+1:]...)
				return
			}
		}
	}
}

// Relation returns the relation with the given id, or nil.
func (m *Model) Relation(id int) *Relation {
	for _, rels := range m.relations {
		for _, rel := range rels {
			if rel.id == id {
				return rel
			}
		}
	}
	return nil
}

// Secrets is part of the charm.Model interface.
func (m *Model) Secrets() charm.SecretStore {
	return m.secrets
}

// SecretStore returns the secret store with its test helpers.
func (m *Model) SecretStore() *SecretStore {
	return m.secrets
}

// NetworkInfo is part of the charm.Model interface.
func (m *Model) NetworkInfo(endpoint string) (charm.NetworkInfo, error) {
	info, ok := m.networks[endpoint]
	if !ok {
		return charm.NetworkInfo{}, errors.NotFoundf("binding for endpoint %q", endpoint)
	}
	return info, nil
}

// SetNetworkInfo binds the endpoint.
func (m *Model) SetNetworkInfo(endpoint string, info charm.NetworkInfo) {
	m.networks[endpoint] = info
}

// Config is part of the charm.Model interface.
func (m *Model) Config() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(m.config))
	for k, v := range m.config {
		out[k] = v
	}
	return out, nil
}

// SetConfig validates attrs against the charm config and makes the
// coerced result the model config.
func (m *Model) SetConfig(config *charm.Config, attrs map[string]interface{}) error {
	coerced, err := config.Coerce(attrs)
	if err != nil {
		return errors.Trace(err)
	}
	m.config = coerced
	return nil
}

// Unit is the in-memory local unit.
type Unit struct {
	model   *Model
	name    string
	leader  bool
	status  status.StatusInfo
	history []status.StatusInfo
}

// Name is part of the charm.Unit interface.
func (u *Unit) Name() string {
	return u.name
}

// IsLeader is part of the charm.Unit interface.
func (u *Unit) IsLeader() (bool, error) {
	u.model.AddCall("IsLeader")
	if err := u.model.NextErr(); err != nil {
		return false, err
	}
	return u.leader, nil
}

// Status is part of the charm.Unit interface.
func (u *Unit) Status() (status.StatusInfo, error) {
	return u.status, nil
}

// SetStatus is part of the charm.Unit interface.
func (u *Unit) SetStatus(info status.StatusInfo) error {
	u.model.AddCall("SetStatus", info)
	if !status.ValidWorkloadStatus(info.Status) {
		return errors.NotValidf("workload status %q", info.Status)
	}
	now := u.model.Clock.Now()
	info.Since = &now
	u.status = info
	u.history = append(u.history, info)
	return nil
}

// StatusHistory returns every status set on the unit, oldest first.
func (u *Unit) StatusHistory() []status.StatusInfo {
	return u.history
}

// Relation is an in-memory charm.Relation.
type Relation struct {
	model       *Model
	id          int
	endpoint    string
	remoteApp   string
	units       []string
	local       charm.Databag
	remote      charm.Databag
	unavailable bool
}

// Id is part of the charm.Relation interface.
func (r *Relation) Id() int {
	return r.id
}

// Endpoint is part of the charm.Relation interface.
func (r *Relation) Endpoint() string {
	return r.endpoint
}

// RemoteApp is part of the charm.Relation interface.
func (r *Relation) RemoteApp() string {
	return r.remoteApp
}

// Units is part of the charm.Relation interface.
func (r *Relation) Units() []string {
	units := append([]string(nil), r.units...)
	sort.Strings(units)
	return units
}

// LocalAppData is part of the charm.Relation interface.
func (r *Relation) LocalAppData() (charm.Databag, error) {
	if r.unavailable {
		return nil, charm.ErrRelationDataUnavailable
	}
	return r.local.Copy(), nil
}

// RemoteAppData is part of the charm.Relation interface.
func (r *Relation) RemoteAppData() (charm.Databag, error) {
	if r.unavailable {
		return nil, charm.ErrRelationDataUnavailable
	}
	return r.remote.Copy(), nil
}

// UpdateLocalAppData is part of the charm.Relation interface.
func (r *Relation) UpdateLocalAppData(settings map[string]string) error {
	r.model.AddCall("UpdateLocalAppData", r.id, settings)
	if err := r.model.NextErr(); err != nil {
		return err
	}
	if !r.model.unit.leader {
		return errors.Forbiddenf("%s writing application data of relation %d", r.model.unit.name, r.id)
	}
	if r.unavailable {
		return charm.ErrRelationDataUnavailable
	}
	for k, v := range settings {
		if v == "" {
			delete(r.local, k)
			continue
		}
		r.local[k] = v
	}
	return nil
}

// LocalData returns the local application databag, bypassing
// availability.
func (r *Relation) LocalData() charm.Databag {
	return r.local.Copy()
}

// SetLocalData replaces the local application databag.
func (r *Relation) SetLocalData(data map[string]string) {
	r.local = charm.Databag(data).Copy()
	if r.local == nil {
		r.local = make(charm.Databag)
	}
}

// SetRemoteData replaces the remote application databag.
func (r *Relation) SetRemoteData(data map[string]string) {
	r.remote = charm.Databag(data).Copy()
	if r.remote == nil {
		r.remote = make(charm.Databag)
	}
}

// SetUnavailable makes the databags of the relation unreadable.
func (r *Relation) SetUnavailable(unavailable bool) {
	r.unavailable = unavailable
}
