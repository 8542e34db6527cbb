// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hook provides types that define the hooks a host runtime delivers
// to a charm.
package hook

import (
	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// Kind enumerates the different kinds of hooks that exist.
type Kind string

const (
	Install       Kind = "install"
	Start         Kind = "start"
	ConfigChanged Kind = "config-changed"
	UpgradeCharm  Kind = "upgrade-charm"
	UpdateStatus  Kind = "update-status"
	LeaderElected Kind = "leader-elected"
	Stop          Kind = "stop"

	RelationCreated  Kind = "relation-created"
	RelationJoined   Kind = "relation-joined"
	RelationChanged  Kind = "relation-changed"
	RelationDeparted Kind = "relation-departed"
	RelationBroken   Kind = "relation-broken"
)

// IsRelation returns whether the Kind represents a relation hook.
func (kind Kind) IsRelation() bool {
	switch kind {
	case RelationCreated, RelationJoined, RelationChanged, RelationDeparted, RelationBroken:
		return true
	}
	return false
}

// Info holds details required to dispatch a hook. Not all fields are
// relevant to all Kind values.
type Info struct {
	Kind Kind `yaml:"kind"`

	// RelationId identifies the relation associated with the hook. It is
	// only set when Kind indicates a relation hook.
	RelationId int `yaml:"relation-id,omitempty"`

	// RelationEndpoint is the local endpoint of the relation. It is only
	// set when Kind indicates a relation hook.
	RelationEndpoint string `yaml:"relation-endpoint,omitempty"`

	// RemoteApplication is the name of the application on the other side
	// of the relation. It is only set when Kind indicates a relation hook.
	RemoteApplication string `yaml:"remote-application,omitempty"`

	// RemoteUnit is the name of the unit that triggered the hook. It is only
	// set when Kind indicates a relation hook other than relation-created
	// and relation-broken.
	RemoteUnit string `yaml:"remote-unit,omitempty"`

	// DepartingUnit is the name of the unit leaving the relation. It is
	// only set for relation-departed, and for relation-broken when the
	// relation is broken because a unit is going away.
	DepartingUnit string `yaml:"departing-unit,omitempty"`
}

// Validate returns an error if the info is not valid.
func (hi Info) Validate() error {
	switch hi.Kind {
	case RelationJoined, RelationChanged, RelationDeparted:
		if hi.RemoteUnit == "" {
			return errors.NotValidf("%q hook without remote unit", hi.Kind)
		}
		if !names.IsValidUnit(hi.RemoteUnit) {
			return errors.NotValidf("remote unit %q", hi.RemoteUnit)
		}
		fallthrough
	case RelationCreated, RelationBroken:
		if hi.RelationEndpoint == "" {
			return errors.NotValidf("%q hook without relation endpoint", hi.Kind)
		}
		if hi.RemoteApplication != "" && !names.IsValidApplication(hi.RemoteApplication) {
			return errors.NotValidf("remote application %q", hi.RemoteApplication)
		}
		if hi.DepartingUnit != "" && !names.IsValidUnit(hi.DepartingUnit) {
			return errors.NotValidf("departing unit %q", hi.DepartingUnit)
		}
		return nil
	case Install, Start, ConfigChanged, UpgradeCharm, UpdateStatus, LeaderElected, Stop:
		return nil
	}
	return errors.NotValidf("hook kind %q", hi.Kind)
}
