// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/schema"
)

// Event is a hook delivered by the host runtime, or an event derived from
// one by an integration library. Relation fields are only set for events
// scoped to a relation.
type Event struct {
	// Name is the event name, eg. "relation-changed" or
	// "slurmctld-ready".
	Name string

	// Endpoint is the local endpoint the event is scoped to.
	Endpoint string

	// Relation is the relation the event is about.
	Relation Relation

	// App is the remote application that triggered the event.
	App string

	// Unit is the remote unit that triggered the event.
	Unit string

	// DepartingUnit is the unit leaving the relation, if any.
	DepartingUnit string

	deferred bool
}

// Kind returns the key observers register for: "<endpoint>/<name>" for
// events scoped to an endpoint and "<name>" otherwise.
func (e *Event) Kind() string {
	return EventKind(e.Endpoint, e.Name)
}

// EventKind returns the observer key of the named event on endpoint.
func EventKind(endpoint, name string) string {
	if endpoint == "" {
		return name
	}
	return endpoint + "/" + name
}

// Defer marks the event to be delivered again to the same observer before
// the next hook is dispatched.
func (e *Event) Defer() {
	e.deferred = true
}

// Deferred reports whether the current observer deferred the event.
func (e *Event) Deferred() bool {
	return e.deferred
}

// Derive returns a new event with the given name carrying the same
// relation context.
func (e *Event) Derive(name string) *Event {
	return &Event{
		Name:          name,
		Endpoint:      e.Endpoint,
		Relation:      e.Relation,
		App:           e.App,
		Unit:          e.Unit,
		DepartingUnit: e.DepartingUnit,
	}
}

func (e *Event) clone() *Event {
	c := *e
	c.deferred = false
	return &c
}

func (e *Event) snapshot() map[string]interface{} {
	snap := map[string]interface{}{
		"name":           e.Name,
		"endpoint":       e.Endpoint,
		"app":            e.App,
		"unit":           e.Unit,
		"departing-unit": e.DepartingUnit,
	}
	if e.Relation != nil {
		snap["relation-id"] = e.Relation.Id()
	}
	return snap
}

var snapshotSchema = schema.FieldMap(
	schema.Fields{
		"name":           schema.String(),
		"endpoint":       schema.String(),
		"relation-id":    schema.Int(),
		"app":            schema.String(),
		"unit":           schema.String(),
		"departing-unit": schema.String(),
	},
	schema.Defaults{
		"endpoint":       "",
		"relation-id":    schema.Omit,
		"app":            "",
		"unit":           "",
		"departing-unit": "",
	},
)

// restoreEvent rebuilds an event from a stored snapshot. It returns an
// error satisfying errors.NotFound if the relation the event was about no
// longer exists.
func restoreEvent(model Model, snapshot map[string]interface{}) (*Event, error) {
	v, err := snapshotSchema.Coerce(snapshot, nil)
	if err != nil {
		return nil, errors.Annotate(err, "invalid event snapshot")
	}
	m := v.(map[string]interface{})
	e := &Event{
		Name:          m["name"].(string),
		Endpoint:      m["endpoint"].(string),
		App:           m["app"].(string),
		Unit:          m["unit"].(string),
		DepartingUnit: m["departing-unit"].(string),
	}
	if id, ok := m["relation-id"].(int64); ok {
		rel, err := RelationByID(model, e.Endpoint, int(id))
		if err != nil {
			return nil, errors.Trace(err)
		}
		e.Relation = rel
	}
	return e, nil
}

// Handler observes events.
type Handler func(ctx context.Context, e *Event) error
