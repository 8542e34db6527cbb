// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmtest

import (
	"context"

	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/hook"
)

// SetupFunc registers a charm's observers on a new framework, the way a
// charm does when the host runtime starts it for a hook.
type SetupFunc func(fw *charm.Framework) error

// Harness runs hooks against a Model. Each hook gets a fresh Framework
// built with the setup function, while the model and the deferred event
// storage persist between hooks.
type Harness struct {
	Model    *Model
	Meta     *charm.Meta
	Storage  charm.Storage
	Metrics  *charm.Collector
	Recorder *Recorder

	setup  SetupFunc
	record []string
}

// NewHarness returns a Harness for the model.
func NewHarness(model *Model, meta *charm.Meta, setup SetupFunc) *Harness {
	return &Harness{
		Model:    model,
		Meta:     meta,
		Storage:  charm.NewMemoryStorage(),
		Metrics:  charm.NewMetricsCollector(),
		Recorder: &Recorder{},
		setup:    setup,
	}
}

// Record makes the recorder observe the given event kinds on every
// framework the harness builds.
func (h *Harness) Record(kinds ...string) {
	h.record = append(h.record, kinds...)
}

// Begin returns a freshly set up framework, as the charm would see it at
// the start of a hook.
func (h *Harness) Begin() (*charm.Framework, error) {
	fw, err := charm.NewFramework(charm.FrameworkConfig{
		Model:   h.Model,
		Meta:    h.Meta,
		Storage: h.Storage,
		Clock:   h.Model.Clock,
		Metrics: h.Metrics,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if h.setup != nil {
		if err := h.setup(fw); err != nil {
			return nil, errors.Annotate(err, "setting up charm")
		}
	}
	h.Recorder.observe(fw, h.record...)
	return fw, nil
}

// Run dispatches the hook to a freshly set up framework.
func (h *Harness) Run(ctx context.Context, info hook.Info) error {
	fw, err := h.Begin()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(fw.Dispatch(ctx, info))
}

// Deferred returns the kinds of the events currently deferred.
func (h *Harness) Deferred(ctx context.Context) ([]string, error) {
	notices, err := h.Storage.Notices(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	kinds := make([]string, len(notices))
	for i, n := range notices {
		kinds[i] = n.Kind
	}
	return kinds, nil
}

// RelationCreated returns the relation-created hook for rel.
func RelationCreated(rel *Relation) hook.Info {
	return hook.Info{
		Kind:              hook.RelationCreated,
		RelationId:        rel.id,
		RelationEndpoint:  rel.endpoint,
		RemoteApplication: rel.remoteApp,
	}
}

// RelationChanged returns the relation-changed hook for rel, triggered by
// the first remote unit.
func RelationChanged(rel *Relation) hook.Info {
	remote := rel.remoteApp + "/0"
	if units := rel.Units(); len(units) > 0 {
		remote = units[0]
	}
	return hook.Info{
		Kind:              hook.RelationChanged,
		RelationId:        rel.id,
		RelationEndpoint:  rel.endpoint,
		RemoteApplication: rel.remoteApp,
		RemoteUnit:        remote,
	}
}

// RelationBroken returns the relation-broken hook for rel. departing is
// the unit going away, if any.
func RelationBroken(rel *Relation, departing string) hook.Info {
	return hook.Info{
		Kind:              hook.RelationBroken,
		RelationId:        rel.id,
		RelationEndpoint:  rel.endpoint,
		RemoteApplication: rel.remoteApp,
		DepartingUnit:     departing,
	}
}

// Recorder records the events it observes.
type Recorder struct {
	Events []*charm.Event
}

func (r *Recorder) observe(fw *charm.Framework, kinds ...string) {
	for _, kind := range kinds {
		fw.Observe(kind, func(_ context.Context, e *charm.Event) error {
			r.Events = append(r.Events, e)
			return nil
		})
	}
}

// Kinds returns the kinds of the recorded events, in order.
func (r *Recorder) Kinds() []string {
	kinds := make([]string, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind()
	}
	return kinds
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}
