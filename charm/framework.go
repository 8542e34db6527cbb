// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"context"
	"fmt"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/kr/pretty"

	"github.com/charmed-hpc/hpc-libs/hook"
)

var logger = loggo.GetLogger("hpc.charm")

// FrameworkConfig holds the dependencies of a Framework.
type FrameworkConfig struct {
	// Model is the host runtime the charm runs in.
	Model Model

	// Meta is the charm metadata. When set, relation hooks for
	// undeclared endpoints are rejected.
	Meta *Meta

	// Storage persists deferred events. Defaults to a MemoryStorage.
	Storage Storage

	// Clock stamps deferred events. Defaults to the wall clock.
	Clock clock.Clock

	// Metrics is optional.
	Metrics *Collector
}

// Validate returns an error if the config cannot be used to build a
// Framework.
func (config FrameworkConfig) Validate() error {
	if config.Model == nil {
		return errors.NotValidf("nil Model")
	}
	if config.Model.Unit() == nil {
		return errors.NotValidf("nil Unit")
	}
	return nil
}

type observer struct {
	key     string
	handler Handler
}

// Framework delivers events to observers. It stores events an observer
// defers and delivers them again, to the same observer, before the next
// hook. It is not safe for concurrent use: a charm handles one hook at a
// time.
type Framework struct {
	model   Model
	meta    *Meta
	storage Storage
	clock   clock.Clock
	metrics *Collector

	observers map[string][]observer
	byKey     map[string]observer
}

// NewFramework returns a Framework using the given config.
func NewFramework(config FrameworkConfig) (*Framework, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.Storage == nil {
		config.Storage = NewMemoryStorage()
	}
	if config.Clock == nil {
		config.Clock = clock.WallClock
	}
	return &Framework{
		model:     config.Model,
		meta:      config.Meta,
		storage:   config.Storage,
		clock:     config.Clock,
		metrics:   config.Metrics,
		observers: make(map[string][]observer),
		byKey:     make(map[string]observer),
	}, nil
}

// Model returns the model the framework runs in.
func (f *Framework) Model() Model {
	return f.model
}

// Meta returns the charm metadata, which may be nil.
func (f *Framework) Meta() *Meta {
	return f.meta
}

// Observe registers handler for events of the given kind. Observers are
// called in registration order. Registration order also identifies the
// observer a deferred event is delivered back to, so charms must register
// the same observers in the same order on every hook.
func (f *Framework) Observe(kind string, handler Handler) {
	obs := observer{
		key:     fmt.Sprintf("%s#%d", kind, len(f.observers[kind])),
		handler: handler,
	}
	f.observers[kind] = append(f.observers[kind], obs)
	f.byKey[obs.key] = obs
}

// Emit delivers the event to every observer of its kind. An observer
// that defers the event gets it again on the next Dispatch. The first
// observer error stops delivery and is returned.
func (f *Framework) Emit(ctx context.Context, e *Event) error {
	kind := e.Kind()
	f.metrics.eventEmitted(kind)
	observers := f.observers[kind]
	if len(observers) == 0 {
		logger.Tracef("no observers for %q", kind)
		return nil
	}
	for _, obs := range observers {
		ev := e.clone()
		if err := f.invoke(ctx, obs, ev); err != nil {
			return errors.Annotatef(err, "handling %q", kind)
		}
		if !ev.deferred {
			continue
		}
		logger.Debugf("%s deferred %q", obs.key, kind)
		notice := Notice{
			Observer: obs.key,
			Kind:     kind,
			Snapshot: ev.snapshot(),
			Created:  f.clock.Now(),
		}
		if err := f.storage.SaveNotice(ctx, notice); err != nil {
			return errors.Annotatef(err, "saving deferred %q", kind)
		}
		f.metrics.eventDeferred(kind)
	}
	return nil
}

// invoke runs an observer. A *StopCharm returned by the observer ends
// its handling of the event: the carried status is set on the unit and
// no error is returned.
func (f *Framework) invoke(ctx context.Context, obs observer, e *Event) error {
	err := obs.handler(ctx, e)
	var stop *StopCharm
	if !errors.As(err, &stop) {
		return err
	}
	logger.Debugf("%s stopped: %s", obs.key, stop.Status)
	f.metrics.handlerStopped(stop.Status.Status.String())
	return errors.Annotate(f.model.Unit().SetStatus(stop.Status), "setting status")
}

// Dispatch handles one hook delivered by the host runtime: deferred events
// are delivered first, then the hook event itself.
func (f *Framework) Dispatch(ctx context.Context, info hook.Info) error {
	if err := info.Validate(); err != nil {
		return errors.Trace(err)
	}
	if f.meta != nil && info.Kind.IsRelation() {
		if _, ok := f.meta.Endpoint(info.RelationEndpoint); !ok {
			return errors.NotValidf("hook for undeclared endpoint %q", info.RelationEndpoint)
		}
	}
	logger.Tracef("dispatching %# v", pretty.Formatter(info))
	if err := f.reemit(ctx); err != nil {
		return errors.Annotate(err, "re-emitting deferred events")
	}
	e, err := f.hookEvent(info)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(f.Emit(ctx, e))
}

func (f *Framework) hookEvent(info hook.Info) (*Event, error) {
	e := &Event{Name: string(info.Kind)}
	if !info.Kind.IsRelation() {
		return e, nil
	}
	rel, err := RelationByID(f.model, info.RelationEndpoint, info.RelationId)
	if err != nil {
		return nil, errors.Annotatef(err, "%s hook", info.Kind)
	}
	e.Endpoint = info.RelationEndpoint
	e.Relation = rel
	e.App = info.RemoteApplication
	if e.App == "" {
		e.App = rel.RemoteApp()
	}
	e.Unit = info.RemoteUnit
	e.DepartingUnit = info.DepartingUnit
	return e, nil
}

// reemit delivers stored notices to the observers that deferred them.
// A notice is dropped once its observer handles the event without
// deferring it again, or when the event can no longer be rebuilt.
func (f *Framework) reemit(ctx context.Context) error {
	notices, err := f.storage.Notices(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	for _, n := range notices {
		obs, ok := f.byKey[n.Observer]
		if !ok {
			logger.Warningf("dropping deferred %q: observer %s not registered", n.Kind, n.Observer)
			if err := f.drop(ctx, n); err != nil {
				return errors.Trace(err)
			}
			continue
		}
		e, err := restoreEvent(f.model, n.Snapshot)
		if errors.Is(err, errors.NotFound) {
			logger.Debugf("dropping deferred %q: %v", n.Kind, err)
			if err := f.drop(ctx, n); err != nil {
				return errors.Trace(err)
			}
			continue
		} else if err != nil {
			return errors.Annotatef(err, "restoring deferred %q", n.Kind)
		}
		f.metrics.eventReemitted(n.Kind)
		if err := f.invoke(ctx, obs, e); err != nil {
			return errors.Annotatef(err, "handling deferred %q", n.Kind)
		}
		if e.deferred {
			logger.Debugf("%s deferred %q again", obs.key, n.Kind)
			continue
		}
		if err := f.storage.DropNotice(ctx, n.ID); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (f *Framework) drop(ctx context.Context, n Notice) error {
	f.metrics.noticeDropped(n.Kind)
	return errors.Trace(f.storage.DropNotice(ctx, n.ID))
}
