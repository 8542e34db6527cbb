// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"context"

	"github.com/juju/errors"

	"github.com/charmed-hpc/hpc-libs/core/status"
)

// StopCharm is returned by a handler to stop processing an event and
// report Status on the unit.
type StopCharm struct {
	Status status.StatusInfo
}

// Error is part of the error interface.
func (e *StopCharm) Error() string {
	return "charm stopped: " + e.Status.String()
}

// NewStopCharm returns a *StopCharm carrying st.
func NewStopCharm(st status.StatusInfo) *StopCharm {
	return &StopCharm{Status: st}
}

// Guard wraps a Handler.
type Guard func(Handler) Handler

// Chain wraps handler with guards. The first guard is the outermost.
func Chain(handler Handler, guards ...Guard) Handler {
	for i := len(guards) - 1; i >= 0; i-- {
		handler = guards[i](handler)
	}
	return handler
}

// Condition evaluates the charm for an event. It returns whether the
// condition holds, and a message describing the unit when it matters
// for the status.
type Condition func(e *Event) (bool, string)

// Leader runs the handler only on the leader unit. On other units the
// event is consumed without side effects.
func Leader(model Model) Guard {
	return func(next Handler) Handler {
		return func(ctx context.Context, e *Event) error {
			leader, err := model.Unit().IsLeader()
			if err != nil {
				return errors.Annotate(err, "checking leadership")
			}
			if !leader {
				logger.Tracef("%s is not leader, skipping %q", model.Unit().Name(), e.Kind())
				return nil
			}
			return next(ctx, e)
		}
	}
}

// Refresh runs the handler and then refreshes the unit status. A
// *StopCharm from the handler sets the status it carries. Otherwise, if
// check is not nil, the status it returns is set.
func Refresh(model Model, check func() status.StatusInfo) Guard {
	return func(next Handler) Handler {
		return func(ctx context.Context, e *Event) error {
			err := next(ctx, e)
			var stop *StopCharm
			if errors.As(err, &stop) {
				return errors.Annotate(model.Unit().SetStatus(stop.Status), "setting status")
			}
			if err != nil {
				return errors.Trace(err)
			}
			if check == nil {
				return nil
			}
			return errors.Annotate(model.Unit().SetStatus(check()), "setting status")
		}
	}
}

// Reconfigure runs hook after the handler succeeds. It is skipped when
// the handler stops with a *StopCharm or fails. A nil hook does nothing.
func Reconfigure(hook func(ctx context.Context) error) Guard {
	return func(next Handler) Handler {
		return func(ctx context.Context, e *Event) error {
			if err := next(ctx, e); err != nil {
				return err
			}
			if hook == nil {
				return nil
			}
			return errors.Annotate(hook(ctx), "reconfiguring")
		}
	}
}

// BlockWhen defers the event and stops with a blocked status when any
// condition holds.
func BlockWhen(conditions ...Condition) Guard {
	return statusWhen(status.Blocked, true, conditions)
}

// WaitWhen defers the event and stops with a waiting status when any
// condition holds.
func WaitWhen(conditions ...Condition) Guard {
	return statusWhen(status.Waiting, true, conditions)
}

// BlockUnless defers the event and stops with a blocked status unless
// every condition holds.
func BlockUnless(conditions ...Condition) Guard {
	return statusWhen(status.Blocked, false, conditions)
}

// WaitUnless defers the event and stops with a waiting status unless
// every condition holds.
func WaitUnless(conditions ...Condition) Guard {
	return statusWhen(status.Waiting, false, conditions)
}

func statusWhen(st status.Status, when bool, conditions []Condition) Guard {
	return func(next Handler) Handler {
		return func(ctx context.Context, e *Event) error {
			for _, condition := range conditions {
				holds, msg := condition(e)
				if holds != when {
					continue
				}
				e.Defer()
				return NewStopCharm(status.StatusInfo{Status: st, Message: msg})
			}
			return next(ctx, e)
		}
	}
}
