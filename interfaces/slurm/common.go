// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package slurm implements the integration interfaces between the Slurm
// controller, slurmctld, and the services it coordinates: sackd, slurmd,
// slurmdbd, slurmrestd and OCI container runtimes.
//
// Each interface has a controller side, run by the slurmctld application,
// and a consumer side, run by the integrated service. The controller side
// distributes the shared auth/slurm and JWT keys as secrets granted to each
// integration and publishes only their ids.
package slurm

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/core/secrets"
	"github.com/charmed-hpc/hpc-libs/hook"
	"github.com/charmed-hpc/hpc-libs/interfaces"
)

var logger = loggo.GetLogger("hpc.interfaces.slurm")

// Events derived from the slurmctld integration on consumer charms.
const (
	SlurmctldConnected    = "slurmctld-connected"
	SlurmctldReady        = "slurmctld-ready"
	SlurmctldDisconnected = "slurmctld-disconnected"
)

const waitingForController = "Waiting for controller data"

// ControllerData is the data published by slurmctld.
type ControllerData struct {
	// AuthKey is the base64 encoded auth/slurm key. It is never published
	// as is: the databag holds the redaction sentinel while the key lives
	// in the secret identified by AuthKeyID.
	AuthKey   string `json:"auth_key"`
	AuthKeyID string `json:"auth_key_id"`

	// JWTKey is the key slurmrestd and slurmdbd verify JWT tokens with.
	// It is shared the same way as AuthKey.
	JWTKey   string `json:"jwt_key,omitempty"`
	JWTKeyID string `json:"jwt_key_id,omitempty"`

	// Controllers lists the slurmctld addresses, primary first.
	Controllers []string `json:"controllers"`

	// NHCArgs are the arguments compute nodes pass to the node health
	// check.
	NHCArgs string `json:"nhc_args"`

	// SlurmConfig is the slurm.conf content slurmrestd needs.
	SlurmConfig SlurmConfig `json:"slurmconfig,omitempty"`
}

// SlurmConfig holds slurm.conf options keyed by option name.
type SlurmConfig map[string]interface{}

var controllerSchema = interfaces.ReadinessSchema{
	"auth_key_id": interfaces.NotEmptyString,
	"controllers": interfaces.NotEmptyList,
}

// gate selects which units handle the hooks of an integration.
type gate int

const (
	// allUnits handles every hook on every unit.
	allUnits gate = iota

	// leaderCreated handles relation-created on the leader only.
	leaderCreated

	// leaderOnly handles every hook on the leader only.
	leaderOnly
)

// lifecycle derives the connected, ready and disconnected events of an
// integration from its relation hooks. Empty event names are not
// emitted.
type lifecycle struct {
	iface *interfaces.Interface
	gate  gate

	connected    string
	ready        string
	disconnected string
	waiting      string

	// revoke removes the secrets shared over the integration when it is
	// broken.
	revoke bool
}

func (l lifecycle) register() {
	model := l.iface.Model()
	guarded := func(kind hook.Kind, handler charm.Handler, guards ...charm.Guard) {
		leader := l.gate == leaderOnly || (l.gate == leaderCreated && kind == hook.RelationCreated)
		if leader || (l.revoke && kind == hook.RelationBroken) {
			guards = append([]charm.Guard{charm.Leader(model)}, guards...)
		}
		l.iface.Observe(kind, charm.Chain(handler, guards...))
	}
	if l.connected != "" {
		guarded(hook.RelationCreated, l.onCreated)
	}
	if l.ready != "" {
		guarded(hook.RelationChanged, l.onChanged,
			requireRemoteData,
			charm.Refresh(model, nil),
			charm.WaitWhen(l.iface.NotReady(l.waiting)),
		)
	}
	if l.disconnected != "" || l.revoke {
		guarded(hook.RelationBroken, l.onBroken)
	}
}

func (l lifecycle) onCreated(ctx context.Context, e *charm.Event) error {
	return errors.Trace(l.iface.Emit(ctx, e, l.connected))
}

func (l lifecycle) onChanged(ctx context.Context, e *charm.Event) error {
	return errors.Trace(l.iface.Emit(ctx, e, l.ready))
}

func (l lifecycle) onBroken(ctx context.Context, e *charm.Event) error {
	if l.iface.IsDeparting(e) {
		logger.Debugf("%s is departing %s:%d, skipping cleanup", e.DepartingUnit, l.iface.Endpoint(), e.Relation.Id())
		return nil
	}
	if l.revoke {
		err := interfaces.RevokeSecrets(l.iface.Model(), e.Relation.Id(), secrets.AuthKind, secrets.JWTKind)
		if err != nil {
			return errors.Trace(err)
		}
	}
	if l.disconnected == "" {
		return nil
	}
	return errors.Trace(l.iface.Emit(ctx, e, l.disconnected))
}

// requireRemoteData stops handling a relation event while the remote
// application has not published anything yet.
func requireRemoteData(next charm.Handler) charm.Handler {
	return func(ctx context.Context, e *charm.Event) error {
		data, err := e.Relation.RemoteAppData()
		if errors.Is(err, charm.ErrRelationDataUnavailable) {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		if len(data) == 0 {
			logger.Tracef("no data from %q yet on %s:%d", e.App, e.Endpoint, e.Relation.Id())
			return nil
		}
		return next(ctx, e)
	}
}

// SlurmctldProvider is the controller side of an integration between
// slurmctld and another Slurm service. It publishes ControllerData and
// revokes the secrets it shared when an integration is broken.
type SlurmctldProvider struct {
	*interfaces.Interface
}

// NewSlurmctldProvider returns the controller side of a slurmctld
// integration on the endpoint. Integrations are ready once the remote
// application databag satisfies schema.
func NewSlurmctldProvider(fw *charm.Framework, endpoint string, schema interfaces.ReadinessSchema) *SlurmctldProvider {
	return newSlurmctldProvider(fw, endpoint, schema, lifecycle{})
}

func newSlurmctldProvider(fw *charm.Framework, endpoint string, schema interfaces.ReadinessSchema, l lifecycle) *SlurmctldProvider {
	p := &SlurmctldProvider{Interface: interfaces.New(fw, endpoint, schema)}
	l.iface = p.Interface
	l.gate = leaderOnly
	l.revoke = true
	l.register()
	return p
}

// SetControllerData publishes data on the integrations with the given ids,
// or on every integration when no id is given. Keys set in data are
// stored in secrets labelled after each integration and granted to it;
// the databag only carries their ids and the redaction sentinel. Keys
// left empty keep any secret shared earlier. data itself is not modified.
// It does nothing on a unit that is not the leader.
func (p *SlurmctldProvider) SetControllerData(data ControllerData, ids ...int) error {
	leader, err := p.IsLeader()
	if err != nil {
		return errors.Trace(err)
	}
	if !leader {
		logger.Debugf("not leader, not setting controller data on %q", p.Endpoint())
		return nil
	}
	rels, err := p.Targets(ids...)
	if err != nil {
		return errors.Trace(err)
	}
	for _, rel := range rels {
		redacted, err := p.shareSecrets(rel, data)
		if err != nil {
			return errors.Annotatef(err, "sharing secrets with %s:%d", p.Endpoint(), rel.Id())
		}
		if err := p.SaveIntegrationData(redacted, rel.Id()); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// shareSecrets returns a copy of data ready to be published on rel.
func (p *SlurmctldProvider) shareSecrets(rel charm.Relation, data ControllerData) (ControllerData, error) {
	out := data
	if out.Controllers == nil {
		out.Controllers = []string{}
	}
	var err error
	if out.AuthKeyID, err = p.shareSecret(rel, secrets.AuthKind, data.AuthKey); err != nil {
		return ControllerData{}, errors.Trace(err)
	}
	if out.AuthKeyID != "" {
		out.AuthKey = secrets.Redacted
	}
	if out.JWTKeyID, err = p.shareSecret(rel, secrets.JWTKind, data.JWTKey); err != nil {
		return ControllerData{}, errors.Trace(err)
	}
	if out.JWTKeyID != "" {
		out.JWTKey = secrets.Redacted
	}
	return out, nil
}

// shareSecret stores value in the secret of the given kind for rel and
// returns the secret id. Without a value the id of the existing secret,
// if any, is returned.
func (p *SlurmctldProvider) shareSecret(rel charm.Relation, kind secrets.Kind, value string) (string, error) {
	label := secrets.IntegrationLabel(rel.Id(), kind)
	if value == "" || secrets.IsRedacted(value) {
		secret, found, err := interfaces.LoadSecret(p.Model(), label)
		if err != nil || !found {
			return "", errors.Trace(err)
		}
		return secret.ID(), nil
	}
	secret, err := interfaces.UpdateSecret(p.Model(), label, secrets.NewContent(value))
	if err != nil {
		return "", errors.Trace(err)
	}
	if err := secret.Grant(rel); err != nil {
		return "", errors.Annotatef(err, "granting secret %q", label)
	}
	return secret.ID(), nil
}

// SlurmctldRequirer is the consumer side of an integration with
// slurmctld. It derives the slurmctld-connected, slurmctld-ready and
// slurmctld-disconnected events and reads ControllerData.
type SlurmctldRequirer struct {
	*interfaces.Interface
}

// NewSlurmctldRequirer returns the consumer side of a slurmctld
// integration on the endpoint, handled on every unit. Integrations are
// ready once the controller published its auth key id and addresses.
func NewSlurmctldRequirer(fw *charm.Framework, endpoint string) *SlurmctldRequirer {
	return newSlurmctldRequirer(fw, endpoint, controllerSchema, allUnits)
}

func newSlurmctldRequirer(fw *charm.Framework, endpoint string, schema interfaces.ReadinessSchema, g gate) *SlurmctldRequirer {
	r := &SlurmctldRequirer{Interface: interfaces.New(fw, endpoint, schema)}
	lifecycle{
		iface:        r.Interface,
		gate:         g,
		connected:    SlurmctldConnected,
		ready:        SlurmctldReady,
		disconnected: SlurmctldDisconnected,
		waiting:      waitingForController,
	}.register()
	return r
}

// GetControllerData reads the controller data published on rel, or on
// the integration with the given id, or on the only integration. Secret
// backed keys are resolved into the returned value.
func (r *SlurmctldRequirer) GetControllerData(rel charm.Relation, ids ...int) (ControllerData, error) {
	var data ControllerData
	rel, err := r.Resolve(rel, ids...)
	if err != nil {
		return data, errors.Trace(err)
	}
	if err := r.LoadIntegrationData(rel, &data); err != nil {
		return data, errors.Trace(err)
	}
	if data.AuthKeyID != "" {
		if data.AuthKey, err = interfaces.SecretValue(r.Model(), data.AuthKeyID); err != nil {
			return data, errors.Annotate(err, "resolving auth key")
		}
	}
	if data.JWTKeyID != "" {
		if data.JWTKey, err = interfaces.SecretValue(r.Model(), data.JWTKeyID); err != nil {
			return data, errors.Annotate(err, "resolving jwt key")
		}
	}
	return data, nil
}

// ControllerNotReady holds while slurmctld has not published its
// controller data.
func ControllerNotReady(r *SlurmctldRequirer) charm.Condition {
	return r.NotReady(waitingForController)
}
