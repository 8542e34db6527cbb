// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/juju/ansiterm"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/charm/charmtest"
	"github.com/charmed-hpc/hpc-libs/charm/noticestore"
	"github.com/charmed-hpc/hpc-libs/cmd"
	"github.com/charmed-hpc/hpc-libs/core/secrets"
	"github.com/charmed-hpc/hpc-libs/core/status"
	"github.com/charmed-hpc/hpc-libs/hook"
)

const replayDoc = `
Replay runs the hooks of a scenario file against one side of an
integration, on an in-memory model holding a single unit, and reports the
data published by the unit, its status, the events derived by the
integration and the events left deferred.

A scenario looks like:

    role: sackd-provider
    unit: sackd/0
    secrets:
      auth: xyz123==
    relations:
      - remote-app: slurmctld
        units: [slurmctld/0]
        data:
          auth_key: "***"
          auth_key_id: ${auth}
          controllers: [10.0.0.1]
    hooks:
      - kind: relation-created
      - kind: relation-changed

Relation data values are stored as json. ${name} in a string value is
replaced with the id of the shared secret of that name.

A scenario may also carry the charm config options, in the form used by
config.yaml, under "options" and the values set for them under "config".
The values are checked against the options and reported with the option
defaults applied.

Roles:
`

type replayCommand struct {
	scenarioFile cmd.FileVar
	statePath    string
	showSecrets  bool
	out          cmd.Output
}

func newReplayCommand() cmd.Command {
	return &replayCommand{}
}

// Info is part of the cmd.Command interface.
func (c *replayCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:        "replay",
		Args:        "<scenario.yaml>",
		Purpose:     "Replay integration hooks on an in-memory unit.",
		Doc:         replayDoc + describeRoles(),
		Intersperse: true,
	}
}

func describeRoles() string {
	roleNames := make([]string, 0, len(roles))
	for name := range roles {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)
	lines := make([]string, len(roleNames))
	for i, name := range roleNames {
		r := roles[name]
		lines[i] = fmt.Sprintf("    %-21s endpoint %q", name, r.endpoint)
		if r.publishes != "" {
			lines[i] += ", publishes " + r.publishes
		}
	}
	return strings.Join(lines, "\n")
}

// SetFlags is part of the cmd.Command interface.
func (c *replayCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.statePath, "state", "", "Keep deferred events in a SQLite database at this path")
	f.BoolVar(&c.showSecrets, "show-secrets", false, "Show secret values read by the unit")
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
		"tabular": formatReportTabular,
	})
}

// Init is part of the cmd.Command interface.
func (c *replayCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no scenario file specified")
	}
	if err := c.scenarioFile.Set(args[0]); err != nil {
		return errors.Trace(err)
	}
	return cmd.CheckEmpty(args[1:])
}

// Run is part of the cmd.Command interface.
func (c *replayCommand) Run(ctx *cmd.Context) error {
	data, err := c.scenarioFile.Read(ctx)
	if err != nil {
		return errors.Annotate(err, "reading scenario")
	}
	sc, err := parseScenario(data)
	if err != nil {
		return errors.Trace(err)
	}
	var storage charm.Storage = charm.NewMemoryStorage()
	if c.statePath != "" {
		st, err := noticestore.Open(context.Background(), ctx.AbsPath(c.statePath))
		if err != nil {
			return errors.Trace(err)
		}
		defer st.Close()
		storage = st
	}
	r := &replay{
		scenario:    sc,
		storage:     storage,
		showSecrets: c.showSecrets,
		received:    make(map[int]interface{}),
	}
	rep, err := r.run(context.Background())
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctx, rep)
}

// replay runs a scenario on an in-memory model.
type replay struct {
	scenario    *scenario
	storage     charm.Storage
	showSecrets bool

	// received holds the data read by the unit, keyed by integration id.
	received map[int]interface{}
}

func (r *replay) run(ctx context.Context) (*report, error) {
	sc := r.scenario
	rl := roles[sc.Role]
	model, err := charmtest.NewModel(sc.Unit)
	if err != nil {
		return nil, errors.Trace(err)
	}
	secretIDs, err := seedSecrets(model, sc.Secrets)
	if err != nil {
		return nil, errors.Trace(err)
	}
	model.SetLeader(sc.Leader)
	if sc.Config != nil {
		if err := model.SetConfig(sc.Config, sc.ConfigValues); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if sc.IngressAddress != "" {
		model.SetNetworkInfo(sc.Endpoint, charm.NetworkInfo{
			BindAddresses:    []string{sc.IngressAddress},
			IngressAddresses: []string{sc.IngressAddress},
		})
	}

	rels := make([]*charmtest.Relation, len(sc.Relations))
	for i, spec := range sc.Relations {
		rels[i] = model.AddRelation(sc.Endpoint, spec.RemoteApp, spec.Units...)
		data, err := encodeData(spec.Data, secretIDs)
		if err != nil {
			return nil, errors.Annotatef(err, "relation %d", i)
		}
		rels[i].SetRemoteData(data)
	}

	harness := charmtest.NewHarness(model, nil, func(fw *charm.Framework) error {
		return rl.setup(fw, sc.Endpoint, r)
	})
	harness.Storage = r.storage
	for _, name := range rl.events {
		harness.Record(charm.EventKind(sc.Endpoint, name))
	}

	broken := make(map[int]bool)
	for i, h := range sc.Hooks {
		rel := rels[h.Relation]
		if h.Data != nil {
			data, err := encodeData(h.Data, secretIDs)
			if err != nil {
				return nil, errors.Annotatef(err, "hook %d", i)
			}
			rel.SetRemoteData(data)
		}
		info := relationHook(h, rel)
		logger.Debugf("running %s on %s:%d", info.Kind, sc.Endpoint, rel.Id())
		if err := harness.Run(ctx, info); err != nil {
			return nil, errors.Annotatef(err, "running %s on %s:%d", info.Kind, sc.Endpoint, rel.Id())
		}
		if h.Kind == hook.RelationBroken {
			model.RemoveRelation(rel.Id())
			broken[rel.Id()] = true
		}
	}

	deferred, err := harness.Deferred(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	st, err := model.Unit().Status()
	if err != nil {
		return nil, errors.Trace(err)
	}
	config, err := model.Config()
	if err != nil {
		return nil, errors.Trace(err)
	}
	rep := &report{
		Unit:     sc.Unit,
		Leader:   sc.Leader,
		Role:     sc.Role,
		Status:   statusReport{Status: st.Status, Message: st.Message},
		Config:   config,
		Events:   harness.Recorder.Kinds(),
		Deferred: deferred,
	}
	for _, rel := range rels {
		rep.Relations = append(rep.Relations, r.relationReport(model, rel, broken[rel.Id()]))
	}
	return rep, nil
}

// seedSecrets adds the secrets shared with the unit to the model and
// returns their ids by name.
func seedSecrets(model *charmtest.Model, shared map[string]string) (map[string]string, error) {
	ids := make(map[string]string, len(shared))
	model.SetLeader(true)
	for name, value := range shared {
		secret, err := model.Secrets().AddSecret("", secrets.NewContent(value))
		if err != nil {
			return nil, errors.Annotatef(err, "adding secret %q", name)
		}
		ids[name] = secret.ID()
	}
	return ids, nil
}

func relationHook(h hookSpec, rel *charmtest.Relation) hook.Info {
	switch h.Kind {
	case hook.RelationCreated:
		return charmtest.RelationCreated(rel)
	case hook.RelationBroken:
		return charmtest.RelationBroken(rel, h.Departing)
	}
	info := charmtest.RelationChanged(rel)
	info.Kind = h.Kind
	if h.Kind == hook.RelationDeparted {
		info.DepartingUnit = h.Departing
		if info.DepartingUnit == "" {
			info.DepartingUnit = info.RemoteUnit
		}
	}
	return info
}

func (r *replay) relationReport(model *charmtest.Model, rel *charmtest.Relation, broken bool) relationReport {
	out := relationReport{
		ID:        rel.Id(),
		RemoteApp: rel.RemoteApp(),
		Broken:    broken,
		Local:     rel.LocalData(),
		Received:  r.received[rel.Id()],
	}
	for _, kind := range []secrets.Kind{secrets.AuthKind, secrets.JWTKind} {
		label := secrets.IntegrationLabel(rel.Id(), kind)
		if secret := model.SecretStore().Lookup(label); secret != nil {
			out.Secrets = append(out.Secrets, label)
		}
	}
	return out
}

type report struct {
	Unit      string                 `yaml:"unit" json:"unit"`
	Leader    bool                   `yaml:"leader" json:"leader"`
	Role      string                 `yaml:"role" json:"role"`
	Status    statusReport           `yaml:"status" json:"status"`
	Config    map[string]interface{} `yaml:"config,omitempty" json:"config,omitempty"`
	Events    []string               `yaml:"events,omitempty" json:"events,omitempty"`
	Deferred  []string               `yaml:"deferred,omitempty" json:"deferred,omitempty"`
	Relations []relationReport       `yaml:"relations,omitempty" json:"relations,omitempty"`
}

type statusReport struct {
	Status  status.Status `yaml:"current" json:"current"`
	Message string        `yaml:"message,omitempty" json:"message,omitempty"`
}

type relationReport struct {
	ID        int               `yaml:"id" json:"id"`
	RemoteApp string            `yaml:"remote-app" json:"remote-app"`
	Broken    bool              `yaml:"broken,omitempty" json:"broken,omitempty"`
	Local     map[string]string `yaml:"local-data,omitempty" json:"local-data,omitempty"`
	Secrets   []string          `yaml:"secrets,omitempty" json:"secrets,omitempty"`
	Received  interface{}       `yaml:"received,omitempty" json:"received,omitempty"`
}

var statusColor = map[status.Status]*ansiterm.Context{
	status.Active:      ansiterm.Foreground(ansiterm.Green),
	status.Waiting:     ansiterm.Foreground(ansiterm.Yellow),
	status.Maintenance: ansiterm.Foreground(ansiterm.Yellow),
	status.Blocked:     ansiterm.Foreground(ansiterm.BrightRed),
	status.Error:       ansiterm.Foreground(ansiterm.BrightRed),
}

// formatReportTabular writes a replay report as tables.
func formatReportTabular(w io.Writer, value interface{}) error {
	rep, ok := value.(*report)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", rep, value)
	}
	tw := ansiterm.NewTabWriter(w, 0, 1, 1, ' ', 0)

	fmt.Fprintln(tw, "Unit\tRole\tLeader\tStatus\tMessage")
	fmt.Fprintf(tw, "%s\t%s\t%t\t", rep.Unit, rep.Role, rep.Leader)
	if ctx, ok := statusColor[rep.Status.Status]; ok {
		ctx.Fprintf(tw, "%s", rep.Status.Status)
	} else {
		fmt.Fprintf(tw, "%s", rep.Status.Status)
	}
	fmt.Fprintf(tw, "\t%s\n", rep.Status.Message)

	if len(rep.Config) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Option\tValue")
		options := make([]string, 0, len(rep.Config))
		for name := range rep.Config {
			options = append(options, name)
		}
		sort.Strings(options)
		for _, name := range options {
			fmt.Fprintf(tw, "%s\t%v\n", name, rep.Config[name])
		}
	}

	if len(rep.Relations) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Integration\tRemote\tKey\tValue")
		for _, rel := range rep.Relations {
			name := fmt.Sprintf("%d", rel.ID)
			if rel.Broken {
				name += " (broken)"
			}
			keys := make([]string, 0, len(rel.Local))
			for k := range rel.Local {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			if len(keys) == 0 {
				fmt.Fprintf(tw, "%s\t%s\t\t\n", name, rel.RemoteApp)
			}
			for i, k := range keys {
				if i == 0 {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, rel.RemoteApp, k, rel.Local[k])
					continue
				}
				fmt.Fprintf(tw, "\t\t%s\t%s\n", k, rel.Local[k])
			}
		}
	}

	if len(rep.Events) > 0 || len(rep.Deferred) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Event\tState")
		for _, kind := range rep.Events {
			fmt.Fprintf(tw, "%s\temitted\n", kind)
		}
		for _, kind := range rep.Deferred {
			fmt.Fprintf(tw, "%s\tdeferred\n", kind)
		}
	}
	return errors.Trace(tw.Flush())
}
