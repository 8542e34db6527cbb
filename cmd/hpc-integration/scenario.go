// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"

	"github.com/charmed-hpc/hpc-libs/charm"
	"github.com/charmed-hpc/hpc-libs/hook"
)

// scenario describes a sequence of relation hooks delivered to a single
// unit running one side of an integration.
type scenario struct {
	Role           string
	Endpoint       string
	Unit           string
	Leader         bool
	IngressAddress string

	// Publish is the data the local application publishes once an
	// integration is created.
	Publish map[string]interface{}

	// Secrets are secrets shared with the local application, keyed by
	// the name relation data refers to them with, eg. "${auth}".
	Secrets map[string]string

	// Config describes the charm config options, as in config.yaml, and
	// ConfigValues the values set by the operator.
	Config       *charm.Config
	ConfigValues map[string]interface{}

	Relations []relationSpec
	Hooks     []hookSpec
}

type relationSpec struct {
	RemoteApp string
	Units     []string
	Data      map[string]interface{}
}

type hookSpec struct {
	Kind      hook.Kind
	Relation  int
	Departing string

	// Data, when set, replaces the remote application databag before the
	// hook runs.
	Data map[string]interface{}
}

var relationSchema = schema.FieldMap(
	schema.Fields{
		"remote-app": schema.String(),
		"units":      schema.List(schema.String()),
		"data":       schema.StringMap(schema.Any()),
	},
	schema.Defaults{
		"units": schema.Omit,
		"data":  schema.Omit,
	},
)

var hookSchema = schema.FieldMap(
	schema.Fields{
		"kind":      schema.OneOf(relationHookKinds()...),
		"relation":  schema.ForceInt(),
		"departing": schema.String(),
		"data":      schema.StringMap(schema.Any()),
	},
	schema.Defaults{
		"relation":  0,
		"departing": "",
		"data":      schema.Omit,
	},
)

var scenarioSchema = schema.FieldMap(
	schema.Fields{
		"role":            schema.String(),
		"endpoint":        schema.String(),
		"unit":            schema.String(),
		"leader":          schema.Bool(),
		"ingress-address": schema.String(),
		"publish":         schema.StringMap(schema.Any()),
		"secrets":         schema.StringMap(schema.String()),
		"options":         schema.StringMap(schema.Any()),
		"config":          schema.StringMap(schema.Any()),
		"relations":       schema.List(relationSchema),
		"hooks":           schema.List(hookSchema),
	},
	schema.Defaults{
		"endpoint":        "",
		"leader":          false,
		"ingress-address": "",
		"publish":         schema.Omit,
		"secrets":         schema.Omit,
		"options":         schema.Omit,
		"config":          schema.Omit,
		"relations":       schema.Omit,
		"hooks":           schema.Omit,
	},
)

func relationHookKinds() []schema.Checker {
	kinds := []hook.Kind{
		hook.RelationCreated,
		hook.RelationJoined,
		hook.RelationChanged,
		hook.RelationDeparted,
		hook.RelationBroken,
	}
	checkers := make([]schema.Checker, len(kinds))
	for i, kind := range kinds {
		checkers[i] = schema.Const(string(kind))
	}
	return checkers
}

// parseScenario decodes and validates a yaml scenario.
func parseScenario(data []byte) (*scenario, error) {
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "scenario")
	}
	v, err := scenarioSchema.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotate(err, "scenario")
	}
	m := v.(map[string]interface{})
	sc := &scenario{
		Role:           m["role"].(string),
		Endpoint:       m["endpoint"].(string),
		Unit:           m["unit"].(string),
		Leader:         m["leader"].(bool),
		IngressAddress: m["ingress-address"].(string),
	}
	r, ok := roles[sc.Role]
	if !ok {
		return nil, errors.NotValidf("role %q", sc.Role)
	}
	if sc.Endpoint == "" {
		sc.Endpoint = r.endpoint
	}
	if !names.IsValidUnit(sc.Unit) {
		return nil, errors.NotValidf("unit %q", sc.Unit)
	}
	if publish, ok := m["publish"].(map[string]interface{}); ok {
		if r.publishes == "" {
			return nil, errors.NotValidf("role %q publishing data", sc.Role)
		}
		sc.Publish = publish
	}
	if secrets, ok := m["secrets"].(map[string]interface{}); ok {
		sc.Secrets = make(map[string]string, len(secrets))
		for name, value := range secrets {
			sc.Secrets[name] = value.(string)
		}
	}
	if options, ok := m["options"].(map[string]interface{}); ok {
		config, err := readConfig(options)
		if err != nil {
			return nil, errors.Annotate(err, "scenario")
		}
		sc.Config = config
	}
	if values, ok := m["config"].(map[string]interface{}); ok {
		if sc.Config == nil {
			return nil, errors.NotValidf("config without options")
		}
		sc.ConfigValues = values
	}
	for _, item := range listOf(m["relations"]) {
		sc.Relations = append(sc.Relations, parseRelation(item))
	}
	for i, item := range listOf(m["hooks"]) {
		h := parseHook(item)
		if h.Relation < 0 || h.Relation >= len(sc.Relations) {
			return nil, errors.NotValidf("hook %d on relation %d", i, h.Relation)
		}
		if h.Departing != "" && !names.IsValidUnit(h.Departing) {
			return nil, errors.NotValidf("hook %d departing unit %q", i, h.Departing)
		}
		sc.Hooks = append(sc.Hooks, h)
	}
	return sc, nil
}

// readConfig reads the options section of a scenario the way a charm's
// config.yaml is read.
func readConfig(options map[string]interface{}) (*charm.Config, error) {
	data, err := yaml.Marshal(map[string]interface{}{"options": options})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return charm.ReadConfig(bytes.NewReader(data))
}

func listOf(v interface{}) []map[string]interface{} {
	items, _ := v.([]interface{})
	out := make([]map[string]interface{}, len(items))
	for i, item := range items {
		out[i] = item.(map[string]interface{})
	}
	return out
}

func parseRelation(m map[string]interface{}) relationSpec {
	rel := relationSpec{RemoteApp: m["remote-app"].(string)}
	if units, ok := m["units"].([]interface{}); ok {
		for _, u := range units {
			rel.Units = append(rel.Units, u.(string))
		}
	}
	rel.Data, _ = m["data"].(map[string]interface{})
	return rel
}

func parseHook(m map[string]interface{}) hookSpec {
	h := hookSpec{
		Kind:      hook.Kind(m["kind"].(string)),
		Relation:  m["relation"].(int),
		Departing: m["departing"].(string),
	}
	h.Data, _ = m["data"].(map[string]interface{})
	return h
}

// encodeData renders scenario relation data as a databag: every value is
// stored as json, after expanding ${name} references to shared secrets
// into their ids in string values.
func encodeData(data map[string]interface{}, secretIDs map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(data))
	for key, value := range data {
		if s, ok := value.(string); ok {
			var missing []string
			value = os.Expand(s, func(name string) string {
				id, ok := secretIDs[name]
				if !ok {
					missing = append(missing, name)
				}
				return id
			})
			if len(missing) > 0 {
				return nil, errors.NotFoundf("secret %q referenced by %q", missing[0], key)
			}
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Annotatef(err, "encoding %q", key)
		}
		out[key] = string(raw)
	}
	return out, nil
}

// decodePublish converts the publish section of a scenario into out.
func decodePublish(publish map[string]interface{}, out interface{}) error {
	if len(publish) == 0 {
		return nil
	}
	raw, err := json.Marshal(publish)
	if err != nil {
		return errors.Annotate(err, "encoding published data")
	}
	return errors.Annotate(json.Unmarshal(raw, out), "decoding published data")
}
