// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"io"
	"sort"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"
)

const (
	ScopeGlobal    = "global"
	ScopeContainer = "container"
)

// RelationRole defines the role of an endpoint.
type RelationRole string

const (
	RoleProvider RelationRole = "provider"
	RoleRequirer RelationRole = "requirer"
	RolePeer     RelationRole = "peer"
)

// Endpoint represents a single relation endpoint defined in the charm
// metadata.
type Endpoint struct {
	Name      string
	Role      RelationRole
	Interface string
	Optional  bool
	Limit     int
	Scope     string
}

// Meta represents the part of a charm's metadata.yaml (or charmcraft.yaml)
// that integration libraries care about.
type Meta struct {
	Name        string
	Summary     string
	Description string
	Provides    map[string]Endpoint
	Requires    map[string]Endpoint
	Peers       map[string]Endpoint
	Subordinate bool
}

// Endpoint returns the endpoint with the given name, whatever its role.
func (m *Meta) Endpoint(name string) (Endpoint, bool) {
	for _, eps := range []map[string]Endpoint{m.Provides, m.Requires, m.Peers} {
		if ep, ok := eps[name]; ok {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// EndpointsByInterface returns the names of the endpoints implementing the
// given interface, sorted.
func (m *Meta) EndpointsByInterface(iface string) []string {
	var result []string
	for _, eps := range []map[string]Endpoint{m.Provides, m.Requires, m.Peers} {
		for name, ep := range eps {
			if ep.Interface == iface {
				result = append(result, name)
			}
		}
	}
	sort.Strings(result)
	return result
}

// ReadMeta reads the content of a metadata.yaml file and returns
// its representation.
func ReadMeta(r io.Reader) (*Meta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "metadata")
	}
	v, err := charmSchema.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotate(err, "metadata")
	}
	m := v.(map[string]interface{})
	meta := &Meta{
		Name:        m["name"].(string),
		Summary:     m["summary"].(string),
		Description: m["description"].(string),
		Provides:    parseEndpoints(m["provides"], RoleProvider),
		Requires:    parseEndpoints(m["requires"], RoleRequirer),
		Peers:       parseEndpoints(m["peers"], RolePeer),
	}
	if err := meta.checkNames(); err != nil {
		return nil, errors.Trace(err)
	}
	// A subordinate attaches to its principal through a container
	// scoped requires endpoint.
	if subordinate, ok := m["subordinate"].(bool); ok && subordinate {
		valid := false
		for _, ep := range meta.Requires {
			if ep.Scope == ScopeContainer {
				valid = true
				break
			}
		}
		if !valid {
			return nil, errors.NotValidf("subordinate charm %q without requires relation with container scope", meta.Name)
		}
		meta.Subordinate = true
	}
	return meta, nil
}

func (m *Meta) checkNames() error {
	seen := make(map[string]RelationRole)
	for _, eps := range []map[string]Endpoint{m.Provides, m.Requires, m.Peers} {
		for name, ep := range eps {
			if role, ok := seen[name]; ok {
				return errors.NotValidf("endpoint %q declared as both %s and %s", name, role, ep.Role)
			}
			seen[name] = ep.Role
		}
	}
	return nil
}

func parseEndpoints(relations interface{}, role RelationRole) map[string]Endpoint {
	if relations == nil {
		return nil
	}
	result := make(map[string]Endpoint)
	for name, rel := range relations.(map[string]interface{}) {
		relMap := rel.(map[string]interface{})
		ep := Endpoint{
			Name:      name,
			Role:      role,
			Interface: relMap["interface"].(string),
			Optional:  relMap["optional"].(bool),
		}
		if scope := relMap["scope"]; scope != nil {
			ep.Scope = scope.(string)
		}
		if relMap["limit"] != nil {
			ep.Limit = int(relMap["limit"].(int64))
		}
		result[name] = ep
	}
	return result
}

// ifaceExpander returns a checker expanding the endpoint shorthand where
// only the interface name is given.
//
// Supports the following variants:
//
//	requires:
//	  slurmd: slurmd
//	  slurmdbd:
//	    interface: slurmdbd
//
//	requires:
//	  slurmdbd:
//	    interface: slurmdbd
//	    limit: 1
//	    optional: true
//
// Both forms coerce to the long form.
func ifaceExpander(limit interface{}) schema.Checker {
	return ifaceExpC{limit}
}

type ifaceExpC struct {
	limit interface{}
}

var (
	stringC = schema.String()
	mapC    = schema.StringMap(schema.Any())
)

func (c ifaceExpC) Coerce(v interface{}, path []string) (interface{}, error) {
	s, err := stringC.Coerce(v, path)
	if err == nil {
		return ifaceSchema.Coerce(map[string]interface{}{
			"interface": s,
			"limit":     c.limit,
			"optional":  false,
			"scope":     ScopeGlobal,
		}, path)
	}

	// limit, optional and scope default per endpoint role.
	v, err = mapC.Coerce(v, path)
	if err != nil {
		return nil, err
	}
	m := v.(map[string]interface{})
	if _, ok := m["limit"]; !ok {
		m["limit"] = c.limit
	}
	if _, ok := m["optional"]; !ok {
		m["optional"] = false
	}
	if _, ok := m["scope"]; !ok {
		m["scope"] = ScopeGlobal
	}
	return ifaceSchema.Coerce(m, path)
}

var ifaceSchema = schema.FieldMap(
	schema.Fields{
		"interface": schema.String(),
		"limit":     schema.OneOf(schema.Const(nil), schema.Int()),
		"scope":     schema.OneOf(schema.Const(ScopeGlobal), schema.Const(ScopeContainer)),
		"optional":  schema.Bool(),
	},
	schema.Defaults{
		"scope": schema.Omit,
	},
)

var charmSchema = schema.FieldMap(
	schema.Fields{
		"name":        schema.String(),
		"summary":     schema.String(),
		"description": schema.String(),
		"peers":       schema.StringMap(ifaceExpander(int64(1))),
		"provides":    schema.StringMap(ifaceExpander(nil)),
		"requires":    schema.StringMap(ifaceExpander(int64(1))),
		"subordinate": schema.Bool(),
	},
	schema.Defaults{
		"summary":     "",
		"description": "",
		"provides":    schema.Omit,
		"requires":    schema.Omit,
		"peers":       schema.Omit,
		"subordinate": schema.Omit,
	},
)
