// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"io"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/juju/environschema.v1"
	"gopkg.in/yaml.v3"
)

// Option represents a single charm config option.
type Option struct {
	Type        string      `yaml:"type"`
	Description string      `yaml:"description,omitempty"`
	Default     interface{} `yaml:"default,omitempty"`
}

// Config represents the supported configuration options for a charm,
// as declared in its config.yaml file.
type Config struct {
	Options map[string]Option `yaml:"options"`
}

// ReadConfig reads a config.yaml file and returns its representation.
func ReadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}
	if config.Options == nil {
		config.Options = make(map[string]Option)
	}
	if _, err := config.Schema(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

var optionTypes = map[string]environschema.FieldType{
	"string":  environschema.Tstring,
	"secret":  environschema.Tstring,
	"int":     environschema.Tint,
	"boolean": environschema.Tbool,
}

// floatOption has no environschema type; Coerce checks it with
// schema.Float.
const floatOption = "float"

// Schema returns the environschema description of the options. Float
// options are left out.
func (c *Config) Schema() (environschema.Fields, error) {
	fields := make(environschema.Fields, len(c.Options))
	for name, opt := range c.Options {
		if opt.Type == floatOption {
			continue
		}
		t, ok := optionTypes[opt.Type]
		if !ok {
			return nil, errors.NotSupportedf("option %q of type %q", name, opt.Type)
		}
		fields[name] = environschema.Attr{
			Description: opt.Description,
			Type:        t,
			Secret:      opt.Type == "secret",
		}
	}
	return fields, nil
}

// Coerce validates attrs against the options, applying option defaults.
// Unknown options are rejected.
func (c *Config) Coerce(attrs map[string]interface{}) (map[string]interface{}, error) {
	configSchema, err := c.Schema()
	if err != nil {
		return nil, errors.Trace(err)
	}
	fields, _, err := configSchema.ValidationSchema()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defaults := make(schema.Defaults, len(c.Options))
	for name, opt := range c.Options {
		if opt.Type == floatOption {
			fields[name] = schema.Float()
		}
		if opt.Default == nil {
			defaults[name] = schema.Omit
			continue
		}
		defaults[name] = opt.Default
	}
	if attrs == nil {
		attrs = make(map[string]interface{})
	}
	coerced, err := schema.StrictFieldMap(fields, defaults).Coerce(attrs, nil)
	if err != nil {
		return nil, errors.Annotate(err, "invalid charm config")
	}
	return coerced.(map[string]interface{}), nil
}
