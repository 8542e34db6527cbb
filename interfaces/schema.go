// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package interfaces

import (
	"sort"

	"github.com/juju/collections/set"

	"github.com/charmed-hpc/hpc-libs/charm"
)

// Validator checks the raw, still JSON encoded, value of a databag key.
type Validator func(raw string) bool

// ReadinessSchema maps the keys a remote application must publish before
// an integration is ready to an optional validator for their values. A
// nil validator only requires the key to be present.
type ReadinessSchema map[string]Validator

// RequiredKeys returns the required keys, sorted.
func (s ReadinessSchema) RequiredKeys() []string {
	keys := set.NewStrings()
	for k := range s {
		keys.Add(k)
	}
	return keys.SortedValues()
}

// Ready returns whether the databag satisfies the schema.
func (s ReadinessSchema) Ready(data charm.Databag) bool {
	_, ok := s.Missing(data)
	return ok
}

// Missing returns the keys that are absent from data or whose value
// fails validation, and whether there are none.
func (s ReadinessSchema) Missing(data charm.Databag) ([]string, bool) {
	var missing []string
	for key, validate := range s {
		raw, ok := data[key]
		if !ok || (validate != nil && !validate(raw)) {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing, len(missing) == 0
}

// NotEmptyString rejects an empty or null JSON string.
func NotEmptyString(raw string) bool {
	return raw != `""` && raw != "null" && raw != ""
}

// NotEmptyList rejects an empty or null JSON list.
func NotEmptyList(raw string) bool {
	return raw != "[]" && raw != "null" && raw != ""
}

// NotEmptyObject rejects an empty or null JSON object.
func NotEmptyObject(raw string) bool {
	return raw != "{}" && raw != "null" && raw != ""
}
