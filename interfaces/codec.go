// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package interfaces

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/juju/errors"
)

// field describes how one struct field maps to a databag key.
type field struct {
	index     int
	key       string
	omitEmpty bool
}

func structFields(t reflect.Type) ([]field, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.NotValidf("integration data of kind %s", t.Kind())
	}
	var fields []field
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		omitEmpty := false
		for _, opt := range strings.Split(opts, ",") {
			if opt == "omitempty" {
				omitEmpty = true
			}
		}
		fields = append(fields, field{
			index:     i,
			key:       name,
			omitEmpty: omitEmpty,
		})
	}
	return fields, nil
}

// Encode serializes a struct into databag form: one key per exported
// field, named after its json tag, holding the JSON encoding of the field
// value. Fields tagged omitempty are left out when they hold their zero
// value.
func Encode(data interface{}) (map[string]string, error) {
	v := reflect.Indirect(reflect.ValueOf(data))
	fields, err := structFields(v.Type())
	if err != nil {
		return nil, errors.Trace(err)
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		fv := v.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		raw, err := json.Marshal(fv.Interface())
		if err != nil {
			return nil, errors.Annotatef(err, "encoding %q", f.key)
		}
		out[f.key] = string(raw)
	}
	return out, nil
}

// Decode deserializes databag content written by Encode into the struct
// pointed to by out. Keys missing from the databag leave the matching
// field untouched; unknown keys are ignored.
func Decode(data map[string]string, out interface{}) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.NotValidf("decoding into %T", out)
	}
	v = v.Elem()
	fields, err := structFields(v.Type())
	if err != nil {
		return errors.Trace(err)
	}
	for _, f := range fields {
		raw, ok := data[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), v.Field(f.index).Addr().Interface()); err != nil {
			return errors.Annotatef(err, "decoding %q", f.key)
		}
	}
	return nil
}
