// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package interfaces_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/charmed-hpc/hpc-libs/interfaces"
)

type codecSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&codecSuite{})

type sample struct {
	Key        string                 `json:"key"`
	KeyID      string                 `json:"key_id,omitempty"`
	Hosts      []string               `json:"hosts"`
	Options    map[string]interface{} `json:"options,omitempty"`
	Count      int                    `json:"count"`
	Ignored    string                 `json:"-"`
	unexported string
	Untagged   bool
}

func (s *codecSuite) TestEncode(c *gc.C) {
	data, err := interfaces.Encode(sample{
		Key:        "secret",
		Hosts:      []string{"juju-988225-0"},
		Count:      2,
		Ignored:    "x",
		unexported: "y",
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(data, jc.DeepEquals, map[string]string{
		"key":      `"secret"`,
		"hosts":    `["juju-988225-0"]`,
		"count":    "2",
		"Untagged": "false",
	})
}

func (s *codecSuite) TestEncodePointer(c *gc.C) {
	data, err := interfaces.Encode(&sample{KeyID: "secret:1", Options: map[string]interface{}{"a": "b"}})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(data["key_id"], gc.Equals, `"secret:1"`)
	c.Assert(data["options"], gc.Equals, `{"a":"b"}`)
	c.Assert(data["hosts"], gc.Equals, "null")
}

func (s *codecSuite) TestEncodeNotStruct(c *gc.C) {
	_, err := interfaces.Encode("nope")
	c.Assert(err, gc.ErrorMatches, "integration data of kind string not valid")
}

func (s *codecSuite) TestDecode(c *gc.C) {
	out := sample{Key: "kept", Count: 7}
	err := interfaces.Decode(map[string]string{
		"hosts":   `["a","b"]`,
		"options": `{"cgroup":true}`,
		"unknown": `"ignored"`,
	}, &out)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(out.Key, gc.Equals, "kept")
	c.Assert(out.Count, gc.Equals, 7)
	c.Assert(out.Hosts, jc.DeepEquals, []string{"a", "b"})
	c.Assert(out.Options, jc.DeepEquals, map[string]interface{}{"cgroup": true})
}

func (s *codecSuite) TestDecodeInvalid(c *gc.C) {
	var out sample
	err := interfaces.Decode(map[string]string{"count": `"two"`}, &out)
	c.Assert(err, gc.ErrorMatches, `decoding "count": .*`)
}

func (s *codecSuite) TestDecodeNotPointer(c *gc.C) {
	err := interfaces.Decode(map[string]string{}, sample{})
	c.Assert(err, gc.ErrorMatches, `decoding into interfaces_test.sample not valid`)
}

func (s *codecSuite) TestRoundTrip(c *gc.C) {
	in := sample{Key: "k", Hosts: []string{"h"}, Count: 1, Untagged: true}
	data, err := interfaces.Encode(in)
	c.Assert(err, jc.ErrorIsNil)
	var out sample
	c.Assert(interfaces.Decode(data, &out), jc.ErrorIsNil)
	c.Assert(out, jc.DeepEquals, in)
}
