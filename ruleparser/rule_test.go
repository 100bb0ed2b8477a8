// The MIT License (MIT)
// Copyright (c) 2016 Jason Ish
//
// Permission is hereby granted, free of charge, to any person
// obtaining a copy of this software and associated documentation
// files (the "Software"), to deal in the Software without
// restriction, including without limitation the rights to use, copy,
// modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN
// ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package ruleparser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	rule, err := ParseGroup(fakeAvRule, "local.rules")
	require.Nil(t, err)

	named := map[string]interface{}{
		"enabled":          rule.Enabled(),
		"action":           rule.Action(),
		"header":           rule.HeaderString(),
		"protocol":         rule.Protocol(),
		"source":           rule.Source(),
		"source_port":      rule.SourcePort(),
		"direction":        rule.Direction(),
		"destination":      rule.Destination(),
		"destination_port": rule.DestinationPort(),
		"options":          rule.Options(),
		"group":            rule.Group(),
		"raw":              rule.Raw(),
		"sid":              rule.Sid(),
		"gid":              rule.Gid(),
		"rev":              rule.Rev(),
		"msg":              rule.Msg(),
		"classtype":        rule.Classtype(),
		"metadata":         rule.Metadata(),
		"flowbits":         rule.Flowbits(),
		"references":       rule.References(),
	}
	assert.Equal(t, len(named), len(Keys()))

	for _, key := range Keys() {
		value, ok := rule.Get(key)
		assert.True(t, ok, key)
		assert.Equal(t, named[key], value, key)
	}

	_, ok := rule.Get("no-such-field")
	assert.False(t, ok)
}

func TestGetAbsent(t *testing.T) {
	rule, err := Parse(`alert (msg:"decoder";)`)
	require.Nil(t, err)

	for _, key := range []string{"protocol", "source", "source_port",
		"direction", "destination", "destination_port", "group", "sid",
		"rev", "classtype"} {
		value, ok := rule.Get(key)
		assert.True(t, ok, key)
		assert.Nil(t, value, key)
	}

	_, ok := rule.LookupSid()
	assert.False(t, ok)
	_, ok = rule.LookupRev()
	assert.False(t, ok)
	_, ok = rule.LookupClasstype()
	assert.False(t, ok)

	gid, _ := rule.Get("gid")
	assert.Equal(t, uint64(DefaultGid), gid)
	metadata, _ := rule.Get("metadata")
	assert.Equal(t, []string{}, metadata)
}

func TestLookupMatchesGet(t *testing.T) {
	rule, err := Parse(`alert (msg:"decoder"; classtype:protocol-command-decode; sid:7; rev:2;)`)
	require.Nil(t, err)

	sid, ok := rule.LookupSid()
	require.True(t, ok)
	value, _ := rule.Get("sid")
	assert.Equal(t, sid, value)
	assert.Equal(t, rule.Sid(), value)

	rev, ok := rule.LookupRev()
	require.True(t, ok)
	value, _ = rule.Get("rev")
	assert.Equal(t, rev, value)

	classtype, ok := rule.LookupClasstype()
	require.True(t, ok)
	value, _ = rule.Get("classtype")
	assert.Equal(t, classtype, value)
	assert.Equal(t, "protocol-command-decode", value)

	rule.RemoveOption("classtype")
	_, ok = rule.LookupClasstype()
	assert.False(t, ok)
	value, _ = rule.Get("classtype")
	assert.Nil(t, value)
}

func TestOptionJSON(t *testing.T) {
	buf, err := json.Marshal(NewFlag("nocase"))
	require.Nil(t, err)
	assert.JSONEq(t, `{"name": "nocase", "value": null}`, string(buf))

	buf, err = json.Marshal(NewOption("msg", `"A message"`))
	require.Nil(t, err)
	assert.JSONEq(t, `{"name": "msg", "value": "\"A message\""}`, string(buf))
}

func TestRuleJSON(t *testing.T) {
	rule, err := ParseGroup("# "+decoderRule, "decoder-events.rules")
	require.Nil(t, err)

	buf, err := json.Marshal(rule)
	require.Nil(t, err)

	var decoded map[string]interface{}
	require.Nil(t, json.Unmarshal(buf, &decoded))
	assert.Equal(t, false, decoded["enabled"])
	assert.Equal(t, "DECODE_NOT_IPV4_DGRAM", decoded["msg"])
	assert.Equal(t, float64(116), decoded["gid"])
	assert.Equal(t, "decoder-events.rules", decoded["group"])
	assert.Nil(t, decoded["direction"])
	assert.Equal(t, "# "+decoderRule, decoded["rule"])
	assert.Equal(t, 6, len(decoded["options"].([]interface{})))
}

func TestBrief(t *testing.T) {
	rule, err := Parse(fakeAvRule)
	require.Nil(t, err)
	assert.Equal(t, "ET CURRENT_EVENTS Request to .in FakeAV Campaign June 19 2012 exe or zip [1:2014929:1]", rule.Brief())
	assert.Equal(t, "1:2014929", rule.ID().String())
}
