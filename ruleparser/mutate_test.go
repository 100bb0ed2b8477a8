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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noMsgRule = `alert ip any any -> any any (content:"uid=0|28|root|29|"; classtype:bad-unknown; sid:10000000; rev:1;)`

func TestAddOption(t *testing.T) {
	rule, err := ParseGroup(noMsgRule, "local.rules")
	require.Nil(t, err)

	err = rule.AddOption(NewOption("msg", `"This is a test description."`), 0)
	require.Nil(t, err)
	assert.Equal(t, "This is a test description.", rule.Msg())
	assert.Equal(t, "local.rules", rule.Group())
	assert.Equal(t, "msg", rule.Options()[0].Name)
	assert.Equal(t, `alert ip any any -> any any (msg:"This is a test description."; content:"uid=0|28|root|29|"; classtype:bad-unknown; sid:10000000; rev:1;)`, rule.String())

	// Append a flag.
	err = rule.AddOption(NewFlag("noalert"), len(rule.Options()))
	require.Nil(t, err)
	assert.True(t, strings.HasSuffix(rule.String(), "; rev:1; noalert;)"))

	// Duplicate names are allowed.
	err = rule.AddOption(NewOption("metadata", "created_at 2018_01_01"), 1)
	require.Nil(t, err)
	err = rule.AddOption(NewOption("metadata", "updated_at 2018_02_01"), 2)
	require.Nil(t, err)
	assert.Equal(t, []string{"created_at 2018_01_01", "updated_at 2018_02_01"}, rule.Metadata())
}

func TestAddOptionPosition(t *testing.T) {
	rule, err := Parse(noMsgRule)
	require.Nil(t, err)

	err = rule.AddOption(NewFlag("nocase"), 5)
	require.NotNil(t, err)
	positionError, ok := err.(*PositionError)
	require.True(t, ok)
	assert.Equal(t, 5, positionError.Position)
	assert.Equal(t, 4, positionError.Len)

	err = rule.AddOption(NewFlag("nocase"), -1)
	_, ok = err.(*PositionError)
	assert.True(t, ok)

	// The rule is unchanged.
	assert.Equal(t, noMsgRule, rule.String())
}

func TestAddOptionInvalid(t *testing.T) {
	rule, err := Parse(noMsgRule)
	require.Nil(t, err)

	err = rule.AddOption(NewOption("rev", "two"), 0)
	_, ok := err.(*OptionValueError)
	assert.True(t, ok)

	err = rule.AddOption(NewFlag(""), 0)
	assert.NotNil(t, err)

	assert.Equal(t, noMsgRule, rule.String())
}

func TestRemoveOption(t *testing.T) {
	rule, err := ParseGroup(`alert ip any any -> any any (msg:"TEST MESSAGE"; content:"uid=0|28|root|29|"; classtype:bad-unknown; sid:10000000; rev:1;)`, "local.rules")
	require.Nil(t, err)

	assert.True(t, rule.RemoveOption("msg"))
	assert.Equal(t, "", rule.Msg())
	msg, _ := rule.Get("msg")
	assert.Equal(t, "", msg)

	assert.True(t, rule.RemoveOption("classtype"))
	classtype, ok := rule.Get("classtype")
	assert.True(t, ok)
	assert.Nil(t, classtype)
	assert.Equal(t, "", rule.Classtype())
	assert.False(t, strings.Contains(rule.String(), "classtype"))
	assert.Equal(t, `alert ip any any -> any any (content:"uid=0|28|root|29|"; sid:10000000; rev:1;)`, rule.String())

	// Not there, not an error.
	assert.False(t, rule.RemoveOption("classtype"))
	assert.Equal(t, `alert ip any any -> any any (content:"uid=0|28|root|29|"; sid:10000000; rev:1;)`, rule.String())
}

func TestRemoveOptionFirstOnly(t *testing.T) {
	rule, err := Parse(fakeAvRule)
	require.Nil(t, err)

	assert.True(t, rule.RemoveOption("flowbits"))
	assert.Equal(t, []string{"unset,otherbit"}, rule.Flowbits())
}

func TestRemoveOptionKeepsFormatting(t *testing.T) {
	rule, err := Parse(ciarmyRule)
	require.Nil(t, err)

	assert.True(t, rule.RemoveOption("classtype"))
	expected := strings.Replace(ciarmyRule, " classtype:misc-attack;", "", 1)
	assert.Equal(t, expected, rule.String())
	assert.Contains(t, rule.String(), "threshold: type limit, track by_src, seconds 3600, count 1;")
}

func TestMutateDisabledRule(t *testing.T) {
	rule, err := Parse("## " + noMsgRule)
	require.Nil(t, err)

	err = rule.AddOption(NewOption("msg", `"Disabled"`), 0)
	require.Nil(t, err)
	assert.False(t, rule.Enabled())
	assert.True(t, strings.HasPrefix(rule.String(), `## alert ip any any -> any any (msg:"Disabled"; content:`))

	rule.SetEnabled(true)
	assert.True(t, strings.HasPrefix(rule.String(), `alert ip any any -> any any (msg:"Disabled"; content:`))
}

func TestMutateDecoderRule(t *testing.T) {
	rule, err := Parse(decoderRule)
	require.Nil(t, err)

	assert.True(t, rule.RemoveOption("metadata"))
	assert.Equal(t, `alert (msg:"DECODE_NOT_IPV4_DGRAM"; sid:1; gid:116; rev:1; classtype:protocol-command-decode;)`, rule.String())
}

func TestRemoveAllOptions(t *testing.T) {
	rule, err := Parse(`alert tcp any any -> any any (msg:"x"; sid:1;)`)
	require.Nil(t, err)
	rule.RemoveOption("msg")
	rule.RemoveOption("sid")
	assert.Equal(t, "", rule.RebuildOptions())
	assert.Equal(t, "alert tcp any any -> any any ()", rule.String())

	// And it still parses.
	_, err = Parse(rule.String())
	assert.Nil(t, err)
}

func TestClone(t *testing.T) {
	raw := "## " + noMsgRule
	rule, err := Parse(raw)
	require.Nil(t, err)

	clone := rule.Clone()
	clone.SetEnabled(true)
	require.Nil(t, clone.AddOption(NewOption("msg", `"cloned"`), 0))

	assert.False(t, rule.Enabled())
	assert.Equal(t, "", rule.Msg())
	assert.Equal(t, raw, rule.String())
	assert.Equal(t, "cloned", clone.Msg())
	assert.True(t, clone.Enabled())
}
