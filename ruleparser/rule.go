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
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultGid is the generator ID of a rule without a gid option.
const DefaultGid = 1

// Option is a single rule option, for example msg:"Some message". The value
// is kept exactly as it appears in the rule, quotes and escapes included.
type Option struct {
	Name     string
	Value    string
	HasValue bool

	// The option text as it was parsed, re-emitted as is.
	raw string
}

// NewOption returns an option with a value.
func NewOption(name string, value string) Option {
	return Option{Name: name, Value: value, HasValue: true}
}

// NewFlag returns an option without a value, such as nocase.
func NewFlag(name string) Option {
	return Option{Name: name}
}

func (o Option) String() string {
	if o.raw != "" {
		return o.raw
	}
	if o.HasValue {
		return o.Name + ":" + o.Value
	}
	return o.Name
}

func (o Option) MarshalJSON() ([]byte, error) {
	var value interface{}
	if o.HasValue {
		value = o.Value
	}
	return json.Marshal(map[string]interface{}{
		"name":  o.Name,
		"value": value,
	})
}

// Header holds the fields of the rule header. Decoder rules only have an
// action so everything else is empty.
type Header struct {
	Action          string
	Protocol        string
	Source          string
	SourcePort      string
	Direction       string
	Destination     string
	DestinationPort string
}

// ID identifies a rule by generator and signature ID.
type ID struct {
	Gid uint64
	Sid uint64
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.Gid, id.Sid)
}

// Rule is a parsed IDS rule. It is created by Parse and then changed in
// place with AddOption, RemoveOption and SetEnabled.
type Rule struct {
	enabled bool

	// Leading white space and comment markers removed by the parser. Only
	// used until the enabled state is changed.
	prefix string

	// The rule without comment markers. Replaced with a rebuilt rule after
	// each change to the options.
	raw string

	// The header as text, everything before the option list.
	header string
	fields Header

	// Options in rule order. Names are not unique.
	options []Option

	group string
}

func (r *Rule) Enabled() bool {
	return r.enabled
}

func (r *Rule) Action() string {
	return r.fields.Action
}

// Header returns the parsed header fields.
func (r *Rule) Header() Header {
	return r.fields
}

// HeaderString returns the header text as found in the rule.
func (r *Rule) HeaderString() string {
	return r.header
}

func (r *Rule) Protocol() string {
	return r.fields.Protocol
}

func (r *Rule) Source() string {
	return r.fields.Source
}

func (r *Rule) SourcePort() string {
	return r.fields.SourcePort
}

// Direction returns the direction operator, or an empty string for decoder
// rules.
func (r *Rule) Direction() string {
	return r.fields.Direction
}

func (r *Rule) Destination() string {
	return r.fields.Destination
}

func (r *Rule) DestinationPort() string {
	return r.fields.DestinationPort
}

// Options returns a copy of the option list.
func (r *Rule) Options() []Option {
	options := make([]Option, len(r.options))
	copy(options, r.options)
	return options
}

// Group is the source the rule was loaded from, if provided to the parser.
func (r *Rule) Group() string {
	return r.group
}

// Raw returns the rule text without comment markers.
func (r *Rule) Raw() string {
	return r.raw
}

// Has reports whether the rule has at least one option with the given name.
func (r *Rule) Has(name string) bool {
	_, ok := r.find(name)
	return ok
}

func (r *Rule) find(name string) (Option, bool) {
	for _, option := range r.options {
		if option.Name == name {
			return option, true
		}
	}
	return Option{}, false
}

// Values returns the trimmed values of all options with the given name.
func (r *Rule) Values(name string) []string {
	values := []string{}
	for _, option := range r.options {
		if option.Name == name && option.HasValue {
			values = append(values, strings.TrimSpace(option.Value))
		}
	}
	return values
}

func (r *Rule) uintOption(name string) (uint64, bool) {
	option, ok := r.find(name)
	if !ok {
		return 0, false
	}
	// Already validated by the parser or AddOption.
	value, err := strconv.ParseUint(strings.TrimSpace(option.Value), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Sid returns the signature ID, 0 if the rule has none.
func (r *Rule) Sid() uint64 {
	sid, _ := r.LookupSid()
	return sid
}

// LookupSid returns the signature ID and whether the rule has one.
func (r *Rule) LookupSid() (uint64, bool) {
	return r.uintOption("sid")
}

// Gid returns the generator ID, DefaultGid if the rule has none.
func (r *Rule) Gid() uint64 {
	if gid, ok := r.uintOption("gid"); ok {
		return gid
	}
	return DefaultGid
}

// Rev returns the revision, 0 if the rule has none.
func (r *Rule) Rev() uint64 {
	rev, _ := r.LookupRev()
	return rev
}

func (r *Rule) LookupRev() (uint64, bool) {
	return r.uintOption("rev")
}

func (r *Rule) ID() ID {
	return ID{Gid: r.Gid(), Sid: r.Sid()}
}

// IDString returns the rule ID in the form [gid:sid:rev].
func (r *Rule) IDString() string {
	return fmt.Sprintf("[%d:%d:%d]", r.Gid(), r.Sid(), r.Rev())
}

// Brief returns a short description of the rule, its message followed by
// its ID.
func (r *Rule) Brief() string {
	return fmt.Sprintf("%s %s", r.Msg(), r.IDString())
}

// Msg returns the message with the enclosing quotes removed. Escapes are
// left as is. An empty string is returned if the rule has no message.
func (r *Rule) Msg() string {
	option, ok := r.find("msg")
	if !ok {
		return ""
	}
	return trimQuotes(strings.TrimSpace(option.Value))
}

// Classtype returns the value of the first classtype option, or an empty
// string if there is none.
func (r *Rule) Classtype() string {
	classtype, _ := r.LookupClasstype()
	return classtype
}

// LookupClasstype returns the value of the first classtype option and
// whether the rule has one.
func (r *Rule) LookupClasstype() (string, bool) {
	option, ok := r.find("classtype")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(option.Value), true
}

// Metadata returns the entries of all metadata options, split on commas,
// in rule order.
func (r *Rule) Metadata() []string {
	metadata := []string{}
	for _, option := range r.options {
		if option.Name != "metadata" || !option.HasValue {
			continue
		}
		for _, entry := range strings.Split(option.Value, ",") {
			metadata = append(metadata, strings.TrimSpace(entry))
		}
	}
	return metadata
}

// Flowbits returns the value of each flowbits option, unsplit.
func (r *Rule) Flowbits() []string {
	return r.Values("flowbits")
}

func (r *Rule) References() []string {
	return r.Values("reference")
}

// String returns the rule as text, prefixed with a comment marker if
// disabled. An unchanged rule is returned exactly as it was parsed.
func (r *Rule) String() string {
	if r.prefix != "" {
		return r.prefix + r.raw
	}
	if r.enabled {
		return r.raw
	}
	return "# " + r.raw
}

// Fields accessible with Get. Absent values are returned as nil.
var accessors = map[string]func(r *Rule) interface{}{
	"enabled": func(r *Rule) interface{} { return r.Enabled() },
	"action":  func(r *Rule) interface{} { return r.Action() },
	"header":  func(r *Rule) interface{} { return r.HeaderString() },
	"protocol": func(r *Rule) interface{} {
		return orNil(r.Protocol())
	},
	"source": func(r *Rule) interface{} {
		return orNil(r.Source())
	},
	"source_port": func(r *Rule) interface{} {
		return orNil(r.SourcePort())
	},
	"direction": func(r *Rule) interface{} {
		return orNil(r.Direction())
	},
	"destination": func(r *Rule) interface{} {
		return orNil(r.Destination())
	},
	"destination_port": func(r *Rule) interface{} {
		return orNil(r.DestinationPort())
	},
	"options": func(r *Rule) interface{} { return r.Options() },
	"group": func(r *Rule) interface{} {
		return orNil(r.Group())
	},
	"raw": func(r *Rule) interface{} { return r.Raw() },
	"sid": func(r *Rule) interface{} {
		if sid, ok := r.LookupSid(); ok {
			return sid
		}
		return nil
	},
	"gid": func(r *Rule) interface{} { return r.Gid() },
	"rev": func(r *Rule) interface{} {
		if rev, ok := r.LookupRev(); ok {
			return rev
		}
		return nil
	},
	"msg": func(r *Rule) interface{} { return r.Msg() },
	"classtype": func(r *Rule) interface{} {
		if classtype, ok := r.LookupClasstype(); ok {
			return classtype
		}
		return nil
	},
	"metadata":   func(r *Rule) interface{} { return r.Metadata() },
	"flowbits":   func(r *Rule) interface{} { return r.Flowbits() },
	"references": func(r *Rule) interface{} { return r.References() },
}

func orNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// Keys returns the field names accepted by Get, sorted.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for key := range accessors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a rule field by name. The values are the same as returned by
// the named accessors. Absent fields are nil, matching the Lookup accessors
// reporting false, or the header accessors returning an empty string. The
// second return value is false for an unknown field name.
func (r *Rule) Get(key string) (interface{}, bool) {
	accessor, ok := accessors[key]
	if !ok {
		return nil, false
	}
	return accessor(r), true
}

func (r *Rule) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(accessors)+1)
	for key, accessor := range accessors {
		fields[key] = accessor(r)
	}
	fields["rule"] = r.String()
	return json.Marshal(fields)
}
