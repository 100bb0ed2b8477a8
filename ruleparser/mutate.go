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
	"github.com/pkg/errors"
)

// AddOption inserts an option at position, 0 being the start of the option
// list and len(options) the end. Options with the same name as an existing
// option are allowed.
func (r *Rule) AddOption(option Option, position int) error {
	if position < 0 || position > len(r.options) {
		return &PositionError{Position: position, Len: len(r.options)}
	}
	if option.Name == "" {
		return errors.New("option name required")
	}
	if err := validateOption(option); err != nil {
		return err
	}

	// Always render a new option from its name and value.
	option.raw = ""

	r.options = append(r.options, Option{})
	copy(r.options[position+1:], r.options[position:])
	r.options[position] = option
	r.raw = r.Rebuild()

	return nil
}

// RemoveOption removes the first option with the given name. False is
// returned if there was no such option.
func (r *Rule) RemoveOption(name string) bool {
	for i, option := range r.options {
		if option.Name == name {
			r.options = append(r.options[:i], r.options[i+1:]...)
			r.raw = r.Rebuild()
			return true
		}
	}
	return false
}

// Clone returns a copy of the rule that can be changed without changing
// the original.
func (r *Rule) Clone() *Rule {
	clone := *r
	clone.options = r.Options()
	return &clone
}

// SetEnabled enables or disables the rule. A rule disabled here is output
// with a single "# " comment prefix.
func (r *Rule) SetEnabled(enabled bool) {
	if r.enabled == enabled {
		return
	}
	r.enabled = enabled
	r.prefix = ""
}
