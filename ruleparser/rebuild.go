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
)

// RebuildOptions returns the option list as text, without the enclosing
// parentheses. Options are separated by "; " and the last one is followed
// by a ";".
func (r *Rule) RebuildOptions() string {
	if len(r.options) == 0 {
		return ""
	}
	options := make([]string, 0, len(r.options))
	for _, option := range r.options {
		options = append(options, option.String())
	}
	return strings.Join(options, "; ") + ";"
}

// Rebuild returns the rule, without comment markers, from its header and
// current options.
func (r *Rule) Rebuild() string {
	return r.header + " (" + r.RebuildOptions() + ")"
}
