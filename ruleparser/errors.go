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
	"fmt"

	"github.com/pkg/errors"
)

// ErrIncomplete is returned when the option list is never closed.
var ErrIncomplete = errors.New("incomplete rule")

// HeaderError is returned when the rule header can't be split into its
// fields.
type HeaderError struct {
	Header string
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("malformed header %q: %s", e.Header, e.Reason)
}

// UnterminatedOptionError is returned when the end of the option list is
// reached while still inside an option, i.e. the last option is missing its
// semicolon.
type UnterminatedOptionError struct {
	Option string
}

func (e *UnterminatedOptionError) Error() string {
	option := e.Option
	if len(option) > 64 {
		option = option[:64] + "..."
	}
	return fmt.Sprintf("unterminated option: %s", option)
}

// OptionValueError is returned for an option that requires a numeric value
// (sid, gid, rev) but has something else.
type OptionValueError struct {
	Name  string
	Value string
	Err   error
}

func (e *OptionValueError) Error() string {
	return fmt.Sprintf("failed to parse %s: %q", e.Name, e.Value)
}

// PositionError is returned by AddOption for a position outside of the
// option list.
type PositionError struct {
	Position int
	Len      int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("option position %d out of range [0, %d]",
		e.Position, e.Len)
}

// RuleParseError wraps a parse error with the location of the offending
// rule.
type RuleParseError struct {
	// Line number of the first physical line of the rule.
	Line  int
	Group string
	Text  string
	Err   error
}

func (e *RuleParseError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("%s:%d: %v", e.Group, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Cause returns the underlying parse error.
func (e *RuleParseError) Cause() error {
	return e.Err
}

// ParseErrors is the list of per-line errors from parsing many rules.
type ParseErrors []*RuleParseError

func (e ParseErrors) Error() string {
	switch len(e) {
	case 0:
		return "no errors"
	case 1:
		return e[0].Error()
	}
	return fmt.Sprintf("%d rules failed to parse, first: %v", len(e), e[0])
}
