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
	"strconv"
	"strings"
)

// Valid direction operators.
var directions = map[string]bool{
	"->": true,
	"<>": true,
}

func validateDirection(direction string) bool {
	return directions[direction]
}

// Valid rule actions.
var actions = map[string]bool{
	"alert":      true,
	"log":        true,
	"pass":       true,
	"activate":   true,
	"dynamic":    true,
	"drop":       true,
	"reject":     true,
	"rejectsrc":  true,
	"rejectdst":  true,
	"rejectboth": true,
	"sdrop":      true,
}

func validateAction(action string) bool {
	return actions[action]
}

// Remove leading and trailing quotes from a string.
func trimQuotes(buf string) string {
	buflen := len(buf)
	if buflen < 2 {
		return buf
	}
	if buf[0] == '"' && buf[buflen-1] == '"' {
		return buf[1 : buflen-1]
	}
	return buf
}

// White space as recognized by isSpace.
const spaces = " \t\r\n"

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// JoinContinuations joins lines ending in a backslash with the line that
// follows by removing the backslash and the newline.
func JoinContinuations(buf string) string {
	buf = strings.Replace(buf, "\\\r\n", "", -1)
	return strings.Replace(buf, "\\\n", "", -1)
}

// stripComments removes leading white space and any number of comment
// markers. The removed prefix is returned along with the remainder.
func stripComments(buf string) (string, string, bool) {
	enabled := true
	rem := strings.TrimLeft(buf, spaces)
	for strings.HasPrefix(rem, "#") {
		enabled = false
		rem = strings.TrimLeft(rem[1:], spaces)
	}
	return buf[:len(buf)-len(rem)], rem, enabled
}

// scanner tracks the quote and escape state while walking a rule one byte
// at a time.
type scanner struct {
	quoted  bool
	escaped bool
}

// next consumes c and reports whether it is outside of quotes and not
// escaped, in which case it may be a delimiter.
func (s *scanner) next(c byte) bool {
	if s.escaped {
		s.escaped = false
		return false
	}
	switch c {
	case '\\':
		s.escaped = true
		return false
	case '"':
		s.quoted = !s.quoted
		return false
	}
	return !s.quoted
}

// indexUnquoted returns the index of the first c in buf not inside quotes or
// escaped, or -1.
func indexUnquoted(buf string, c byte) int {
	var s scanner
	for i := 0; i < len(buf); i++ {
		if s.next(buf[i]) && buf[i] == c {
			return i
		}
	}
	return -1
}

// splitOptions splits the option list, everything after the opening
// parenthesis, into trimmed option strings. The list ends at a closing
// parenthesis found between options.
//
// This is a single pass over the buffer. Running out of input in the middle
// of an option is an UnterminatedOptionError, running out between options
// is ErrIncomplete.
func splitOptions(buf string) ([]string, error) {
	options := []string{}
	var s scanner

	// Start of the current option, -1 while between options.
	start := -1

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if start < 0 {
			if isSpace(c) || c == ';' {
				continue
			}
			if c == ')' {
				return options, nil
			}
			start = i
		}
		if s.next(c) && c == ';' {
			options = append(options, strings.TrimSpace(buf[start:i]))
			start = -1
		}
	}

	if start > -1 {
		return nil, &UnterminatedOptionError{
			Option: strings.TrimSpace(buf[start:]),
		}
	}
	return nil, ErrIncomplete
}

// parseOption splits an option string into name and value on the first
// colon.
func parseOption(buf string) Option {
	colon := indexUnquoted(buf, ':')
	if colon < 0 {
		return Option{Name: buf, raw: buf}
	}
	return Option{
		Name:     strings.TrimSpace(buf[:colon]),
		Value:    buf[colon+1:],
		HasValue: true,
		raw:      buf,
	}
}

// validateOption checks the options that must have an integer value.
func validateOption(option Option) error {
	switch option.Name {
	case "sid", "gid", "rev":
		value := strings.TrimSpace(option.Value)
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return &OptionValueError{
				Name:  option.Name,
				Value: option.Value,
				Err:   err,
			}
		}
	}
	return nil
}

// parseHeader splits the header into its fields. A full header has 7
// fields. Decoder rules have just the action, optionally followed by a
// protocol.
func parseHeader(header string) (Header, error) {
	fields := strings.Fields(header)

	if len(fields) == 0 {
		return Header{}, &HeaderError{Header: header, Reason: "no action"}
	}
	if !validateAction(fields[0]) {
		return Header{}, &HeaderError{
			Header: header,
			Reason: fmt.Sprintf("invalid action: %s", fields[0]),
		}
	}

	switch len(fields) {
	case 1:
		return Header{Action: fields[0]}, nil
	case 2:
		return Header{Action: fields[0], Protocol: fields[1]}, nil
	case 7:
		if !validateDirection(fields[4]) {
			return Header{}, &HeaderError{
				Header: header,
				Reason: fmt.Sprintf("invalid direction: %s", fields[4]),
			}
		}
		return Header{
			Action:          fields[0],
			Protocol:        fields[1],
			Source:          fields[2],
			SourcePort:      fields[3],
			Direction:       fields[4],
			Destination:     fields[5],
			DestinationPort: fields[6],
		}, nil
	}

	return Header{}, &HeaderError{
		Header: header,
		Reason: fmt.Sprintf("expected 7 fields, got %d", len(fields)),
	}
}

// Parse an IDS rule from the provided string buffer.
func Parse(buf string) (*Rule, error) {
	return ParseGroup(buf, "")
}

// ParseGroup parses an IDS rule, tagging it with the group (usually the
// filename) it came from.
func ParseGroup(buf string, group string) (*Rule, error) {
	buf = JoinContinuations(buf)

	prefix, rem, enabled := stripComments(buf)

	open := indexUnquoted(rem, '(')
	if open < 0 {
		return nil, &HeaderError{
			Header: strings.TrimSpace(rem),
			Reason: "no option list",
		}
	}

	header := strings.TrimSpace(rem[:open])
	fields, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	optionStrings, err := splitOptions(rem[open+1:])
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(optionStrings))
	for _, optionString := range optionStrings {
		option := parseOption(optionString)
		if err := validateOption(option); err != nil {
			return nil, err
		}
		options = append(options, option)
	}

	return &Rule{
		enabled: enabled,
		prefix:  prefix,
		raw:     rem,
		header:  header,
		fields:  fields,
		options: options,
		group:   group,
	}, nil
}
