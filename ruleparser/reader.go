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
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// RuleReader parses rules one by one from an underlying reader.
type RuleReader struct {
	reader *bufio.Reader
	group  string
	lineno int
}

// NewRuleReader creates a new RuleReader reading from a reader. Each rule
// is tagged with group.
func NewRuleReader(reader io.Reader, group string) *RuleReader {
	return &RuleReader{
		reader: bufio.NewReader(reader),
		group:  group,
	}
}

func (r *RuleReader) readLine() (string, error) {
	bytes, err := r.reader.ReadBytes('\n')
	if err != nil && len(bytes) == 0 {
		return "", err
	}
	r.lineno++
	return strings.TrimRight(string(bytes), "\r\n"), nil
}

func (r *RuleReader) parse(buf string, lineno int) (*Rule, error) {
	rule, err := ParseGroup(buf, r.group)
	if err != nil {
		return nil, &RuleParseError{
			Line:  lineno,
			Group: r.group,
			Text:  buf,
			Err:   err,
		}
	}
	return rule, nil
}

// Next returns the next rule read from the reader, or io.EOF. Lines ending
// in a backslash are joined with the next line. Empty lines, and commented
// out lines that don't parse as a rule, are skipped. Any other line that
// doesn't parse is returned as a *RuleParseError, and reading can continue
// with the next call.
func (r *RuleReader) Next() (*Rule, error) {
	var buf strings.Builder
	start := 0

	for {
		line, err := r.readLine()
		if err != nil {
			if buf.Len() > 0 && err == io.EOF {
				// A continued line at the end of the input.
				return r.parse(buf.String(), start)
			}
			return nil, err
		}

		if buf.Len() == 0 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			start = r.lineno
		}

		if strings.HasSuffix(line, "\\") {
			buf.WriteString(line[:len(line)-1])
			continue
		}
		buf.WriteString(line)

		ruleString := buf.String()
		buf.Reset()

		rule, err := r.parse(ruleString, start)
		if err != nil {
			if _, _, enabled := stripComments(ruleString); !enabled {
				// Just a comment.
				continue
			}
			return nil, err
		}
		return rule, nil
	}
}

// ParseReader parses all rules from a reader. The rules that could be
// parsed are always returned. If any line failed to parse, the error is a
// ParseErrors listing each failure.
func ParseReader(reader io.Reader, group string) ([]*Rule, error) {
	rules := make([]*Rule, 0)
	var parseErrors ParseErrors

	ruleReader := NewRuleReader(reader, group)

	for {
		rule, err := ruleReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			if parseError, ok := err.(*RuleParseError); ok {
				parseErrors = append(parseErrors, parseError)
				continue
			}
			return rules, err
		}
		rules = append(rules, rule)
	}

	if len(parseErrors) > 0 {
		return rules, parseErrors
	}
	return rules, nil
}

// ParseFile parses all rules in a file. If group is empty the base name of
// the file is used.
func ParseFile(filename string, group string) ([]*Rule, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	if group == "" {
		group = filepath.Base(filename)
	}

	return ParseReader(file, group)
}
