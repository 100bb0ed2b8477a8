/* Copyright (c) 2017 Jason Ish
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions
 * are met:
 *
 * 1. Redistributions of source code must retain the above copyright
 *    notice, this list of conditions and the following disclaimer.
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED ``AS IS'' AND ANY EXPRESS OR IMPLIED
 * WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
 * DISCLAIMED. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY DIRECT,
 * INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
 * (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
 * SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
 * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
 * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
 * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

package rules

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/ruleparser"
	"github.com/pkg/errors"
)

// Matcher selects rules for a policy action.
type Matcher interface {
	Match(rule *ruleparser.Rule) bool
}

// IdMatcher matches a rule by ID.
type IdMatcher struct {
	ID ruleparser.ID
}

func (m *IdMatcher) Match(rule *ruleparser.Rule) bool {
	return rule.ID() == m.ID
}

// GroupMatcher matches the group of a rule against a glob pattern.
type GroupMatcher struct {
	Pattern string
}

func (m *GroupMatcher) Match(rule *ruleparser.Rule) bool {
	matched, _ := filepath.Match(m.Pattern, rule.Group())
	return matched
}

// ReMatcher matches a regular expression against the rule text.
type ReMatcher struct {
	Re *regexp.Regexp
}

func (m *ReMatcher) Match(rule *ruleparser.Rule) bool {
	return m.Re.MatchString(rule.Raw())
}

// ParseId parses a rule ID given as sid or gid:sid.
func ParseId(buf string) (ruleparser.ID, error) {
	id := ruleparser.ID{Gid: ruleparser.DefaultGid}
	parts := strings.Split(buf, ":")
	if len(parts) > 2 {
		return id, errors.Errorf("invalid rule ID: %s", buf)
	}
	if len(parts) == 2 {
		gid, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return id, errors.Errorf("invalid gid: %s", buf)
		}
		id.Gid = gid
	}
	sid, err := strconv.ParseUint(parts[len(parts)-1], 10, 64)
	if err != nil {
		return id, errors.Errorf("invalid sid: %s", buf)
	}
	id.Sid = sid
	return id, nil
}

// NewMatcher parses a matcher. Accepted forms are a sid, gid:sid,
// group:<glob> and re:<regular expression>.
func NewMatcher(spec string) (Matcher, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(spec, "group:"):
		pattern := strings.TrimPrefix(spec, "group:")
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, errors.Wrapf(err, "bad group pattern %q", pattern)
		}
		return &GroupMatcher{Pattern: pattern}, nil
	case strings.HasPrefix(spec, "re:"):
		re, err := regexp.Compile(strings.TrimPrefix(spec, "re:"))
		if err != nil {
			return nil, errors.Wrapf(err, "bad regular expression in %q", spec)
		}
		return &ReMatcher{Re: re}, nil
	}
	id, err := ParseId(spec)
	if err != nil {
		return nil, err
	}
	return &IdMatcher{ID: id}, nil
}

// Modifier rewrites the text of matching rules with a regular expression
// replacement.
type Modifier struct {
	Matcher     Matcher
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply returns the modified rule, or the rule itself if the replacement
// didn't change anything.
func (m *Modifier) Apply(rule *ruleparser.Rule) (*ruleparser.Rule, error) {
	buf := rule.String()
	modified := m.Pattern.ReplaceAllString(buf, m.Replacement)
	if modified == buf {
		return rule, nil
	}
	return ruleparser.ParseGroup(modified, rule.Group())
}

type Policy struct {
	Enable  []Matcher
	Disable []Matcher
	Modify  []*Modifier
}

type PolicyResult struct {
	Enabled  int
	Disabled int
	Modified int
}

func newMatchers(specs []string) ([]Matcher, error) {
	matchers := make([]Matcher, 0, len(specs))
	for _, spec := range specs {
		matcher, err := NewMatcher(spec)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, matcher)
	}
	return matchers, nil
}

// NewPolicy builds a policy from the enable, disable and modify sections of
// the configuration.
func NewPolicy(conf *config.Config) (*Policy, error) {
	var err error
	policy := &Policy{}

	if policy.Enable, err = newMatchers(conf.Enable); err != nil {
		return nil, errors.Wrap(err, "enable")
	}
	if policy.Disable, err = newMatchers(conf.Disable); err != nil {
		return nil, errors.Wrap(err, "disable")
	}

	for _, modify := range conf.Modify {
		matcher, err := NewMatcher(modify.Match)
		if err != nil {
			return nil, errors.Wrap(err, "modify")
		}
		pattern, err := regexp.Compile(modify.Pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "modify: bad pattern %q", modify.Pattern)
		}
		policy.Modify = append(policy.Modify, &Modifier{
			Matcher:     matcher,
			Pattern:     pattern,
			Replacement: modify.Replacement,
		})
	}

	return policy, nil
}

func matchAny(matchers []Matcher, rule *ruleparser.Rule) bool {
	for _, matcher := range matchers {
		if matcher.Match(rule) {
			return true
		}
	}
	return false
}

// Apply applies the policy to every rule in the map. A rule matched by both
// enable and disable is enabled. Modifications are applied last, one that
// produces an unparseable rule is logged and skipped.
func (p *Policy) Apply(ruleMap *RuleMap) PolicyResult {
	result := PolicyResult{}

	for _, rule := range ruleMap.Rules() {
		enable := matchAny(p.Enable, rule)
		disable := !enable && matchAny(p.Disable, rule)
		if enable && !rule.Enabled() {
			rule.SetEnabled(true)
			result.Enabled++
			log.Debug("Enabled rule %s", rule.IDString())
		} else if disable && rule.Enabled() {
			rule.SetEnabled(false)
			result.Disabled++
			log.Debug("Disabled rule %s", rule.IDString())
		}

		for _, modifier := range p.Modify {
			if !modifier.Matcher.Match(rule) {
				continue
			}
			modified, err := modifier.Apply(rule)
			if err != nil {
				log.Warning("Modification of rule %s failed: %v",
					rule.IDString(), err)
				continue
			}
			if modified == rule {
				continue
			}
			if modified.ID() != rule.ID() {
				log.Warning("Modification of rule %s changed its ID to %s, ignoring.",
					rule.IDString(), modified.IDString())
				continue
			}
			ruleMap.Replace(modified)
			rule = modified
			result.Modified++
			log.Debug("Modified rule %s", rule.IDString())
		}
	}

	return result
}
