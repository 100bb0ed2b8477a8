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
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/ruleparser"
)

// LoadFile parses all rules in a file, using the base name of the file as
// the group. Rules that fail to parse are logged and skipped.
func LoadFile(filename string) ([]*ruleparser.Rule, error) {
	rules, err := ruleparser.ParseFile(filename, "")
	if err != nil {
		parseErrors, ok := err.(ruleparser.ParseErrors)
		if !ok {
			return nil, err
		}
		for _, parseError := range parseErrors {
			log.Warning("Rule parse error: %s: %v", filename, parseError)
		}
	}
	return rules, nil
}

// RuleMap is a set of rules keyed by generator and signature ID.
type RuleMap struct {
	rules map[ruleparser.ID]*ruleparser.Rule
}

func NewEmptyRuleMap() *RuleMap {
	return &RuleMap{
		rules: make(map[ruleparser.ID]*ruleparser.Rule),
	}
}

// NewRuleMap loads the rules found in paths. A path may be a file, a
// directory in which case all .rules files in it are loaded, or a glob.
func NewRuleMap(paths []string) *RuleMap {
	ruleMap := NewEmptyRuleMap()

	for _, path := range paths {
		if err := ruleMap.LoadPath(path); err != nil {
			log.Warning("Failed to load %s: %v", path, err)
		}
	}

	log.Info("Loaded %d rules", ruleMap.Len())

	return ruleMap
}

func (r *RuleMap) loadFile(filename string) error {
	rules, err := LoadFile(filename)
	if err != nil {
		return err
	}
	count := 0
	for _, rule := range rules {
		if r.Add(rule) {
			count++
		}
	}
	log.Debug("Loaded %d rules from %s", count, filename)
	return nil
}

// LoadPath loads a file, a directory of .rules files, or a glob.
func (r *RuleMap) LoadPath(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		// Load as glob.
		matches, err := filepath.Glob(path)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			log.Warning("No matches for %s", path)
		}
		for _, m := range matches {
			if err := r.loadFile(m); err != nil {
				log.Warning("Failed to load %s: %v", m, err)
			}
		}
		return nil
	}

	if !fileInfo.IsDir() {
		return r.loadFile(path)
	}

	infos, err := ioutil.ReadDir(path)
	if err != nil {
		return err
	}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".rules") {
			continue
		}
		fullFilename := filepath.Join(path, info.Name())
		if err := r.loadFile(fullFilename); err != nil {
			log.Warning("Failed to load %s: %v", fullFilename, err)
		}
	}
	return nil
}

// Add adds a rule. If a rule with the same ID exists, the one with the
// higher revision is kept. Returns true if the rule was added.
func (r *RuleMap) Add(rule *ruleparser.Rule) bool {
	id := rule.ID()
	if existing, ok := r.rules[id]; ok {
		if existing.Rev() >= rule.Rev() {
			log.Warning("A rule with ID %s already exists (%s), ignoring %s from %s.",
				id, existing.IDString(), rule.IDString(), rule.Group())
			return false
		}
		log.Debug("Replacing rule %s with %s from %s.",
			existing.IDString(), rule.IDString(), rule.Group())
	}
	r.rules[id] = rule
	return true
}

// Replace unconditionally stores rule under its ID.
func (r *RuleMap) Replace(rule *ruleparser.Rule) {
	r.rules[rule.ID()] = rule
}

func (r *RuleMap) FindById(gid uint64, sid uint64) *ruleparser.Rule {
	if r == nil || r.rules == nil {
		return nil
	}
	return r.rules[ruleparser.ID{Gid: gid, Sid: sid}]
}

// FindBySid finds a rule with the default generator ID.
func (r *RuleMap) FindBySid(sid uint64) *ruleparser.Rule {
	return r.FindById(ruleparser.DefaultGid, sid)
}

func (r *RuleMap) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Rules returns all rules sorted by group, then ID.
func (r *RuleMap) Rules() []*ruleparser.Rule {
	rules := make([]*ruleparser.Rule, 0, r.Len())
	if r == nil {
		return rules
	}
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Group() != rules[j].Group() {
			return rules[i].Group() < rules[j].Group()
		}
		if rules[i].Gid() != rules[j].Gid() {
			return rules[i].Gid() < rules[j].Gid()
		}
		return rules[i].Sid() < rules[j].Sid()
	})
	return rules
}

// Groups returns the sorted list of groups rules were loaded from.
func (r *RuleMap) Groups() []string {
	seen := map[string]bool{}
	groups := []string{}
	for _, rule := range r.Rules() {
		if !seen[rule.Group()] {
			seen[rule.Group()] = true
			groups = append(groups, rule.Group())
		}
	}
	return groups
}
