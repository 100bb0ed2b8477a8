/* Copyright (c) 2016 Jason Ish
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

package core

import (
	"fmt"

	"github.com/jasonish/rulecat/ruleparser"
)

// RuleNotFoundError is returned by a RuleStore when no rule has the
// requested ID.
type RuleNotFoundError struct {
	ID ruleparser.ID
}

func NewRuleNotFoundError(gid uint64, sid uint64) *RuleNotFoundError {
	return &RuleNotFoundError{ID: ruleparser.ID{Gid: gid, Sid: sid}}
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("rule %s not found", e.ID)
}

// RuleStore persists rules. Rules are stored by ID, saving a rule with an
// existing ID replaces it.
type RuleStore interface {
	// SaveRules stores the rules in a single transaction.
	SaveRules(rules []*ruleparser.Rule) error

	FindById(gid uint64, sid uint64) (*ruleparser.Rule, error)
	FindByGroup(group string) ([]*ruleparser.Rule, error)
	Count() (int, error)

	Close() error
}
