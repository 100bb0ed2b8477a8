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

package sqlcommon

import (
	"database/sql"

	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/ruleparser"
	"github.com/pkg/errors"
)

// Dialect holds the SQL that differs between databases.
type Dialect struct {
	// Name of the database, also the resource directory of its schema
	// scripts.
	Name string

	// Expression for the current time.
	Now string

	// Insert or replace a rule. Parameters in order: gid, sid, rev, grp,
	// enabled, msg, classtype, rule.
	Upsert string
}

// RuleStore is a core.RuleStore on top of database/sql.
type RuleStore struct {
	db      *sql.DB
	dialect *Dialect
}

func NewRuleStore(db *sql.DB, dialect *Dialect) *RuleStore {
	return &RuleStore{
		db:      db,
		dialect: dialect,
	}
}

var _ core.RuleStore = (*RuleStore)(nil)

func toNullString(value string) sql.NullString {
	if value != "" {
		return sql.NullString{String: value, Valid: true}
	}
	return sql.NullString{}
}

func (s *RuleStore) SaveRules(rules []*ruleparser.Rule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}

	stmt, err := tx.Prepare(s.dialect.Upsert)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	for _, rule := range rules {
		_, err := stmt.Exec(
			rule.Gid(),
			rule.Sid(),
			rule.Rev(),
			toNullString(rule.Group()),
			rule.Enabled(),
			toNullString(rule.Msg()),
			toNullString(rule.Classtype()),
			rule.String())
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to save rule %s",
				rule.IDString())
		}
	}

	return tx.Commit()
}

func scanRule(scanner interface {
	Scan(dest ...interface{}) error
}) (*ruleparser.Rule, error) {
	var group sql.NullString
	var text string
	if err := scanner.Scan(&group, &text); err != nil {
		return nil, err
	}
	rule, err := ruleparser.ParseGroup(text, group.String)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse stored rule")
	}
	return rule, nil
}

func (s *RuleStore) FindById(gid uint64, sid uint64) (*ruleparser.Rule, error) {
	row := s.db.QueryRow(`select grp, rule from rules where gid = $1 and sid = $2`,
		gid, sid)
	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, core.NewRuleNotFoundError(gid, sid)
	}
	return rule, err
}

func (s *RuleStore) FindByGroup(group string) ([]*ruleparser.Rule, error) {
	rows, err := s.db.Query(
		`select grp, rule from rules where grp = $1 order by gid, sid`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []*ruleparser.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *RuleStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("select count(*) from rules").Scan(&count)
	return count, err
}

func (s *RuleStore) Close() error {
	return s.db.Close()
}
