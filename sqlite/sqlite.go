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

package sqlite

import (
	"database/sql"

	"github.com/jasonish/rulecat/sqlcommon"
	_ "github.com/mattn/go-sqlite3"
)

const MemoryFilename = ":memory:"

var Dialect = &sqlcommon.Dialect{
	Name: "sqlite",
	Now:  "datetime('now')",
	Upsert: `insert or replace into rules
		(gid, sid, rev, grp, enabled, msg, classtype, rule)
		values ($1, $2, $3, $4, $5, $6, $7, $8)`,
}

type SqliteService struct {
	*sql.DB
}

func NewSqliteService(filename string) (*SqliteService, error) {

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	// Each connection to an in memory database is its own database.
	if filename == MemoryFilename {
		db.SetMaxOpenConns(1)
	}

	return &SqliteService{
		db,
	}, nil
}

func (s *SqliteService) Migrate() error {
	migrator := sqlcommon.NewSqlMigrator(s.DB, Dialect)
	return migrator.Migrate()
}

// NewRuleStore opens the database, migrating it to the current schema.
func NewRuleStore(filename string) (*sqlcommon.RuleStore, error) {
	service, err := NewSqliteService(filename)
	if err != nil {
		return nil, err
	}
	if err := service.Migrate(); err != nil {
		service.Close()
		return nil, err
	}
	return sqlcommon.NewRuleStore(service.DB, Dialect), nil
}
