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

package postgres

import (
	"database/sql"

	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/sqlcommon"
	_ "github.com/lib/pq"
)

var Dialect = &sqlcommon.Dialect{
	Name: "postgres",
	Now:  "now()",
	Upsert: `insert into rules
		(gid, sid, rev, grp, enabled, msg, classtype, rule)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		on conflict (gid, sid) do update set
		rev = excluded.rev,
		grp = excluded.grp,
		enabled = excluded.enabled,
		msg = excluded.msg,
		classtype = excluded.classtype,
		rule = excluded.rule`,
}

type Service struct {
	db *sql.DB
}

// NewService connects to PostgreSQL. The DSN is anything lib/pq accepts,
// for example "dbname=rulecat user=rulecat sslmode=disable" or a
// postgres:// URL.
func NewService(dsn string) (*Service, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	var pgVersion string

	err = db.QueryRow("select version()").Scan(&pgVersion)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Connected to PostgreSQL version %s.", pgVersion)

	return &Service{
		db: db,
	}, nil
}

func (s *Service) Migrate() error {
	migrator := sqlcommon.NewSqlMigrator(s.db, Dialect)
	return migrator.Migrate()
}

func (s *Service) Close() error {
	return s.db.Close()
}

// NewRuleStore connects to the database, migrating it to the current
// schema.
func NewRuleStore(dsn string) (*sqlcommon.RuleStore, error) {
	service, err := NewService(dsn)
	if err != nil {
		return nil, err
	}
	if err := service.Migrate(); err != nil {
		service.Close()
		return nil, err
	}
	return sqlcommon.NewRuleStore(service.db, Dialect), nil
}
