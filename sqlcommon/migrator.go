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
	"fmt"
	"path"

	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/resources"
)

// SqlMigrator applies the versioned schema scripts V1.sql, V2.sql, ... found
// in a resource directory, recording each applied version in the schema
// table.
type SqlMigrator struct {
	db        *sql.DB
	directory string
	dialect   *Dialect
}

func NewSqlMigrator(db *sql.DB, dialect *Dialect) *SqlMigrator {
	return &SqlMigrator{
		db:        db,
		directory: dialect.Name,
		dialect:   dialect,
	}
}

// CurrentVersion returns the schema version of the database, 0 if not
// initialized.
func (m *SqlMigrator) CurrentVersion() int {
	var version sql.NullInt64
	err := m.db.QueryRow("select max(version) from schema").Scan(&version)
	if err != nil || !version.Valid {
		return 0
	}
	return int(version.Int64)
}

func (m *SqlMigrator) Migrate() error {
	currentVersion := m.CurrentVersion()
	if currentVersion > 0 {
		log.Debug("Current database schema version: %d", currentVersion)
	} else {
		log.Debug("Initializing database.")
	}

	for nextVersion := currentVersion + 1; ; nextVersion++ {
		scriptName := path.Join(m.directory,
			fmt.Sprintf("V%d.sql", nextVersion))
		script, err := resources.AssetString(scriptName)
		if err != nil {
			break
		}

		log.Info("Updating database to version %d.", nextVersion)

		tx, err := m.db.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(script); err != nil {
			tx.Rollback()
			return err
		}

		if err := m.setVersion(tx, nextVersion); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

func (m *SqlMigrator) setVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec(fmt.Sprintf(
		`insert into schema (version, timestamp) values ($1, %s)`,
		m.dialect.Now), version)
	return err
}
