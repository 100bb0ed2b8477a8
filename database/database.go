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

package database

import (
	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/postgres"
	"github.com/jasonish/rulecat/sqlite"
	"github.com/pkg/errors"
)

// OpenRuleStore opens the configured database. If no database is configured
// the returned store is nil.
func OpenRuleStore(conf config.Database) (core.RuleStore, error) {
	switch conf.Type {
	case "":
		return nil, nil
	case "sqlite":
		if conf.Filename == "" {
			return nil, errors.New("sqlite: no filename configured")
		}
		log.Info("Using SQLite database %s.", conf.Filename)
		store, err := sqlite.NewRuleStore(conf.Filename)
		if err != nil {
			return nil, errors.Wrap(err, "sqlite")
		}
		return store, nil
	case "postgres":
		if conf.DSN == "" {
			return nil, errors.New("postgres: no dsn configured")
		}
		store, err := postgres.NewRuleStore(conf.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "postgres")
		}
		return store, nil
	}
	return nil, errors.Errorf("unsupported database type: %s", conf.Type)
}
