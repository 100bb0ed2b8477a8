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

package config

import (
	"os"

	"github.com/jasonish/rulecat/log"
	"github.com/spf13/viper"
)

// DefaultConfigFilename is loaded from the current directory when no
// configuration file is given.
const DefaultConfigFilename = "rulecat.yaml"

var envBindings = map[string]string{
	"config":            "RULECAT_CONFIG",
	"sources":           "RULECAT_SOURCES",
	"output":            "RULECAT_OUTPUT",
	"database.type":     "RULECAT_DATABASE_TYPE",
	"database.filename": "RULECAT_DATABASE_FILENAME",
	"database.dsn":      "RULECAT_DATABASE_DSN",
	"server.host":       "RULECAT_SERVER_HOST",
	"server.port":       "RULECAT_SERVER_PORT",
	"log-level":         "RULECAT_LOG_LEVEL",
}

// NewViper returns a viper with the RULECAT_ environment variables bound.
// Commands bind their flags to the same keys.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, env := range envBindings {
		v.BindEnv(key, env)
	}
	return v
}

// Load loads the configuration file named by the "config" key, or
// rulecat.yaml if it exists in the current directory, then applies the
// values set with flags or in the environment.
func Load(v *viper.Viper) (*Config, error) {
	filename := v.GetString("config")
	if filename == "" {
		if _, err := os.Stat(DefaultConfigFilename); err == nil {
			filename = DefaultConfigFilename
		}
	}

	conf := New()
	if filename != "" {
		log.Info("Loading configuration file %s.", filename)
		var err error
		conf, err = LoadConfig(filename)
		if err != nil {
			return nil, err
		}
	}

	if sources := v.GetStringSlice("sources"); len(sources) > 0 {
		conf.Sources = sources
	}
	if output := v.GetString("output"); output != "" {
		conf.Output = output
	}
	if databaseType := v.GetString("database.type"); databaseType != "" {
		conf.Database.Type = databaseType
	}
	if filename := v.GetString("database.filename"); filename != "" {
		conf.Database.Filename = filename
	}
	if dsn := v.GetString("database.dsn"); dsn != "" {
		conf.Database.DSN = dsn
	}
	if host := v.GetString("server.host"); host != "" {
		conf.Server.Host = host
	}
	if port := v.GetInt("server.port"); port != 0 {
		conf.Server.Port = port
	}

	return conf, nil
}

// ConfigureLogging sets the log level from the "log-level" key, or to
// debug if "verbose" is set.
func ConfigureLogging(v *viper.Viper) error {
	if v.GetBool("verbose") {
		log.SetLevel(log.DEBUG)
		return nil
	}
	if name := v.GetString("log-level"); name != "" {
		level, err := log.ParseLevel(name)
		if err != nil {
			return err
		}
		log.SetLevel(level)
	}
	return nil
}
