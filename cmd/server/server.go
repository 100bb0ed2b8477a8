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

package server

import (
	"context"
	"os"

	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/database"
	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/rules"
	"github.com/jasonish/rulecat/server"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func configure(args []string) *viper.Viper {
	v := config.NewViper()

	flagset := pflag.NewFlagSet("server", 0)

	flagset.StringP("config", "c", "", "Configuration file")
	v.BindPFlag("config", flagset.Lookup("config"))

	flagset.StringSliceP("source", "s", nil, "Rule file, directory or glob (may be repeated)")
	v.BindPFlag("sources", flagset.Lookup("source"))

	flagset.String("host", "", "Host to bind to (default: 127.0.0.1)")
	v.BindPFlag("server.host", flagset.Lookup("host"))

	flagset.IntP("port", "p", 0, "Port to bind to (default: 5637)")
	v.BindPFlag("server.port", flagset.Lookup("port"))

	flagset.Bool("no-watch", false, "Don't reload rules when the sources change")
	v.BindPFlag("no-watch", flagset.Lookup("no-watch"))

	flagset.BoolP("verbose", "v", false, "Be more verbose")
	v.BindPFlag("verbose", flagset.Lookup("verbose"))

	flagset.String("log-level", "", "Log level (error, warning, info, debug)")
	v.BindPFlag("log-level", flagset.Lookup("log-level"))

	if err := flagset.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := config.ConfigureLogging(v); err != nil {
		log.Fatal(err)
	}

	return v
}

func Main(args []string) {
	v := configure(args)

	conf, err := config.Load(v)
	if err != nil {
		log.Fatal(err)
	}

	source, err := rules.NewSource(conf)
	if err != nil {
		log.Fatal(err)
	}
	source.Load()

	store, err := database.OpenRuleStore(conf.Database)
	if err != nil {
		log.Fatal(err)
	}
	if store != nil {
		defer store.Close()
		source.OnReload = func(ruleMap *rules.RuleMap) {
			saveRules(store, ruleMap)
		}
		source.View(func(ruleMap *rules.RuleMap) {
			saveRules(store, ruleMap)
		})
	}

	if !v.GetBool("no-watch") && len(conf.Sources) > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := source.Watch(ctx); err != nil {
			log.Warning("Rule sources will not be reloaded on change: %v", err)
		}
	}

	log.Info("Rulecat version %s.", core.BuildVersion)

	if err := server.NewServer(conf, source, store).Start(); err != nil {
		log.Fatal(err)
	}
}

func saveRules(store core.RuleStore, ruleMap *rules.RuleMap) {
	if err := store.SaveRules(ruleMap.Rules()); err != nil {
		log.Error("Failed to save rules to the database: %v", err)
	}
}
