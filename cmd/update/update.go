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

package update

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/database"
	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/ruleparser"
	"github.com/jasonish/rulecat/rules"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func configure(args []string, stderr io.Writer) (*viper.Viper, error) {
	v := config.NewViper()

	flagset := pflag.NewFlagSet("update", pflag.ContinueOnError)
	flagset.SetOutput(stderr)
	flagset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rulecat update [options]\n")
		flagset.PrintDefaults()
	}

	flagset.StringP("config", "c", "", "Configuration file")
	v.BindPFlag("config", flagset.Lookup("config"))

	flagset.StringSliceP("source", "s", nil, "Rule file, directory or glob (may be repeated)")
	v.BindPFlag("sources", flagset.Lookup("source"))

	flagset.StringP("output", "o", "", "Output filename")
	v.BindPFlag("output", flagset.Lookup("output"))

	flagset.Bool("dry-run", false, "Print the changes instead of writing them")
	v.BindPFlag("dry-run", flagset.Lookup("dry-run"))

	flagset.BoolP("verbose", "v", false, "Be more verbose")
	v.BindPFlag("verbose", flagset.Lookup("verbose"))

	flagset.String("log-level", "", "Log level (error, warning, info, debug)")
	v.BindPFlag("log-level", flagset.Lookup("log-level"))

	if err := flagset.Parse(args); err != nil {
		return nil, err
	}

	if err := config.ConfigureLogging(v); err != nil {
		return nil, err
	}

	return v, nil
}

func readCurrent(filename string) (string, error) {
	buf, err := ioutil.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(buf), nil
}

// Run loads the configured sources, applies the policy and writes the
// result to the output file, or stdout if no output is configured. Returns
// the exit code.
func Run(args []string, stdout io.Writer, stderr io.Writer) int {
	v, err := configure(args, stderr)
	if err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	conf, err := config.Load(v)
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		return 1
	}

	if len(conf.Sources) == 0 {
		log.Error("No rule sources configured.")
		return 1
	}

	source, err := rules.NewSource(conf)
	if err != nil {
		log.Error("Bad policy: %v", err)
		return 1
	}
	source.Load()

	var ruleList []*ruleparser.Rule
	source.View(func(ruleMap *rules.RuleMap) {
		ruleList = ruleMap.Rules()
	})

	dryRun := v.GetBool("dry-run")

	switch {
	case conf.Output == "":
		if err := rules.WriteRules(stdout, ruleList); err != nil {
			log.Error("Failed to write rules: %v", err)
			return 1
		}
	case dryRun:
		current, err := readCurrent(conf.Output)
		if err != nil {
			log.Error("Failed to read %s: %v", conf.Output, err)
			return 1
		}
		diff, err := rules.Diff(conf.Output, current, rules.Render(ruleList))
		if err != nil {
			log.Error("Failed to diff %s: %v", conf.Output, err)
			return 1
		}
		if diff == "" {
			log.Info("No changes to %s.", conf.Output)
		}
		fmt.Fprint(stdout, diff)
	default:
		if err := rules.WriteFile(conf.Output, ruleList); err != nil {
			log.Error("%v", err)
			return 1
		}
		log.Info("Wrote %d rules to %s.", len(ruleList), conf.Output)
	}

	if dryRun {
		return 0
	}

	store, err := database.OpenRuleStore(conf.Database)
	if err != nil {
		log.Error("Failed to open database: %v", err)
		return 1
	}
	if store != nil {
		defer store.Close()
		if err := store.SaveRules(ruleList); err != nil {
			log.Error("Failed to save rules to database: %v", err)
			return 1
		}
		log.Info("Saved %d rules to the database.", len(ruleList))
	}

	return 0
}

func Main(args []string) int {
	return Run(args, os.Stdout, os.Stderr)
}
