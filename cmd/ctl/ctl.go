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

package ctl

import (
	"fmt"
	"io"
	"os"

	"github.com/jasonish/rulecat/client"
	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/rules"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func usage(w io.Writer, flagset *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage: rulecat ctl [options] <command> [args]

Commands:
    version                 Print the server version
    list [group]            List the rules, optionally only those in group
    get <[gid:]sid>         Print a rule
    enable <[gid:]sid>      Enable a rule
    disable <[gid:]sid>     Disable a rule

Options:
`)
	flagset.PrintDefaults()
}

// Run executes a command against a running server. Returns the exit code.
func Run(args []string, stdout io.Writer, stderr io.Writer) int {
	v := config.NewViper()
	v.BindEnv("url", "RULECAT_URL")

	flagset := pflag.NewFlagSet("ctl", pflag.ContinueOnError)
	flagset.SetOutput(stderr)
	flagset.Usage = func() { usage(stderr, flagset) }

	flagset.StringP("url", "u", "", "Server URL (default: from the configuration)")
	v.BindPFlag("url", flagset.Lookup("url"))

	flagset.StringP("config", "c", "", "Configuration file")
	v.BindPFlag("config", flagset.Lookup("config"))

	flagset.BoolP("no-check-certificate", "k", false, "Disable TLS certificate check")
	v.BindPFlag("no-check-certificate", flagset.Lookup("no-check-certificate"))

	if err := flagset.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 1
	}

	if flagset.NArg() == 0 {
		usage(stderr, flagset)
		return 1
	}

	url := v.GetString("url")
	if url == "" {
		conf, err := config.Load(v)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		url = fmt.Sprintf("http://%s:%d", conf.Server.Host, conf.Server.Port)
	}

	c := client.NewClient(url)
	if v.GetBool("no-check-certificate") {
		c.DisableCertCheck(true)
	}

	if err := runCommand(c, flagset.Args(), stdout); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runCommand(c *client.Client, args []string, stdout io.Writer) error {
	command := args[0]
	args = args[1:]

	switch command {
	case "version":
		version, err := c.GetVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s (rev %s) [%s]\n",
			version.Version, version.Revision, version.Date)
		return nil
	case "list":
		group := ""
		if len(args) > 0 {
			group = args[0]
		}
		ruleList, err := c.GetRules(group)
		if err != nil {
			return err
		}
		return rules.WriteRules(stdout, ruleList)
	case "get", "enable", "disable":
		if len(args) != 1 {
			return errors.Errorf("%s requires a rule ID", command)
		}
		id, err := rules.ParseId(args[0])
		if err != nil {
			return err
		}
		getRule := c.GetRule
		switch command {
		case "enable":
			getRule = c.EnableRule
		case "disable":
			getRule = c.DisableRule
		}
		rule, err := getRule(id.Gid, id.Sid)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, rule.String())
		return nil
	}

	return errors.Errorf("unknown command: %s", command)
}

func Main(args []string) int {
	return Run(args, os.Stdout, os.Stderr)
}
