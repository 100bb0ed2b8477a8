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

package parse

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/ruleparser"
	"github.com/spf13/pflag"
)

type options struct {
	json   bool
	dump   bool
	strict bool
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	SortKeys:                true,
}

func printRule(w io.Writer, opts *options, rule *ruleparser.Rule) error {
	switch {
	case opts.json:
		buf, err := json.Marshal(rule)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(buf))
	case opts.dump:
		dumper.Fdump(w, rule)
	default:
		fmt.Fprintln(w, rule.String())
	}
	return nil
}

// parseFile prints each rule in the reader, returning the number of parse
// errors. In strict mode it stops at the first error.
func parseFile(reader io.Reader, group string, opts *options,
	stdout io.Writer, stderr io.Writer) (int, error) {
	errorCount := 0
	ruleReader := ruleparser.NewRuleReader(reader, group)
	for {
		rule, err := ruleReader.Next()
		if err != nil {
			if err == io.EOF {
				return errorCount, nil
			}
			parseError, ok := err.(*ruleparser.RuleParseError)
			if !ok {
				return errorCount, err
			}
			errorCount++
			fmt.Fprintf(stderr, "error: %v\n", parseError)
			if opts.strict {
				return errorCount, nil
			}
			continue
		}
		if err := printRule(stdout, opts, rule); err != nil {
			return errorCount, err
		}
	}
}

// Run parses the files named in args, or stdin if none, printing the rules
// to stdout. Returns the exit code.
func Run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	opts := &options{}

	flagset := pflag.NewFlagSet("parse", pflag.ContinueOnError)
	flagset.SetOutput(stderr)
	flagset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rulecat parse [options] [filename...]\n")
		flagset.PrintDefaults()
	}
	flagset.BoolVar(&opts.json, "json", false, "Print rules as JSON")
	flagset.BoolVar(&opts.dump, "dump", false, "Dump the parsed rule structures")
	flagset.BoolVar(&opts.strict, "strict", false, "Exit with an error on the first parse error")
	verbose := flagset.BoolP("verbose", "v", false, "Be more verbose")

	if err := flagset.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 1
	}

	if *verbose {
		log.SetLevel(log.DEBUG)
	}

	if opts.json && opts.dump {
		fmt.Fprintf(stderr, "error: --json and --dump are mutually exclusive\n")
		return 1
	}

	filenames := flagset.Args()
	if len(filenames) == 0 {
		filenames = []string{"-"}
	}

	for _, filename := range filenames {
		var reader io.Reader
		var group string
		if filename == "-" {
			reader = stdin
		} else {
			file, err := os.Open(filename)
			if err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				return 1
			}
			defer file.Close()
			reader = file
			group = filepath.Base(filename)
		}

		errorCount, err := parseFile(reader, group, opts, stdout, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s: %v\n", filename, err)
			return 1
		}
		if errorCount > 0 {
			log.Debug("%s: %d rules failed to parse", filename, errorCount)
			if opts.strict {
				return 1
			}
		}
	}

	return 0
}

func Main(args []string) int {
	return Run(args, os.Stdin, os.Stdout, os.Stderr)
}
