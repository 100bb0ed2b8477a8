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

package rules

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/jasonish/rulecat/ruleparser"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// WriteRules writes one rule per line.
func WriteRules(w io.Writer, rules []*ruleparser.Rule) error {
	writer := bufio.NewWriter(w)
	for _, rule := range rules {
		if _, err := fmt.Fprintln(writer, rule.String()); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// Render returns the rules as they would be written by WriteRules.
func Render(rules []*ruleparser.Rule) string {
	var buf strings.Builder
	WriteRules(&buf, rules)
	return buf.String()
}

// WriteFile writes the rules to a temporary file next to filename, then
// renames it into place.
func WriteFile(filename string, rules []*ruleparser.Rule) error {
	dir := filepath.Dir(filename)
	tmp, err := ioutil.TempFile(dir, "."+filepath.Base(filename)+".")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	defer os.Remove(tmp.Name())

	if err := WriteRules(tmp, rules); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return errors.Wrapf(err, "failed to rename %s to %s", tmp.Name(), filename)
	}
	return nil
}

// Diff returns a unified diff between the current contents of a rule file
// and new contents. An empty string means no changes.
func Diff(filename string, current string, next string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(next),
		FromFile: filename,
		ToFile:   filename + ".new",
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(diff)
}
