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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "rulecat")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "rulecat.yaml")
	require.Nil(t, ioutil.WriteFile(filename, []byte(sampleConfig), 0644))

	v := NewViper()
	v.Set("config", filename)
	conf, err := Load(v)
	require.Nil(t, err)
	assert.Equal(t, "/var/lib/suricata/rules/suricata.rules", conf.Output)
	assert.Equal(t, 8080, conf.Server.Port)
	assert.Equal(t, "127.0.0.1", conf.Server.Host)
}

func TestLoadMissingFile(t *testing.T) {
	v := NewViper()
	v.Set("config", "/nonexistent/rulecat.yaml")
	_, err := Load(v)
	assert.NotNil(t, err)
}

func TestLoadFlags(t *testing.T) {
	flagset := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagset.StringP("output", "o", "", "")
	flagset.Int("port", 0, "")

	v := NewViper()
	v.BindPFlag("output", flagset.Lookup("output"))
	v.BindPFlag("server.port", flagset.Lookup("port"))

	require.Nil(t, flagset.Parse([]string{"-o", "out.rules", "--port", "9000"}))

	conf, err := Load(v)
	require.Nil(t, err)
	assert.Equal(t, "out.rules", conf.Output)
	assert.Equal(t, 9000, conf.Server.Port)
}

func TestLoadEnv(t *testing.T) {
	os.Setenv("RULECAT_DATABASE_TYPE", "postgres")
	os.Setenv("RULECAT_DATABASE_DSN", "dbname=rulecat sslmode=disable")
	defer os.Unsetenv("RULECAT_DATABASE_TYPE")
	defer os.Unsetenv("RULECAT_DATABASE_DSN")

	conf, err := Load(NewViper())
	require.Nil(t, err)
	assert.Equal(t, "postgres", conf.Database.Type)
	assert.Equal(t, "dbname=rulecat sslmode=disable", conf.Database.DSN)
	assert.Equal(t, DefaultServerPort, conf.Server.Port)
}
