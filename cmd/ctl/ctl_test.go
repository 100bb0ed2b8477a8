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
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/rules"
	"github.com/jasonish/rulecat/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	conf := config.New()
	conf.Sources = []string{"../../rules/testdata"}
	source, err := rules.NewSource(conf)
	require.Nil(t, err)
	source.Load()
	return httptest.NewServer(server.NewServer(conf, source, nil).Handler())
}

func run(url string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(append([]string{"--url", url}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCtl(t *testing.T) {
	httpServer := newTestServer(t)
	defer httpServer.Close()

	code, stdout, _ := run(httpServer.URL, "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "0.1.0dev"))

	code, stdout, _ = run(httpServer.URL, "get", "116:1")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "DECODE_NOT_IPV4_DGRAM")

	code, stdout, _ = run(httpServer.URL, "enable", "2100716")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "alert tcp $TELNET_SERVERS 23"))

	code, stdout, _ = run(httpServer.URL, "disable", "2100716")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "# alert tcp $TELNET_SERVERS 23"))

	code, stdout, _ = run(httpServer.URL, "list", "local.rules")
	assert.Equal(t, 0, code)
	assert.Equal(t, 3, strings.Count(stdout, "\n"))
}

func TestCtlErrors(t *testing.T) {
	httpServer := newTestServer(t)
	defer httpServer.Close()

	code, _, stderr := run(httpServer.URL, "get", "42")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "rule 1:42 not found")

	code, _, stderr = run(httpServer.URL, "get", "a:b:c")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid rule ID")

	code, _, stderr = run(httpServer.URL, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command: frobnicate")

	code, _, _ = run(httpServer.URL)
	assert.Equal(t, 1, code)
}
