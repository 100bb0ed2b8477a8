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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/rules"
	"github.com/jasonish/rulecat/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ruleResponse struct {
	Sid     uint64 `json:"sid"`
	Gid     uint64 `json:"gid"`
	Enabled bool   `json:"enabled"`
	Msg     string `json:"msg"`
	Group   string `json:"group"`
	Rule    string `json:"rule"`
}

type rulesResponse struct {
	Count int            `json:"count"`
	Rules []ruleResponse `json:"rules"`
}

type errorResponse struct {
	Status int `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, store core.RuleStore) *Server {
	conf := config.New()
	conf.Sources = []string{"../rules/testdata"}
	source, err := rules.NewSource(conf)
	require.Nil(t, err)
	source.Load()
	return NewServer(conf, source, store)
}

func doRequest(t *testing.T, server *Server, method string, url string,
	contentType string, body string, response interface{}) int {
	request := httptest.NewRequest(method, url, strings.NewReader(body))
	if contentType != "" {
		request.Header.Set("content-type", contentType)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)
	if response != nil {
		require.Nil(t, json.Unmarshal(recorder.Body.Bytes(), response),
			recorder.Body.String())
	}
	return recorder.Code
}

func TestVersion(t *testing.T) {
	server := newTestServer(t, nil)
	version := core.VersionInfo{}
	code := doRequest(t, server, "GET", "/api/1/version", "", "", &version)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, core.BuildVersion, version.Version)
}

func TestRules(t *testing.T) {
	server := newTestServer(t, nil)

	response := rulesResponse{}
	code := doRequest(t, server, "GET", "/api/1/rules", "", "", &response)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, response.Count)
	assert.Len(t, response.Rules, 5)

	response = rulesResponse{}
	doRequest(t, server, "GET", "/api/1/rules?group=emerging-telnet.rules", "", "", &response)
	assert.Equal(t, 2, response.Count)
	for _, rule := range response.Rules {
		assert.Equal(t, "emerging-telnet.rules", rule.Group)
	}

	response = rulesResponse{}
	doRequest(t, server, "GET", "/api/1/rules?enabled=false", "", "", &response)
	require.Equal(t, 1, response.Count)
	assert.Equal(t, uint64(2100716), response.Rules[0].Sid)

	errResponse := errorResponse{}
	code = doRequest(t, server, "GET", "/api/1/rules?enabled=maybe", "", "", &errResponse)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, errResponse.Status)
	assert.Contains(t, errResponse.Error.Message, "maybe")
}

func TestRuleById(t *testing.T) {
	server := newTestServer(t, nil)

	rule := ruleResponse{}
	code := doRequest(t, server, "GET", "/api/1/rules/2101251", "", "", &rule)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "GPL TELNET Bad Login, local copy", rule.Msg)
	assert.Equal(t, "local.rules", rule.Group)

	rule = ruleResponse{}
	code = doRequest(t, server, "GET", "/api/1/rules/116/1", "", "", &rule)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(116), rule.Gid)
	assert.Equal(t, "DECODE_NOT_IPV4_DGRAM", rule.Msg)

	rule = ruleResponse{}
	code = doRequest(t, server, "GET", "/api/1/rules/1/2101251", "", "", &rule)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(2101251), rule.Sid)

	errResponse := errorResponse{}
	code = doRequest(t, server, "GET", "/api/1/rules/42", "", "", &errResponse)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "rule 1:42 not found", errResponse.Error.Message)
}

func TestEnableDisable(t *testing.T) {
	store, err := sqlite.NewRuleStore(sqlite.MemoryFilename)
	require.Nil(t, err)
	defer store.Close()

	server := newTestServer(t, store)

	rule := ruleResponse{}
	code := doRequest(t, server, "POST", "/api/1/rules/2100716/enable", "", "", &rule)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, rule.Enabled)
	assert.True(t, strings.HasPrefix(rule.Rule, "alert "))

	stored, err := store.FindById(1, 2100716)
	require.Nil(t, err)
	assert.True(t, stored.Enabled())

	rule = ruleResponse{}
	code = doRequest(t, server, "POST", "/api/1/rules/1/2100716/disable", "", "", &rule)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, rule.Enabled)
	assert.True(t, strings.HasPrefix(rule.Rule, "# alert "))

	rule = ruleResponse{}
	doRequest(t, server, "GET", "/api/1/rules/2100716", "", "", &rule)
	assert.False(t, rule.Enabled)

	code = doRequest(t, server, "POST", "/api/1/rules/42/enable", "", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEnableSaveFailure(t *testing.T) {
	store, err := sqlite.NewRuleStore(sqlite.MemoryFilename)
	require.Nil(t, err)
	server := newTestServer(t, store)

	before := ruleResponse{}
	doRequest(t, server, "GET", "/api/1/rules/2100716", "", "", &before)
	require.False(t, before.Enabled)

	// Saves now fail.
	require.Nil(t, store.Close())

	errResponse := errorResponse{}
	code := doRequest(t, server, "POST", "/api/1/rules/2100716/enable", "", "", &errResponse)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, errResponse.Error.Message, "failed to save rule")

	after := ruleResponse{}
	doRequest(t, server, "GET", "/api/1/rules/2100716", "", "", &after)
	assert.False(t, after.Enabled)
	assert.Equal(t, before.Rule, after.Rule)
}

type parseResponse struct {
	Rules  []ruleResponse `json:"rules"`
	Errors []struct {
		Line    int    `json:"line"`
		Message string `json:"message"`
	} `json:"errors"`
}

func TestParse(t *testing.T) {
	server := newTestServer(t, nil)

	body := `alert tcp any any -> any any (msg:"one"; sid:1;)
alert tcp any any -> any any (msg:"two"; sid:2;
alert tcp any any -> any any (msg:"three"; sid:3;)
`
	response := parseResponse{}
	code := doRequest(t, server, "POST", "/api/1/parse", "text/plain", body, &response)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, response.Rules, 2)
	assert.Equal(t, "one", response.Rules[0].Msg)
	assert.Equal(t, "three", response.Rules[1].Msg)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, 2, response.Errors[0].Line)

	response = parseResponse{}
	code = doRequest(t, server, "POST", "/api/1/parse", "application/json",
		`{"rules": "alert tcp any any -> any any (msg:\"json\"; sid:4;)", "group": "api.rules"}`,
		&response)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, response.Rules, 1)
	assert.Equal(t, "api.rules", response.Rules[0].Group)
	assert.Len(t, response.Errors, 0)

	code = doRequest(t, server, "POST", "/api/1/parse", "application/json", "{", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
