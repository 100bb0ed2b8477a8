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

package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/httputil"
	"github.com/jasonish/rulecat/ruleparser"
	"github.com/pkg/errors"
)

// Client talks to the rulecat server API.
type Client struct {
	httpClient *httputil.HttpClient
}

func NewClient(baseUrl string) *Client {
	client := Client{
		httpClient: httputil.NewHttpClient(),
	}
	client.httpClient.SetBaseUrl(baseUrl)
	return &client
}

func (c *Client) DisableCertCheck(disable bool) {
	c.httpClient.DisableCertCheck(disable)
}

type ruleResponse struct {
	Group string `json:"group"`
	Rule  string `json:"rule"`
}

func (r *ruleResponse) parse() (*ruleparser.Rule, error) {
	rule, err := ruleparser.ParseGroup(r.Rule, r.Group)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse rule from server")
	}
	return rule, nil
}

func (c *Client) GetVersion() (*core.VersionInfo, error) {
	var version core.VersionInfo
	if err := c.httpClient.GetJson("api/1/version", &version); err != nil {
		return nil, err
	}
	return &version, nil
}

func (c *Client) GetRule(gid uint64, sid uint64) (*ruleparser.Rule, error) {
	response := ruleResponse{}
	err := c.httpClient.GetJson(fmt.Sprintf("api/1/rules/%d/%d", gid, sid),
		&response)
	if err != nil {
		return nil, err
	}
	return response.parse()
}

// GetRules returns the rules on the server, filtered by group if not empty.
func (c *Client) GetRules(group string) ([]*ruleparser.Rule, error) {
	path := "api/1/rules"
	if group != "" {
		path = fmt.Sprintf("%s?group=%s", path, url.QueryEscape(group))
	}
	response := struct {
		Rules []ruleResponse `json:"rules"`
	}{}
	if err := c.httpClient.GetJson(path, &response); err != nil {
		return nil, err
	}
	rules := make([]*ruleparser.Rule, 0, len(response.Rules))
	for i := range response.Rules {
		rule, err := response.Rules[i].parse()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (c *Client) setEnabled(gid uint64, sid uint64, enabled bool) (*ruleparser.Rule, error) {
	action := "disable"
	if enabled {
		action = "enable"
	}
	response := ruleResponse{}
	err := c.httpClient.PostDecodeResponse(
		fmt.Sprintf("api/1/rules/%d/%d/%s", gid, sid, action), "", nil,
		&response)
	if err != nil {
		return nil, err
	}
	return response.parse()
}

func (c *Client) EnableRule(gid uint64, sid uint64) (*ruleparser.Rule, error) {
	return c.setEnabled(gid, sid, true)
}

func (c *Client) DisableRule(gid uint64, sid uint64) (*ruleparser.Rule, error) {
	return c.setEnabled(gid, sid, false)
}

// ParseError is a rule the server failed to parse.
type ParseError struct {
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// Parse has the server parse rule text.
func (c *Client) Parse(text string) ([]*ruleparser.Rule, []ParseError, error) {
	response := struct {
		Rules  []ruleResponse `json:"rules"`
		Errors []ParseError   `json:"errors"`
	}{}
	err := c.httpClient.PostDecodeResponse("api/1/parse", "text/plain",
		strings.NewReader(text), &response)
	if err != nil {
		return nil, nil, err
	}
	rules := make([]*ruleparser.Rule, 0, len(response.Rules))
	for i := range response.Rules {
		rule, err := response.Rules[i].parse()
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, rule)
	}
	return rules, response.Errors, nil
}
