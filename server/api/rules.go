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

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/ruleparser"
	"github.com/jasonish/rulecat/rules"
	"github.com/pkg/errors"
)

// ruleIdFromRequest returns the gid and sid from the path, the gid
// defaulting to 1.
func ruleIdFromRequest(r *http.Request) (uint64, uint64, error) {
	vars := mux.Vars(r)

	var gid uint64 = ruleparser.DefaultGid
	if vars["gid"] != "" {
		var err error
		gid, err = strconv.ParseUint(vars["gid"], 10, 64)
		if err != nil {
			return 0, 0, httpBadRequestResponse(
				errors.Errorf("bad gid: %s", vars["gid"]))
		}
	}

	sid, err := strconv.ParseUint(vars["sid"], 10, 64)
	if err != nil {
		return 0, 0, httpBadRequestResponse(
			errors.Errorf("bad sid: %s", vars["sid"]))
	}

	return gid, sid, nil
}

// RulesHandler returns the loaded rules, optionally filtered by the group
// and enabled query parameters.
func (c *ApiContext) RulesHandler(w *ResponseWriter, r *http.Request) error {
	group := r.FormValue("group")

	var enabled *bool
	if r.FormValue("enabled") != "" {
		value, err := strconv.ParseBool(r.FormValue("enabled"))
		if err != nil {
			return httpBadRequestResponse(
				errors.Errorf("bad value for enabled: %s", r.FormValue("enabled")))
		}
		enabled = &value
	}

	var response []byte
	var err error

	c.source.View(func(ruleMap *rules.RuleMap) {
		selected := []*ruleparser.Rule{}
		for _, rule := range ruleMap.Rules() {
			if group != "" && rule.Group() != group {
				continue
			}
			if enabled != nil && rule.Enabled() != *enabled {
				continue
			}
			selected = append(selected, rule)
		}
		response, err = json.Marshal(map[string]interface{}{
			"count": len(selected),
			"rules": selected,
		})
	})
	if err != nil {
		return err
	}

	return w.OkJSON(json.RawMessage(response))
}

func (c *ApiContext) RuleByIdHandler(w *ResponseWriter, r *http.Request) error {
	gid, sid, err := ruleIdFromRequest(r)
	if err != nil {
		return err
	}

	var response []byte

	c.source.View(func(ruleMap *rules.RuleMap) {
		rule := ruleMap.FindById(gid, sid)
		if rule == nil {
			err = core.NewRuleNotFoundError(gid, sid)
			return
		}
		response, err = json.Marshal(rule)
	})
	if err != nil {
		return err
	}

	return w.OkJSON(json.RawMessage(response))
}

func (c *ApiContext) EnableRuleHandler(w *ResponseWriter, r *http.Request) error {
	return c.setEnabled(w, r, true)
}

func (c *ApiContext) DisableRuleHandler(w *ResponseWriter, r *http.Request) error {
	return c.setEnabled(w, r, false)
}

func (c *ApiContext) setEnabled(w *ResponseWriter, r *http.Request, enabled bool) error {
	gid, sid, err := ruleIdFromRequest(r)
	if err != nil {
		return err
	}

	var response []byte

	err = c.source.Update(func(ruleMap *rules.RuleMap) error {
		rule := ruleMap.FindById(gid, sid)
		if rule == nil {
			return core.NewRuleNotFoundError(gid, sid)
		}
		if rule.Enabled() != enabled {
			// The loaded rule is only changed once stored.
			if c.store != nil {
				updated := rule.Clone()
				updated.SetEnabled(enabled)
				if err := c.store.SaveRules([]*ruleparser.Rule{updated}); err != nil {
					return errors.Wrap(err, "failed to save rule")
				}
			}
			rule.SetEnabled(enabled)
			log.Info("Rule %s enabled: %v", rule.IDString(), enabled)
		}
		var err error
		response, err = json.Marshal(rule)
		return err
	})
	if err != nil {
		return err
	}

	return w.OkJSON(json.RawMessage(response))
}
