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

	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/rules"
	"github.com/jasonish/rulecat/server/router"
	"github.com/pkg/errors"
)

type ResponseWriter struct {
	http.ResponseWriter
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{w}
}

func (w *ResponseWriter) WriteJSON(status int, response interface{}) error {
	bytes, err := json.Marshal(response)
	if err != nil {
		return err
	}
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
	return nil
}

func (w *ResponseWriter) OkJSON(response interface{}) error {
	return w.WriteJSON(http.StatusOK, response)
}

type httpErrorResponse struct {
	error
	status int
}

func (r *httpErrorResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"status": r.status,
		"error": map[string]interface{}{
			"message": r.Error(),
		},
	})
}

func httpBadRequestResponse(err error) *httpErrorResponse {
	return newHttpErrorResponse(http.StatusBadRequest, err)
}

func newHttpErrorResponse(statusCode int, err error) *httpErrorResponse {
	return &httpErrorResponse{
		error:  err,
		status: statusCode,
	}
}

type apiHandlerFunc func(w *ResponseWriter, r *http.Request) error

func apiFuncWrapper(handler apiHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := handler(NewResponseWriter(w), r)
		if err == nil {
			return
		}

		response, ok := err.(*httpErrorResponse)
		if !ok {
			status := http.StatusInternalServerError
			switch errors.Cause(err).(type) {
			case *core.RuleNotFoundError:
				status = http.StatusNotFound
			}
			response = newHttpErrorResponse(status, err)
		}

		NewResponseWriter(w).WriteJSON(response.status, response)
	})
}

// apiRouter wraps the provided router with some helper functions for
// registering API handlers of type apiHandlerFunc.
type apiRouter struct {
	router *router.Router
}

func (r *apiRouter) GET(path string, handler apiHandlerFunc) {
	r.router.GET(path, apiFuncWrapper(handler))
}

func (r *apiRouter) POST(path string, handler apiHandlerFunc) {
	r.router.POST(path, apiFuncWrapper(handler))
}

type ApiContext struct {
	source *rules.Source

	// Optional, changes to rules are saved here when set.
	store core.RuleStore
}

func NewApiContext(source *rules.Source, store core.RuleStore) *ApiContext {
	return &ApiContext{
		source: source,
		store:  store,
	}
}

func (c *ApiContext) InitRoutes(router *router.Router) {
	r := apiRouter{router}

	r.GET("/version", c.VersionHandler)
	r.POST("/parse", c.ParseHandler)

	r.GET("/rules", c.RulesHandler)
	r.POST("/rules/{sid:[0-9]+}/enable", c.EnableRuleHandler)
	r.POST("/rules/{sid:[0-9]+}/disable", c.DisableRuleHandler)
	r.POST("/rules/{gid:[0-9]+}/{sid:[0-9]+}/enable", c.EnableRuleHandler)
	r.POST("/rules/{gid:[0-9]+}/{sid:[0-9]+}/disable", c.DisableRuleHandler)
	r.GET("/rules/{sid:[0-9]+}", c.RuleByIdHandler)
	r.GET("/rules/{gid:[0-9]+}/{sid:[0-9]+}", c.RuleByIdHandler)
}

// DecodeRequestBody is a helper function to decoder request bodies into a
// particular interface.
func DecodeRequestBody(r *http.Request, value interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(value)
}
