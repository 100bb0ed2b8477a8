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
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/jasonish/rulecat/ruleparser"
)

type parseRequest struct {
	Rules string `json:"rules"`
	Group string `json:"group"`
}

type parseErrorResponse struct {
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// ParseHandler parses the rules in the request body and returns the parsed
// rules along with an error for each line that failed to parse. The body is
// either rule text, or with a JSON content type an object with the text in
// "rules" and an optional "group".
func (c *ApiContext) ParseHandler(w *ResponseWriter, r *http.Request) error {
	request := parseRequest{}

	if strings.HasPrefix(r.Header.Get("content-type"), "application/json") {
		if err := DecodeRequestBody(r, &request); err != nil {
			return httpBadRequestResponse(err)
		}
	} else {
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			return httpBadRequestResponse(err)
		}
		request.Rules = string(body)
	}

	parsed, err := ruleparser.ParseReader(strings.NewReader(request.Rules),
		request.Group)
	errorResponses := []parseErrorResponse{}
	if err != nil {
		parseErrors, ok := err.(ruleparser.ParseErrors)
		if !ok {
			return err
		}
		for _, parseError := range parseErrors {
			errorResponses = append(errorResponses, parseErrorResponse{
				Line:    parseError.Line,
				Text:    parseError.Text,
				Message: parseError.Err.Error(),
			})
		}
	}

	return w.OkJSON(map[string]interface{}{
		"rules":  parsed,
		"errors": errorResponses,
	})
}
