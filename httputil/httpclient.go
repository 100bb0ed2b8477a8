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

package httputil

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jasonish/rulecat/log"
	"github.com/pkg/errors"
)

// StatusError is returned for a response with a non 2xx status. Message is
// the error message from a JSON error response if there was one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type HttpClient struct {
	baseUrl    string
	httpClient *http.Client
}

func NewHttpClient() *HttpClient {
	httpClient := &HttpClient{
		httpClient: &http.Client{},
	}
	httpClient.httpClient.CheckRedirect = httpClient.CheckRedirect
	return httpClient
}

func (c *HttpClient) SetBaseUrl(baseUrl string) {
	c.baseUrl = strings.TrimRight(baseUrl, "/")
}

func (c *HttpClient) DisableCertCheck(disableCertCheck bool) {
	c.httpClient.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: disableCertCheck,
		},
	}
}

func (c *HttpClient) CheckRedirect(request *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	log.Debug("Following redirect to %s", request.URL)
	return nil
}

func (c *HttpClient) Do(request *http.Request) (*http.Response, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return response, errors.Wrapf(err, "%s %s", request.Method, request.URL)
	}
	return response, nil
}

func (c *HttpClient) Request(method string, path string, contentType string, body io.Reader) (*http.Response, error) {
	request, err := http.NewRequest(method, fmt.Sprintf("%s/%s", c.baseUrl, path), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	return c.Do(request)
}

func (c *HttpClient) Get(path string) (*http.Response, error) {
	return c.Request("GET", path, "", nil)
}

func (c *HttpClient) Post(path string, contentType string, body io.Reader) (*http.Response, error) {
	return c.Request("POST", path, contentType, body)
}

// DecodeResponse decodes a JSON response body into value, closing the body.
// A non 2xx response is returned as a *StatusError.
func DecodeResponse(response *http.Response, value interface{}) error {
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		statusError := &StatusError{StatusCode: response.StatusCode}
		var errorResponse struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(response.Body).Decode(&errorResponse); err == nil {
			statusError.Message = errorResponse.Error.Message
		}
		return statusError
	}

	decoder := json.NewDecoder(response.Body)
	decoder.UseNumber()
	return decoder.Decode(value)
}

func (c *HttpClient) GetJson(path string, response interface{}) error {
	r, err := c.Get(path)
	if err != nil {
		return err
	}
	return DecodeResponse(r, response)
}

func (c *HttpClient) PostDecodeResponse(path string, contentType string, body io.Reader, response interface{}) error {
	r, err := c.Post(path, contentType, body)
	if err != nil {
		return err
	}
	return DecodeResponse(r, response)
}
