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
	"fmt"
	"net/http"

	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/core"
	"github.com/jasonish/rulecat/httputil"
	"github.com/jasonish/rulecat/log"
	"github.com/jasonish/rulecat/rules"
	"github.com/jasonish/rulecat/server/api"
	"github.com/jasonish/rulecat/server/router"
)

type Server struct {
	conf   *config.Config
	router *router.Router
}

// NewServer creates the HTTP API server for the rules in source. Store may
// be nil.
func NewServer(conf *config.Config, source *rules.Source, store core.RuleStore) *Server {
	rootRouter := router.NewRouter()

	apiContext := api.NewApiContext(source, store)
	apiContext.InitRoutes(rootRouter.Subrouter("/api/1"))

	return &Server{
		conf:   conf,
		router: rootRouter,
	}
}

// Handler returns the server's handler with request logging, panic
// recovery and response compression.
func (s *Server) Handler() http.Handler {
	return httputil.NewChain(
		httputil.RequestLogger(log.Writer(log.INFO)),
		httputil.Recovery(log.AtLevel(log.ERROR)),
		httputil.Compress,
	).Then(s.router)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.conf.Server.Host, s.conf.Server.Port)
	log.Info("Listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}
