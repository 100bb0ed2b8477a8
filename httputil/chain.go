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
	"io"
	"net/http"

	"github.com/gorilla/handlers"
)

// Middleware wraps a handler with another handler.
type Middleware func(http.Handler) http.Handler

// Chain is an ordered list of middleware. The first middleware is the
// outermost.
type Chain []Middleware

func NewChain(middleware ...Middleware) Chain {
	return Chain(middleware)
}

// Append returns a new chain with middleware added after the existing
// middleware. The receiver is not modified.
func (c Chain) Append(middleware ...Middleware) Chain {
	chain := make(Chain, 0, len(c)+len(middleware))
	chain = append(chain, c...)
	return append(chain, middleware...)
}

// Then wraps handler with the middleware in the chain. A nil handler is
// replaced with http.DefaultServeMux.
func (c Chain) Then(handler http.Handler) http.Handler {
	if handler == nil {
		handler = http.DefaultServeMux
	}
	for i := range c {
		handler = c[len(c)-1-i](handler)
	}
	return handler
}

// RequestLogger logs each request to w in the Apache common log format.
func RequestLogger(w io.Writer) Middleware {
	return func(handler http.Handler) http.Handler {
		return handlers.LoggingHandler(w, handler)
	}
}

// Recovery turns a panic in a handler into a 500 response. The panic and
// stack trace are written to logger.
func Recovery(logger handlers.RecoveryHandlerLogger) Middleware {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(true))
}

// Compress gzip or deflate encodes responses when the client accepts it.
func Compress(handler http.Handler) http.Handler {
	return handlers.CompressHandler(handler)
}
