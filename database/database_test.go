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

package database

import (
	"testing"

	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRuleStore(t *testing.T) {
	store, err := OpenRuleStore(config.Database{})
	require.Nil(t, err)
	assert.Nil(t, store)

	store, err = OpenRuleStore(config.Database{
		Type:     "sqlite",
		Filename: sqlite.MemoryFilename,
	})
	require.Nil(t, err)
	require.NotNil(t, store)
	defer store.Close()

	count, err := store.Count()
	require.Nil(t, err)
	assert.Equal(t, 0, count)
}

func TestOpenRuleStoreErrors(t *testing.T) {
	_, err := OpenRuleStore(config.Database{Type: "sqlite"})
	assert.NotNil(t, err)

	_, err = OpenRuleStore(config.Database{Type: "postgres"})
	assert.NotNil(t, err)

	_, err = OpenRuleStore(config.Database{Type: "mysql"})
	assert.EqualError(t, err, "unsupported database type: mysql")
}
