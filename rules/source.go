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

package rules

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jasonish/rulecat/config"
	"github.com/jasonish/rulecat/log"
	"github.com/pkg/errors"
)

const DefaultReloadDelay = 500 * time.Millisecond

// Source is the rule map built from the configured sources with the policy
// applied. It can be shared between goroutines, access to the map goes
// through View and Update.
type Source struct {
	conf   *config.Config
	policy *Policy

	// Time to wait after a change to the sources before reloading, so a
	// burst of changes results in a single reload.
	ReloadDelay time.Duration

	// Called with the new map after each reload by the watcher, while
	// holding the write lock.
	OnReload func(ruleMap *RuleMap)

	lock    sync.RWMutex
	ruleMap *RuleMap
}

func NewSource(conf *config.Config) (*Source, error) {
	policy, err := NewPolicy(conf)
	if err != nil {
		return nil, err
	}
	return &Source{
		conf:        conf,
		policy:      policy,
		ReloadDelay: DefaultReloadDelay,
		ruleMap:     NewEmptyRuleMap(),
	}, nil
}

// Load reads the sources, applies the policy and replaces the current map.
func (s *Source) Load() PolicyResult {
	ruleMap := NewRuleMap(s.conf.Sources)
	result := s.policy.Apply(ruleMap)
	log.Info("Policy: enabled %d, disabled %d, modified %d rules.",
		result.Enabled, result.Disabled, result.Modified)

	s.lock.Lock()
	s.ruleMap = ruleMap
	s.lock.Unlock()

	return result
}

// View calls fn with the current map under the read lock. Rules must not be
// modified by fn.
func (s *Source) View(fn func(ruleMap *RuleMap)) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	fn(s.ruleMap)
}

// Update calls fn with the current map under the write lock.
func (s *Source) Update(fn func(ruleMap *RuleMap) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn(s.ruleMap)
}

// watchPaths returns the directories to watch for the configured sources.
// Files are watched through their directory as editors often replace
// files rather than write to them.
func (s *Source) watchPaths() []string {
	seen := map[string]bool{}
	paths := []string{}
	for _, source := range s.conf.Sources {
		dir := source
		if info, err := os.Stat(source); err != nil || !info.IsDir() {
			dir = filepath.Dir(source)
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		paths = append(paths, dir)
	}
	return paths
}

// Watch reloads the rules when a source changes. The watches are in place
// when Watch returns, watching stops when ctx is done.
func (s *Source) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}

	for _, path := range s.watchPaths() {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		log.Debug("Watching %s for changes.", path)
	}

	go s.watch(ctx, watcher)

	return nil
}

func (s *Source) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var timer <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			log.Debug("Source changed: %s", event)
			if timer == nil {
				timer = time.After(s.ReloadDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("Source watcher error: %v", err)
		case <-timer:
			timer = nil
			log.Info("Sources changed, reloading rules.")
			s.Load()
			if s.OnReload != nil {
				s.lock.Lock()
				s.OnReload(s.ruleMap)
				s.lock.Unlock()
			}
		}
	}
}
