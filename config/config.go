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

package config

import (
	"encoding/json"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const DefaultServerPort = 5637

// Modify describes a change to the text of matching rules.
type Modify struct {
	Match       string `yaml:"match" json:"match"`
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

type Database struct {
	// sqlite or postgres. Empty for no database.
	Type     string `yaml:"type" json:"type,omitempty"`
	Filename string `yaml:"filename" json:"filename,omitempty"`
	DSN      string `yaml:"dsn" json:"dsn,omitempty"`
}

type Server struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type Config struct {
	// Rule files, globs or directories of .rules files.
	Sources []string `yaml:"sources" json:"sources"`

	// Where the resulting rules are written.
	Output string `yaml:"output" json:"output,omitempty"`

	Database Database `yaml:"database" json:"database"`

	// Rule matchers, see rules.NewMatcher.
	Enable  []string `yaml:"enable" json:"enable,omitempty"`
	Disable []string `yaml:"disable" json:"disable,omitempty"`
	Modify  []Modify `yaml:"modify" json:"modify,omitempty"`

	Server Server                 `yaml:"server" json:"server"`
	Extra  map[string]interface{} `yaml:"extra" json:"extra,omitempty"`
}

// New returns a configuration with defaults set.
func New() *Config {
	return &Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: DefaultServerPort,
		},
	}
}

func (c *Config) ToJSON() ([]byte, error) {
	bytes, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// Parse parses a YAML configuration on top of the defaults.
func Parse(buf []byte) (*Config, error) {
	config := New()
	if err := yaml.Unmarshal(buf, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}
	return config, nil
}

func LoadConfig(filename string) (*Config, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	config, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return config, nil
}

func LoadConfigTo(filename string, output interface{}) error {
	buf, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(buf, output)
}
