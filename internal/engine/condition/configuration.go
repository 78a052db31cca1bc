// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package condition

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
)

// Recognized option keys.
const (
	OptionProtocolCompression = "protocolCompression"
	OptionMetricsEnabled      = "metricsEnabled"
	OptionHealthEnabled       = "healthEnabled"
	OptionDriverVersion       = "driverVersion"
)

// Protocol compression literals.
const (
	CompressionNone   = "none"
	CompressionLZ4    = "lz4"
	CompressionSnappy = "snappy"
)

type OptionType int

const (
	OptionString OptionType = iota
	OptionEnum
	OptionBool
	OptionVersion
)

// OptionSpec declares how a configuration key is interpreted.
type OptionSpec struct {
	Key             string
	Type            OptionType
	Accepted        []string
	Default         string
	CaseInsensitive bool
}

// DefaultOptions are the build-time options of the Cassandra client integration.
var DefaultOptions = []OptionSpec{
	{
		Key:             OptionProtocolCompression,
		Type:            OptionEnum,
		Accepted:        []string{CompressionNone, CompressionLZ4, CompressionSnappy},
		Default:         CompressionNone,
		CaseInsensitive: true,
	},
	{Key: OptionMetricsEnabled, Type: OptionBool, Default: "false"},
	{Key: OptionHealthEnabled, Type: OptionBool, Default: "true"},
	{Key: OptionDriverVersion, Type: OptionVersion},
}

var boolLiterals = []string{"true", "false"}

// Configuration is the read-only key/value input of one build.
type Configuration struct {
	values  map[string]string
	options map[string]OptionSpec
}

// NewConfiguration copies values. With no specs, DefaultOptions apply.
func NewConfiguration(values map[string]string, specs ...OptionSpec) Configuration {
	if len(specs) == 0 {
		specs = DefaultOptions
	}
	c := Configuration{
		values:  make(map[string]string, len(values)),
		options: make(map[string]OptionSpec, len(specs)),
	}
	for k, v := range values {
		c.values[k] = v
	}
	for _, spec := range specs {
		c.options[spec.Key] = spec
	}
	return c
}

// Lookup returns the raw value for key, or the declared default. A blank
// value counts as unset.
func (c Configuration) Lookup(key string) (string, bool) {
	if v, ok := c.values[key]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	if spec, ok := c.options[key]; ok && spec.Default != "" {
		return spec.Default, true
	}
	return "", false
}

// Keys returns the explicitly set keys, sorted.
func (c Configuration) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate interprets every declared option once and returns the first failure.
func (c Configuration) Validate() error {
	keys := make([]string, 0, len(c.options))
	for k := range c.options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var err error
		switch c.options[key].Type {
		case OptionEnum:
			_, err = c.Enum(key)
		case OptionBool:
			_, err = c.Flag(key)
		case OptionVersion:
			_, err = c.Version(key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Enum returns the normalized value of an enum option.
func (c Configuration) Enum(key string) (string, error) {
	spec, err := c.spec(key, OptionEnum)
	if err != nil {
		return "", err
	}
	raw, _ := c.Lookup(key)
	value := strings.TrimSpace(raw)
	if spec.CaseInsensitive {
		value = strings.ToLower(value)
	}
	for _, accepted := range spec.Accepted {
		if value == accepted {
			return value, nil
		}
	}
	return "", errtypes.NewInvalidConfigurationError(key, raw, "unrecognized value", spec.Accepted...)
}

// Flag returns the value of a boolean option.
func (c Configuration) Flag(key string) (bool, error) {
	if _, err := c.spec(key, OptionBool); err != nil {
		return false, err
	}
	raw, _ := c.Lookup(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, errtypes.NewInvalidConfigurationError(key, raw, "not a boolean", boolLiterals...)
	}
	return b, nil
}

// Version returns the parsed semantic version, or nil when unset.
func (c Configuration) Version(key string) (*semver.Version, error) {
	if _, err := c.spec(key, OptionVersion); err != nil {
		return nil, err
	}
	raw, _ := c.Lookup(key)
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := semver.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil, errtypes.NewInvalidConfigurationError(key, raw, "not a semantic version")
	}
	return v, nil
}

// Setting returns a free-form value; absent keys read as "".
func (c Configuration) Setting(key string) string {
	v, _ := c.Lookup(key)
	return v
}

func (c Configuration) spec(key string, want OptionType) (OptionSpec, error) {
	spec, ok := c.options[key]
	if !ok {
		return OptionSpec{}, errtypes.NewInvalidConfigurationError(key, "", "option is not declared")
	}
	if spec.Type != want {
		return OptionSpec{}, errtypes.NewInvalidConfigurationError(key, "", "option has a different type")
	}
	return spec, nil
}
