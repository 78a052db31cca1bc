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

package config

import (
	"nativehints.apache.org/nativehints-go/internal/engine/condition"
	loggertypes "nativehints.apache.org/nativehints-go/internal/types/logger"
)

// BuildConfig is the file form of one build.
type BuildConfig struct {
	Component  string            `yaml:"component"`
	Catalog    string            `yaml:"catalog"` // empty selects the embedded catalog
	Options    BuildOptions      `yaml:"options"`
	Settings   map[string]string `yaml:"settings"`
	Facilities FacilitiesConfig  `yaml:"facilities"`
	Output     OutputConfig      `yaml:"output"`
	Store      StoreConfig       `yaml:"store"`
	Metrics    MetricsConfig     `yaml:"metrics"`
	Log        LogConfig         `yaml:"log"`
}

// BuildOptions keeps option values as raw strings. Literal checking belongs
// to the evaluator, which reports the accepted values.
type BuildOptions struct {
	ProtocolCompression string `yaml:"protocolCompression"`
	MetricsEnabled      string `yaml:"metricsEnabled"`
	HealthEnabled       string `yaml:"healthEnabled"`
	DriverVersion       string `yaml:"driverVersion"`
}

type FacilitiesConfig struct {
	Static    []string `yaml:"static"`
	Env       string   `yaml:"env"`
	Classpath []string `yaml:"classpath"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

type StoreConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Platform string `yaml:"platform"`
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
	Addr     string `yaml:"addr"`
}

type LogConfig struct {
	Level      string            `yaml:"level"`
	Components map[string]string `yaml:"components"`
}

// Configuration converts the build options into the engine input. Explicit
// options win over free-form settings with the same key.
func (c *BuildConfig) Configuration() condition.Configuration {
	values := make(map[string]string, len(c.Settings)+4)
	for k, v := range c.Settings {
		values[k] = v
	}
	set := func(key, value string) {
		if value != "" {
			values[key] = value
		}
	}
	set(condition.OptionProtocolCompression, c.Options.ProtocolCompression)
	set(condition.OptionMetricsEnabled, c.Options.MetricsEnabled)
	set(condition.OptionHealthEnabled, c.Options.HealthEnabled)
	set(condition.OptionDriverVersion, c.Options.DriverVersion)
	return condition.NewConfiguration(values)
}

// Logging converts the log section into per-component levels.
func (c *BuildConfig) Logging() *loggertypes.Logging {
	logging := loggertypes.LoggingAt(loggertypes.LogLevel(c.Log.Level))
	for component, level := range c.Log.Components {
		logging.Level[loggertypes.LogComponent(component)] = loggertypes.LogLevel(level)
	}
	return logging
}
