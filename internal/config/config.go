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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"nativehints.apache.org/nativehints-go/internal/constants"
	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	"nativehints.apache.org/nativehints-go/internal/store"
	cfgtypes "nativehints.apache.org/nativehints-go/internal/types/config"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	loggertypes "nativehints.apache.org/nativehints-go/internal/types/logger"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// Loader reads a build configuration file and applies environment overrides.
type Loader struct {
	cfgPath string
	env     *EnvConfigLoader
	logger  logger.Logger
}

// New creates a configuration loader. An empty path loads defaults plus
// environment overrides only.
func New(cfgPath string, log logger.Logger) *Loader {

	return &Loader{
		cfgPath: cfgPath,
		env:     NewEnvConfigLoader(log),
		logger:  log.WithName("config"),
	}
}

func (l *Loader) Path() string {
	return l.cfgPath
}

// Load reads the file, fills defaults, overlays the environment and validates.
func (l *Loader) Load() (*cfgtypes.BuildConfig, error) {
	cfg := &cfgtypes.BuildConfig{}
	if l.cfgPath != "" {
		parsed, err := l.parseConfigFile(l.cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}

	l.env.Apply(cfg)
	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		l.logger.Error(err, "config validation failed", "path", l.cfgPath)
		return nil, err
	}

	l.logger.Info("configuration loaded", "path", l.cfgPath, "component", cfg.Component)
	return cfg, nil
}

// parseConfigFile parses the YAML config file
func (l *Loader) parseConfigFile(path string) (*cfgtypes.BuildConfig, error) {
	// Resolve symlinks to handle Kubernetes ConfigMap mounts
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		l.logger.Error(err, "failed to read config file", "path", resolved)
		return nil, err
	}

	var cfg cfgtypes.BuildConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		l.logger.Error(err, "failed to parse config file", "path", resolved)
		return nil, fmt.Errorf("failed to parse config file %s: %w", resolved, err)
	}

	// Relative paths in the file are relative to the file itself.
	base := filepath.Dir(resolved)
	if cfg.Catalog != "" && !filepath.IsAbs(cfg.Catalog) {
		cfg.Catalog = filepath.Join(base, cfg.Catalog)
	}
	for i, dir := range cfg.Facilities.Classpath {
		if !filepath.IsAbs(dir) {
			cfg.Facilities.Classpath[i] = filepath.Join(base, dir)
		}
	}
	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func applyDefaults(cfg *cfgtypes.BuildConfig) {
	if cfg.Component == "" {
		cfg.Component = constants.DefaultComponent
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = string(emitter.DefaultFormat)
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = constants.DefaultOutputFile
	}
	if cfg.Facilities.Env == "" {
		cfg.Facilities.Env = constants.FacilitiesEnv
	}
	if cfg.Store.Enabled && cfg.Store.Platform == "" {
		cfg.Store.Platform = constants.DefaultStorePlatform
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = constants.DefaultStoreTable
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = string(loggertypes.LogLevelInfo)
	}
}

// ValidateConfig checks the structural fields. Engine options are left to
// the evaluator.
func ValidateConfig(cfg *cfgtypes.BuildConfig) error {
	if cfg == nil {
		return errtypes.ErrConfigIsNil
	}

	if _, err := emitter.ParseFormat(cfg.Output.Format); err != nil {
		return errtypes.NewInvalidConfigurationError("output.format", cfg.Output.Format,
			"unknown manifest format", formatNames()...)
	}

	level := loggertypes.LogLevel(cfg.Log.Level)
	if !level.IsValid() {
		return errtypes.NewInvalidConfigurationError("log.level", cfg.Log.Level,
			"unknown log level", levelNames()...)
	}
	for component, l := range cfg.Log.Components {
		if !loggertypes.LogLevel(l).IsValid() {
			return errtypes.NewInvalidConfigurationError("log.components."+component, l,
				"unknown log level", levelNames()...)
		}
	}

	if cfg.Store.Enabled {
		if _, err := store.ParsePlatform(cfg.Store.Platform); err != nil {
			return errtypes.NewInvalidConfigurationError("store.platform", cfg.Store.Platform,
				"unknown store platform", store.PlatformNames()...)
		}
		if cfg.Store.DSN == "" {
			return errtypes.NewInvalidConfigurationError("store.dsn", "", "required when the store is enabled")
		}
	}
	return nil
}

// PrintConfig logs the effective configuration.
func (l *Loader) PrintConfig(cfg *cfgtypes.BuildConfig) {
	if cfg == nil {
		l.logger.Info("config is nil")
		return
	}
	l.logger.Info("current configuration",
		"component", cfg.Component,
		"catalog", catalogName(cfg),
		"protocolCompression", cfg.Options.ProtocolCompression,
		"metricsEnabled", cfg.Options.MetricsEnabled,
		"healthEnabled", cfg.Options.HealthEnabled,
		"driverVersion", cfg.Options.DriverVersion,
		"format", cfg.Output.Format,
		"output", cfg.Output.Path,
		"store", cfg.Store.Enabled,
		"log_level", cfg.Log.Level,
	)
}

func catalogName(cfg *cfgtypes.BuildConfig) string {
	if cfg.Catalog == "" {
		return "embedded:" + cfg.Component
	}
	return cfg.Catalog
}

func formatNames() []string {
	var names []string
	for _, f := range emitter.Formats() {
		names = append(names, string(f))
	}
	return names
}

func levelNames() []string {
	var names []string
	for _, l := range loggertypes.ValidLogLevels {
		names = append(names, string(l))
	}
	return names
}

// IsInvalidConfiguration reports whether err was caused by a bad value.
func IsInvalidConfiguration(err error) bool {
	var invalid *errtypes.InvalidConfigurationError
	return errors.As(err, &invalid)
}
