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
	"os"
	"strings"

	"nativehints.apache.org/nativehints-go/internal/constants"
	cfgtypes "nativehints.apache.org/nativehints-go/internal/types/config"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// Environment overrides. Values are copied verbatim; validation happens later.
const (
	EnvProtocolCompression = constants.EnvPrefix + "PROTOCOL_COMPRESSION"
	EnvMetricsEnabled      = constants.EnvPrefix + "METRICS_ENABLED"
	EnvHealthEnabled       = constants.EnvPrefix + "HEALTH_ENABLED"
	EnvDriverVersion       = constants.EnvPrefix + "DRIVER_VERSION"
	EnvLogLevel            = constants.EnvPrefix + "LOG_LEVEL"
	EnvOutputFormat        = constants.EnvPrefix + "OUTPUT_FORMAT"
)

// EnvConfigLoader handles environment variable configuration
type EnvConfigLoader struct {
	logger logger.Logger
}

func NewEnvConfigLoader(log logger.Logger) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log.WithName("config"),
	}
}

// Apply overrides cfg with every non-empty environment variable it knows.
func (l *EnvConfigLoader) Apply(cfg *cfgtypes.BuildConfig) {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvProtocolCompression, &cfg.Options.ProtocolCompression},
		{EnvMetricsEnabled, &cfg.Options.MetricsEnabled},
		{EnvHealthEnabled, &cfg.Options.HealthEnabled},
		{EnvDriverVersion, &cfg.Options.DriverVersion},
		{EnvLogLevel, &cfg.Log.Level},
		{EnvOutputFormat, &cfg.Output.Format},
	}

	var applied []string
	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			*o.target = value
			applied = append(applied, o.env)
		}
	}
	if len(applied) > 0 {
		l.logger.Info("configuration overridden by environment", "variables", applied)
	}
}
