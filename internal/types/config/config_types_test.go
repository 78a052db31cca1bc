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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loggertypes "nativehints.apache.org/nativehints-go/internal/types/logger"
)

func TestConfiguration(t *testing.T) {
	cfg := &BuildConfig{
		Options: BuildOptions{ProtocolCompression: "LZ4", MetricsEnabled: "true"},
		Settings: map[string]string{
			"protocolCompression": "snappy",
			"application.name":    "orders",
		},
	}

	c := cfg.Configuration()
	compression, err := c.Enum("protocolCompression")
	require.NoError(t, err)
	assert.Equal(t, "lz4", compression)

	enabled, err := c.Flag("metricsEnabled")
	require.NoError(t, err)
	assert.True(t, enabled)

	health, err := c.Flag("healthEnabled")
	require.NoError(t, err)
	assert.True(t, health, "default applies when unset")

	assert.Equal(t, "orders", c.Setting("application.name"))
}

func TestLogging(t *testing.T) {
	cfg := &BuildConfig{Log: LogConfig{Level: "warn", Components: map[string]string{"emitter": "debug"}}}

	logging := cfg.Logging()
	assert.Equal(t, loggertypes.LogLevelWarn, logging.Level[loggertypes.LogComponentDefault])
	assert.Equal(t, loggertypes.LogLevelDebug, logging.Level[loggertypes.LogComponentEmitter])
}
