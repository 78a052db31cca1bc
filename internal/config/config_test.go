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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgtypes "nativehints.apache.org/nativehints-go/internal/types/config"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

const sampleConfig = `
component: cassandra-client
catalog: catalogs/custom.yaml
options:
  protocolCompression: lz4
  metricsEnabled: "true"
settings:
  quarkus.application.name: orders
facilities:
  static: [metrics-micrometer]
  classpath: [lib]
output:
  format: yaml
  path: build/hints.yaml
log:
  level: DEBUG
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := New(path, logger.Discard()).Load()
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, "cassandra-client", cfg.Component)
	assert.Equal(t, filepath.Join(dir, "catalogs", "custom.yaml"), cfg.Catalog)
	assert.Equal(t, []string{filepath.Join(dir, "lib")}, cfg.Facilities.Classpath)
	assert.Equal(t, "NATIVEHINTS_FACILITIES", cfg.Facilities.Env)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "nativehints_manifest", cfg.Store.Table)

	compression, err := cfg.Configuration().Enum("protocolCompression")
	require.NoError(t, err)
	assert.Equal(t, "lz4", compression)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := New("", logger.Discard()).Load()
	require.NoError(t, err)
	assert.Equal(t, "cassandra-client", cfg.Component)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "-", cfg.Output.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv(EnvProtocolCompression, "snappy")
	t.Setenv(EnvMetricsEnabled, "false")
	t.Setenv(EnvDriverVersion, "4.17.0")
	t.Setenv(EnvOutputFormat, "arrow")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := New(writeConfig(t, sampleConfig), logger.Discard()).Load()
	require.NoError(t, err)
	assert.Equal(t, "snappy", cfg.Options.ProtocolCompression)
	assert.Equal(t, "false", cfg.Options.MetricsEnabled)
	assert.Equal(t, "4.17.0", cfg.Options.DriverVersion)
	assert.Equal(t, "arrow", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"), logger.Discard()).Load()
	assert.Error(t, err)

	_, err = New(writeConfig(t, "options: [broken"), logger.Discard()).Load()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *cfgtypes.BuildConfig {
		return &cfgtypes.BuildConfig{
			Output: cfgtypes.OutputConfig{Format: "json"},
			Log:    cfgtypes.LogConfig{Level: "info"},
		}
	}

	testCases := []struct {
		name   string
		mutate func(*cfgtypes.BuildConfig)
		key    string
	}{
		{name: "valid", mutate: func(*cfgtypes.BuildConfig) {}},
		{name: "bad format", mutate: func(c *cfgtypes.BuildConfig) { c.Output.Format = "xml" }, key: "output.format"},
		{name: "bad level", mutate: func(c *cfgtypes.BuildConfig) { c.Log.Level = "loud" }, key: "log.level"},
		{
			name:   "bad component level",
			mutate: func(c *cfgtypes.BuildConfig) { c.Log.Components = map[string]string{"emitter": "chatty"} },
			key:    "log.components.emitter",
		},
		{
			name:   "bad platform",
			mutate: func(c *cfgtypes.BuildConfig) { c.Store = cfgtypes.StoreConfig{Enabled: true, Platform: "oracle", DSN: "x"} },
			key:    "store.platform",
		},
		{
			name:   "missing dsn",
			mutate: func(c *cfgtypes.BuildConfig) { c.Store = cfgtypes.StoreConfig{Enabled: true, Platform: "mysql"} },
			key:    "store.dsn",
		},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.key == "" {
				assert.NoError(t, err)
				return
			}
			require.True(t, IsInvalidConfiguration(err))
			invalid := err.(*errtypes.InvalidConfigurationError)
			assert.Equal(t, tt.key, invalid.Key)
		})
	}

	assert.ErrorIs(t, ValidateConfig(nil), errtypes.ErrConfigIsNil)
}

func TestWatchConfigAndReload(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	loader := New(path, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *cfgtypes.BuildConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- loader.WatchConfigAndReload(ctx, func(cfg *cfgtypes.BuildConfig) { reloaded <- cfg })
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("options:\n  protocolCompression: snappy\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "snappy", cfg.Options.ProtocolCompression)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
