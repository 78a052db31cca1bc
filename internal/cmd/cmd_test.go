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

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
)

func execute(t *testing.T, c *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&stderr)
	c.SetArgs(args)
	c.SilenceUsage = true
	c.SilenceErrors = true
	err := c.Execute()
	return stdout.String(), stderr.String(), err
}

type manifestDoc struct {
	Version int `json:"version"`
	Entries []struct {
		Kind    string `json:"kind"`
		Name    string `json:"name"`
		Payload string `json:"payload"`
	} `json:"entries"`
}

func names(doc manifestDoc) map[string]bool {
	out := make(map[string]bool, len(doc.Entries))
	for _, e := range doc.Entries {
		out[e.Name] = true
	}
	return out
}

func TestEmitDefaults(t *testing.T) {
	stdout, stderr, err := execute(t, EmitCommand())
	require.NoError(t, err)

	var doc manifestDoc
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	got := names(doc)
	assert.True(t, got["cassandra-client"])
	assert.False(t, got["net.jpountz.lz4.LZ4Compressor"])
	assert.Contains(t, stderr, "component=cassandra-client")
}

func TestEmitLz4ToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hints", "manifest.arrow")
	_, _, err := execute(t, EmitCommand(),
		"--set", "protocolCompression=lz4",
		"--facility", "lz4-java",
		"--format", "arrow",
		"-o", out,
		"-q",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	entries, err := emitter.DecodeArrow(data)
	require.NoError(t, err)

	found := map[string]bool{}
	for _, e := range entries {
		found[e.Name] = true
	}
	assert.True(t, found["net.jpountz.lz4.LZ4Compressor"])
	assert.True(t, found["protocol-compression-lz4"])
}

func TestEmitInvalidCompression(t *testing.T) {
	stdout, _, err := execute(t, EmitCommand(), "--set", "protocolCompression=zstd-unsupported")
	require.Error(t, err)
	assert.Empty(t, stdout, "no partial manifest")

	var invalid *errtypes.InvalidConfigurationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "protocolCompression", invalid.Key)
	assert.Equal(t, 2, ExitCode(err))
}

func TestEmitFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(lib, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "quarkus-micrometer-3.2.0.jar"), []byte("PK"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "java-driver-metrics-micrometer-4.17.0.jar"), []byte("PK"), 0o644))

	cfgPath := filepath.Join(dir, "build.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
options:
  metricsEnabled: "true"
  healthEnabled: "false"
facilities:
  classpath: [lib]
output:
  format: json
metrics:
  textfile: metrics.prom
`), 0o644))

	// textfile is relative to the working directory, so pin it
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	stdout, _, err := execute(t, EmitCommand(), "-c", cfgPath, "-q")
	require.NoError(t, err)

	var doc manifestDoc
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	got := names(doc)
	assert.True(t, got["metrics"])
	assert.True(t, got["metrics-micrometer-factory"])
	assert.False(t, got["health-check"])

	_, err = os.Stat(filepath.Join(dir, "metrics.prom"))
	assert.NoError(t, err)
}

func TestEmitWatchNeedsConfig(t *testing.T) {
	_, _, err := execute(t, EmitCommand(), "--watch", "-q")
	assert.Error(t, err)
}

func TestCatalogCommand(t *testing.T) {
	stdout, stderr, err := execute(t, CatalogCommand())
	require.NoError(t, err)
	assert.Contains(t, stdout, "net.jpountz.lz4.LZ4Compressor")
	assert.Contains(t, stdout, `enum("protocolCompression") == "lz4"`)
	assert.Contains(t, stdout, "(metrics-micrometer|metrics-microprofile)")
	assert.Contains(t, stderr, "cassandra-client:")
}

func TestCatalogCommandCustomDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\ncomponent: demo\ncapabilities:\n  - name: demo\n    kind: feature-flag\n"), 0o644))

	stdout, _, err := execute(t, CatalogCommand(), "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "feature-flag")

	path = filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\ncomponent: demo\ncapabilities:\n  - name: demo\n    kind: bean\n"), 0o644))
	_, _, err = execute(t, CatalogCommand(), "--catalog", path)
	assert.ErrorIs(t, err, errtypes.ErrCatalogDocumentSchema)
}

func TestFacilitiesCommand(t *testing.T) {
	lib := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(lib, "snappy-java-1.1.10.jar"), []byte("PK"), 0o644))

	stdout, _, err := execute(t, FacilitiesCommand(), "--classpath", lib, "--facility", "custom-thing")
	require.NoError(t, err)
	assert.Regexp(t, `snappy-java\s+true`, stdout)
	assert.Regexp(t, `lz4-java\s+false`, stdout)
	assert.Contains(t, stdout, "custom-thing")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, VersionCommand())
	require.NoError(t, err)
	assert.Contains(t, stdout, "nativehints "+Version)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(errtypes.NewInvalidConfigurationError("k", "v", "bad")))
	assert.Equal(t, 3, ExitCode(errtypes.NewDuplicateCapabilityError("catalog", "x")))
	assert.Equal(t, 3, ExitCode(errtypes.NewLifecycleViolationError("emit", "Uninitialized")))
	assert.Equal(t, 1, ExitCode(errors.New("disk full")))
}
