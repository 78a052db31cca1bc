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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
)

func TestEnumDefaultsAndNormalizes(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  string
	}{
		{name: "default", value: nil, want: CompressionNone},
		{name: "lz4", value: strPtr("lz4"), want: CompressionLZ4},
		{name: "upper case", value: strPtr("LZ4"), want: CompressionLZ4},
		{name: "padded", value: strPtr(" snappy "), want: CompressionSnappy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]string{}
			if tt.value != nil {
				values[OptionProtocolCompression] = *tt.value
			}
			got, err := NewConfiguration(values).Enum(OptionProtocolCompression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnumRejectsUnknownLiteral(t *testing.T) {
	cfg := NewConfiguration(map[string]string{OptionProtocolCompression: "zstd-unsupported"})

	_, err := cfg.Enum(OptionProtocolCompression)

	var invalid *errtypes.InvalidConfigurationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, OptionProtocolCompression, invalid.Key)
	assert.Equal(t, "zstd-unsupported", invalid.Value)
	assert.Equal(t, []string{"none", "lz4", "snappy"}, invalid.Accepted)
}

func TestFlag(t *testing.T) {
	cfg := NewConfiguration(map[string]string{OptionMetricsEnabled: "TRUE"})

	metrics, err := cfg.Flag(OptionMetricsEnabled)
	require.NoError(t, err)
	assert.True(t, metrics)

	health, err := cfg.Flag(OptionHealthEnabled)
	require.NoError(t, err)
	assert.True(t, health, "health defaults to enabled")

	_, err = NewConfiguration(map[string]string{OptionMetricsEnabled: "yes-please"}).Flag(OptionMetricsEnabled)
	var invalid *errtypes.InvalidConfigurationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{"true", "false"}, invalid.Accepted)
}

func TestVersion(t *testing.T) {
	v, err := NewConfiguration(nil).Version(OptionDriverVersion)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewConfiguration(map[string]string{OptionDriverVersion: "4.17.0"}).Version(OptionDriverVersion)
	require.NoError(t, err)
	assert.Equal(t, "4.17.0", v.String())

	_, err = NewConfiguration(map[string]string{OptionDriverVersion: "four"}).Version(OptionDriverVersion)
	assert.Error(t, err)
}

func TestUndeclaredOptionIsInvalid(t *testing.T) {
	_, err := NewConfiguration(nil).Enum("consistency")
	var invalid *errtypes.InvalidConfigurationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "consistency", invalid.Key)

	_, err = NewConfiguration(nil).Flag(OptionProtocolCompression)
	assert.Error(t, err, "enum option read as a flag")
}

func TestConfigurationIsACopy(t *testing.T) {
	values := map[string]string{OptionProtocolCompression: "lz4"}
	cfg := NewConfiguration(values)
	values[OptionProtocolCompression] = "snappy"

	got, err := cfg.Enum(OptionProtocolCompression)
	require.NoError(t, err)
	assert.Equal(t, CompressionLZ4, got)
	assert.Equal(t, []string{OptionProtocolCompression}, cfg.Keys())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewConfiguration(nil).Validate())
	assert.Error(t, NewConfiguration(map[string]string{OptionHealthEnabled: "maybe"}).Validate())
}

func strPtr(s string) *string { return &s }
