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

package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	"nativehints.apache.org/nativehints-go/internal/engine/recorder"
	"nativehints.apache.org/nativehints-go/internal/types/capability"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

func TestPrint(t *testing.T) {
	m, err := recorder.NewManifest(
		capability.Capability{Name: "cassandra-client", Kind: capability.FeatureFlag},
		capability.Capability{Name: "a.B", Kind: capability.ReflectionHint, Payload: "a.B"},
		capability.Capability{Name: "c.D", Kind: capability.ReflectionHint, Payload: "c.D"},
	)
	require.NoError(t, err)
	out, err := emitter.New(logger.Discard()).Emit(m, emitter.FormatJSON)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(&buf, logger.Discard()).Print(Summary{
		Version:   "v0.1.0",
		Component: "cassandra-client",
		Manifest:  m,
		Output:    out,
		Warnings: []*errtypes.MissingOptionalFacilityWarning{
			errtypes.NewMissingOptionalFacilityWarning("metrics", []string{"metrics-micrometer", "metrics-microprofile"}, true, ""),
		},
	}))

	text := buf.String()
	assert.Contains(t, text, "component=cassandra-client")
	assert.Contains(t, text, out.Digest)
	assert.Contains(t, text, "reflection-hint    2")
	assert.Contains(t, text, "feature-flag       1")
	assert.Contains(t, text, "warnings   1")
	assert.Contains(t, text, `capability "metrics" disabled`)
	assert.NotContains(t, text, "published")
}
