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

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loggertype "nativehints.apache.org/nativehints-go/internal/types/logger"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, loggertype.DefaultLogging())
	logger.Info("kv msg", "key", "value")
	logger.Sugar().Infof("template %s %d", "string", 123)

	out := buf.String()
	assert.Contains(t, out, "kv msg")
	assert.Contains(t, out, "template string 123")

	defaultLogger := DefaultLogger(&buf, loggertype.LogLevelInfo)
	assert.NotNil(t, defaultLogger.logging)
	assert.NotNil(t, defaultLogger.sugaredLogger)
}

func TestLoggerWithNameUsesComponentLevel(t *testing.T) {
	var buf bytes.Buffer

	config := loggertype.DefaultLogging()
	config.Level[loggertype.LogComponentCatalog] = loggertype.LogLevelDebug

	logger := NewLogger(&buf, config).WithName(string(loggertype.LogComponentCatalog))
	logger.Info("info message")
	logger.Sugar().Debugf("debug message")

	out := buf.String()
	assert.Contains(t, out, string(loggertype.LogComponentCatalog))
	assert.Contains(t, out, "info message")
	assert.Contains(t, out, "debug message")
}

func TestLoggerDefaultLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer

	logger := DefaultLogger(&buf, loggertype.LogLevelWarn).WithName("emitter")
	logger.Info("hidden")
	logger.Warn("shown", "capability", "lz4.compressor")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "lz4.compressor")
}

func TestLoggerWithValues(t *testing.T) {
	var buf bytes.Buffer

	logger := DefaultLogger(&buf, loggertype.LogLevelInfo).WithValues("component", "cassandra-client")
	logger.Warn("warned")
	logger.Info("informed")

	out := buf.String()
	require.Contains(t, out, "warned")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("cassandra-client")))
}

func TestDiscardDropsEverything(t *testing.T) {
	logger := Discard()
	logger.Info("nothing")
	logger.Error(nil, "nothing")
	assert.NotNil(t, logger.Sugar())
}
