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

// nativehints logger related types

type LogLevel string

const (
	// LogLevelDebug defines the "debug" logger level.
	LogLevelDebug LogLevel = "debug"

	// LogLevelInfo defines the "info" logger level.
	LogLevelInfo LogLevel = "info"

	// LogLevelWarn defines the "warn" logger level.
	LogLevelWarn LogLevel = "warn"

	// LogLevelError defines the "error" logger level.
	LogLevelError LogLevel = "error"
)

// ValidLogLevels lists the accepted level literals in configuration files.
var ValidLogLevels = []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}

type Logging struct {
	Level map[LogComponent]LogLevel `json:"level,omitempty" yaml:"level,omitempty"`
}

type LogComponent string

const (
	LogComponentDefault LogComponent = "default"

	LogComponentCatalog   LogComponent = "catalog"
	LogComponentEvaluator LogComponent = "evaluator"
	LogComponentRecorder  LogComponent = "recorder"
	LogComponentEmitter   LogComponent = "emitter"
	LogComponentFacility  LogComponent = "facility"
	LogComponentSession   LogComponent = "session"
	LogComponentStore     LogComponent = "store"
	LogComponentConfig    LogComponent = "config"
)

func DefaultLogging() *Logging {

	return &Logging{
		Level: map[LogComponent]LogLevel{
			LogComponentDefault: LogLevelInfo,
		},
	}
}

// LoggingAt returns a Logging whose default component logs at level.
func LoggingAt(level LogLevel) *Logging {

	logging := DefaultLogging()
	if level != "" {
		logging.Level[LogComponentDefault] = level
	}
	return logging
}

// EffectiveLevel resolves the level for a component, falling back to the default component.
func (logging *Logging) EffectiveLevel(level LogLevel) LogLevel {

	if level != "" {
		return level
	}

	if logging.Level[LogComponentDefault] != "" {

		return logging.Level[LogComponentDefault]
	}

	return LogLevelInfo
}

func (logging *Logging) SetDefaults() {

	if logging == nil {
		return
	}
	if logging.Level == nil {
		logging.Level = map[LogComponent]LogLevel{}
	}
	if logging.Level[LogComponentDefault] == "" {

		logging.Level[LogComponentDefault] = LogLevelInfo
	}
}

// IsValid reports whether level is one of ValidLogLevels.
func (level LogLevel) IsValid() bool {

	for _, l := range ValidLogLevels {
		if l == level {
			return true
		}
	}
	return false
}
