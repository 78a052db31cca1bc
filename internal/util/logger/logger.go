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
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nativehints.apache.org/nativehints-go/internal/types/logger"
)

// Logger is a logr.Logger backed by zap that keeps the per-component
// level table so named children can pick their own verbosity.
type Logger struct {
	logr.Logger
	out           io.Writer
	logging       *logger.Logging
	sugaredLogger *zap.SugaredLogger
}

func NewLogger(w io.Writer, logging *logger.Logging) Logger {

	if logging == nil {
		logging = logger.DefaultLogging()
	}
	zl := initZapLogger(w, logging, logging.Level[logger.LogComponentDefault])

	return Logger{
		Logger:        zapr.NewLogger(zl),
		out:           w,
		logging:       logging,
		sugaredLogger: zl.Sugar(),
	}
}

func DefaultLogger(out io.Writer, level logger.LogLevel) Logger {

	return NewLogger(out, logger.LoggingAt(level))
}

// Discard returns a Logger that drops every record.
func Discard() Logger {

	return DefaultLogger(io.Discard, logger.LogLevelError)
}

// Stderr returns the logger the CLI uses before the configuration is known.
func Stderr() Logger {

	return DefaultLogger(os.Stderr, logger.LogLevelInfo)
}

// WithName returns a new Logger instance with the specified name element added
// to the Logger's name. The component level configured for name, if any,
// replaces the inherited level.
func (l Logger) WithName(name string) Logger {

	logLevel := l.logging.Level[logger.LogComponent(name)]
	zl := initZapLogger(l.out, l.logging, logLevel)

	return Logger{
		Logger:        zapr.NewLogger(zl).WithName(name),
		logging:       l.logging,
		out:           l.out,
		sugaredLogger: zl.Sugar().Named(name),
	}
}

// WithValues returns a new Logger instance with additional key/value pairs.
func (l Logger) WithValues(keysAndValues ...interface{}) Logger {

	l.Logger = l.Logger.WithValues(keysAndValues...)
	l.sugaredLogger = l.sugaredLogger.With(keysAndValues...)
	return l
}

// Warn logs at warn level; logr itself only knows info and error.
func (l Logger) Warn(msg string, keysAndValues ...interface{}) {

	l.sugaredLogger.Warnw(msg, keysAndValues...)
}

// Sugar exposes the printf-style zap API for the same sink.
func (l Logger) Sugar() *zap.SugaredLogger {

	return l.sugaredLogger
}

func initZapLogger(w io.Writer, logging *logger.Logging, level logger.LogLevel) *zap.Logger {

	if w == nil {
		w = io.Discard
	}
	parseLevel, err := zapcore.ParseLevel(string(logging.EffectiveLevel(level)))
	if err != nil {
		parseLevel = zapcore.InfoLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(w), zap.NewAtomicLevelAt(parseLevel))

	return zap.New(core, zap.AddCaller())
}
