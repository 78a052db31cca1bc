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

package err

import (
	"errors"
	"fmt"
	"strings"
)

// Structural errors
var (
	ErrConfigIsNil           = errors.New("build config is nil")
	ErrConfigPathEmpty       = errors.New("config path is empty")
	ErrCatalogDocumentEmpty  = errors.New("catalog document is empty")
	ErrCatalogDocumentSchema = errors.New("catalog document does not match schema")
	ErrCapabilityNameEmpty   = errors.New("capability name is empty")
	ErrUnknownKind           = errors.New("unknown capability kind")
	ErrUnknownFormat         = errors.New("unknown manifest format")
	ErrUnknownPlatform       = errors.New("unknown store platform")
	ErrManifestIsNil         = errors.New("manifest is nil")
	ErrManifestNotFound      = errors.New("manifest not found")
	ErrSessionAborted        = errors.New("build session aborted")
)

// DuplicateCapabilityError is returned when a capability name is registered
// in the catalog, or activated in the recorder, more than once.
type DuplicateCapabilityError struct {
	Name  string
	Stage string // "catalog" or "recorder"
}

func (e *DuplicateCapabilityError) Error() string {
	return fmt.Sprintf("duplicate capability %q in %s", e.Name, e.Stage)
}

func NewDuplicateCapabilityError(stage, name string) *DuplicateCapabilityError {
	return &DuplicateCapabilityError{Name: name, Stage: stage}
}

// InvalidConfigurationError reports a configuration value the engine cannot interpret.
type InvalidConfigurationError struct {
	Key      string
	Value    string
	Accepted []string
	Reason   string
}

func (e *InvalidConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid configuration %q", e.Key)
	if e.Value != "" {
		fmt.Fprintf(&b, ": value %q", e.Value)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if len(e.Accepted) > 0 {
		fmt.Fprintf(&b, " (accepted: {%s})", strings.Join(e.Accepted, ", "))
	}
	return b.String()
}

func NewInvalidConfigurationError(key, value, reason string, accepted ...string) *InvalidConfigurationError {
	return &InvalidConfigurationError{
		Key:      key,
		Value:    value,
		Reason:   reason,
		Accepted: accepted,
	}
}

// LifecycleViolationError means a call arrived in the wrong build phase.
// It always indicates a caller bug.
type LifecycleViolationError struct {
	Operation string
	Phase     string
	Expected  []string
}

func (e *LifecycleViolationError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("lifecycle violation: %s is not allowed in phase %s", e.Operation, e.Phase)
	}
	return fmt.Sprintf("lifecycle violation: %s is not allowed in phase %s (expected %s)",
		e.Operation, e.Phase, strings.Join(e.Expected, " or "))
}

func NewLifecycleViolationError(operation, phase string, expected ...string) *LifecycleViolationError {
	return &LifecycleViolationError{
		Operation: operation,
		Phase:     phase,
		Expected:  expected,
	}
}

// MissingOptionalFacilityWarning records a capability that was wanted by the
// configuration but skipped because an optional facility is absent.
// It implements error so it can travel through logging helpers, but it never
// aborts a build.
type MissingOptionalFacilityWarning struct {
	Capability string
	Missing    []string
	AnyOf      bool
	Message    string
}

func (w *MissingOptionalFacilityWarning) Error() string {
	join := " and "
	if w.AnyOf {
		join = " or "
	}
	msg := fmt.Sprintf("capability %q disabled: missing facility %s", w.Capability, strings.Join(w.Missing, join))
	if w.Message != "" {
		msg += ": " + w.Message
	}
	return msg
}

func NewMissingOptionalFacilityWarning(capability string, missing []string, anyOf bool, message string) *MissingOptionalFacilityWarning {
	return &MissingOptionalFacilityWarning{
		Capability: capability,
		Missing:    missing,
		AnyOf:      anyOf,
		Message:    message,
	}
}

// Kind classifies err for metrics and exit codes.
func Kind(err error) string {
	var (
		dup       *DuplicateCapabilityError
		invalid   *InvalidConfigurationError
		lifecycle *LifecycleViolationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &dup):
		return "duplicate-capability"
	case errors.As(err, &invalid):
		return "invalid-configuration"
	case errors.As(err, &lifecycle):
		return "lifecycle-violation"
	default:
		return "other"
	}
}
