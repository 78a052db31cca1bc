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

// Package engine drives one build: register, seal, evaluate, freeze, emit.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"nativehints.apache.org/nativehints-go/internal/engine/catalog"
	"nativehints.apache.org/nativehints-go/internal/engine/condition"
	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	"nativehints.apache.org/nativehints-go/internal/engine/evaluator"
	"nativehints.apache.org/nativehints-go/internal/engine/recorder"
	"nativehints.apache.org/nativehints-go/internal/metrics"
	"nativehints.apache.org/nativehints-go/internal/types/capability"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// Session owns the catalog, recorder and emitter of a single build. Every
// error except a missing optional facility aborts it for good.
type Session struct {
	mu sync.Mutex

	phase   Phase
	aborted error

	catalog   *catalog.Catalog
	evaluator *evaluator.Evaluator
	recorder  *recorder.Recorder
	emitter   *emitter.Emitter

	decisions []evaluator.Decision
	warnings  []*errtypes.MissingOptionalFacilityWarning
	manifest  *recorder.Manifest

	emitterOptions []emitter.Option
	logger         logger.Logger
}

type Option func(*Session)

// WithEmitterOptions forwards options to the session emitter.
func WithEmitterOptions(options ...emitter.Option) Option {
	return func(s *Session) {
		s.emitterOptions = append(s.emitterOptions, options...)
	}
}

func NewSession(log logger.Logger, options ...Option) *Session {
	s := &Session{
		logger: log.WithName("session"),
	}
	for _, option := range options {
		option(s)
	}
	s.catalog = catalog.New(log)
	s.evaluator = evaluator.New(log)
	s.recorder = recorder.New(log)
	s.emitter = emitter.New(log, append([]emitter.Option{
		emitter.WithObserver(func(format emitter.Format, elapsed time.Duration) {
			metrics.ObserveEmit(string(format), elapsed)
		}),
	}, s.emitterOptions...)...)
	return s
}

// Register adds a capability to the catalog. Only allowed before Seal.
func (s *Session) Register(item capability.Capability, options ...catalog.RegistrationOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("register", PhaseUninitialized); err != nil {
		return err
	}
	if err := s.catalog.Register(item, options...); err != nil {
		return s.abort(err)
	}
	metrics.CapabilitiesRegistered.Inc()
	return nil
}

// Seal closes the catalog.
func (s *Session) Seal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("seal", PhaseUninitialized); err != nil {
		return err
	}
	s.catalog.Seal()
	s.advance(PhaseCatalogPopulated)
	return nil
}

// Evaluate checks every declared option of cfg, then runs every catalog
// entry against cfg and facilities and records the active ones. Warnings are
// collected, any other error aborts.
func (s *Session) Evaluate(cfg condition.Configuration, facilities condition.Facilities) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("evaluate", PhaseCatalogPopulated); err != nil {
		return err
	}
	// conditions may short-circuit or never read an option
	if err := cfg.Validate(); err != nil {
		return s.abort(err)
	}

	decisions, err := s.evaluator.EvaluateAll(s.catalog.All(), cfg, facilities)
	if err != nil {
		return s.abort(err)
	}
	for _, d := range decisions {
		if !d.Active {
			metrics.Skips.WithLabelValues(string(d.Reason)).Inc()
			if d.Warning != nil {
				s.warnings = append(s.warnings, d.Warning)
				metrics.Warnings.Inc()
				s.logger.Warn(d.Warning.Error(),
					"capability", d.Warning.Capability,
					"missing", d.Warning.Missing)
			}
			continue
		}
		if err := s.recorder.Activate(d.Entry.Capability); err != nil {
			return s.abort(err)
		}
		metrics.Activations.WithLabelValues(d.Entry.Kind.String()).Inc()
	}
	s.decisions = decisions
	s.advance(PhaseConditionsEvaluated)
	return nil
}

// Freeze snapshots the recorder into the final manifest.
func (s *Session) Freeze() (*recorder.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("freeze", PhaseConditionsEvaluated); err != nil {
		return nil, err
	}
	s.manifest = s.recorder.Snapshot()
	metrics.ManifestEntries.Set(float64(s.manifest.Len()))
	s.advance(PhaseManifestFrozen)
	return s.manifest, nil
}

// Emit serializes the frozen manifest. It may be repeated for other formats.
func (s *Session) Emit(format emitter.Format) (*emitter.SerializedManifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("emit", PhaseManifestFrozen, PhaseEmitted); err != nil {
		return nil, err
	}
	out, err := s.emitter.Emit(s.manifest, format)
	if err != nil {
		return nil, s.abort(err)
	}
	if s.phase != PhaseEmitted {
		s.advance(PhaseEmitted)
	}
	return out, nil
}

// Run performs seal, evaluate, freeze and emit in order.
func (s *Session) Run(cfg condition.Configuration, facilities condition.Facilities, format emitter.Format) (*emitter.SerializedManifest, error) {
	if err := s.Seal(); err != nil {
		return nil, err
	}
	if err := s.Evaluate(cfg, facilities); err != nil {
		return nil, err
	}
	if _, err := s.Freeze(); err != nil {
		return nil, err
	}
	return s.Emit(format)
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns the error that aborted the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Warnings returns the missing facility warnings of the evaluation.
func (s *Session) Warnings() []*errtypes.MissingOptionalFacilityWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*errtypes.MissingOptionalFacilityWarning(nil), s.warnings...)
}

// Decisions returns the per-entry outcomes of the evaluation.
func (s *Session) Decisions() []evaluator.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]evaluator.Decision(nil), s.decisions...)
}

// Manifest returns the frozen manifest, or nil before Freeze and after an abort.
func (s *Session) Manifest() *recorder.Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest
}

// Catalog exposes the session catalog for read access.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// expect must be called with mu held.
func (s *Session) expect(operation string, allowed ...Phase) error {
	if s.aborted != nil {
		return fmt.Errorf("%w: %w", errtypes.ErrSessionAborted, s.aborted)
	}
	for _, p := range allowed {
		if s.phase == p {
			return nil
		}
	}
	expected := make([]string, 0, len(allowed))
	for _, p := range allowed {
		expected = append(expected, p.String())
	}
	return s.abort(errtypes.NewLifecycleViolationError(operation, s.phase.String(), expected...))
}

func (s *Session) abort(err error) error {
	s.aborted = err
	s.manifest = nil
	kind := errtypes.Kind(err)
	metrics.Failures.WithLabelValues(kind).Inc()

	var lifecycle *errtypes.LifecycleViolationError
	if errors.As(err, &lifecycle) {
		s.logger.Error(err, "build aborted by caller error", "phase", s.phase.String())
	} else {
		s.logger.Error(err, "build aborted", "phase", s.phase.String(), "kind", kind)
	}
	return err
}

func (s *Session) advance(to Phase) {
	s.logger.V(1).Info("phase transition", "from", s.phase.String(), "to", to.String())
	s.phase = to
}
