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

// Package recorder accumulates activated capabilities and freezes them into a Manifest.
package recorder

import (
	"sync"

	"nativehints.apache.org/nativehints-go/internal/types/capability"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// Recorder is safe for concurrent use; activations from several goroutines
// end up in the same manifest.
type Recorder struct {
	mu     sync.Mutex
	byName map[string]capability.Capability
	frozen bool
	logger logger.Logger
}

func New(logger logger.Logger) *Recorder {
	return &Recorder{
		byName: make(map[string]capability.Capability),
		logger: logger.WithName("recorder"),
	}
}

// Activate records cap. A second activation of the same name is an error,
// even with an identical payload.
func (r *Recorder) Activate(item capability.Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errtypes.NewLifecycleViolationError("activate", "ManifestFrozen", "ConditionsEvaluated")
	}
	if _, exists := r.byName[item.Name]; exists {
		return errtypes.NewDuplicateCapabilityError("recorder", item.Name)
	}
	r.byName[item.Name] = item
	r.logger.V(1).Info("capability activated", "name", item.Name, "kind", item.Kind.String())
	return nil
}

func (r *Recorder) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byName[name]
	return ok
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// Snapshot freezes the recorder and returns the manifest. Later calls return
// an equal manifest.
func (r *Recorder) Snapshot() *Manifest {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frozen {
		r.frozen = true
		r.logger.Info("manifest frozen", "entries", len(r.byName))
	}
	entries := make([]capability.Capability, 0, len(r.byName))
	for _, item := range r.byName {
		entries = append(entries, item)
	}
	capability.SortStable(entries)
	return &Manifest{entries: entries}
}

func (r *Recorder) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Manifest is the immutable set of activated capabilities, kept in
// kind-then-name order.
type Manifest struct {
	entries []capability.Capability
}

// NewManifest builds a manifest directly, rejecting duplicate names.
func NewManifest(entries ...capability.Capability) (*Manifest, error) {
	seen := make(map[string]struct{}, len(entries))
	sorted := make([]capability.Capability, 0, len(entries))
	for _, item := range entries {
		if _, dup := seen[item.Name]; dup {
			return nil, errtypes.NewDuplicateCapabilityError("recorder", item.Name)
		}
		seen[item.Name] = struct{}{}
		sorted = append(sorted, item)
	}
	capability.SortStable(sorted)
	return &Manifest{entries: sorted}, nil
}

// Entries returns a copy of the manifest contents.
func (m *Manifest) Entries() []capability.Capability {
	if m == nil {
		return nil
	}
	return append([]capability.Capability(nil), m.entries...)
}

func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

func (m *Manifest) Contains(name string) bool {
	_, ok := m.Get(name)
	return ok
}

func (m *Manifest) Get(name string) (capability.Capability, bool) {
	if m == nil {
		return capability.Capability{}, false
	}
	for _, item := range m.entries {
		if item.Name == name {
			return item, true
		}
	}
	return capability.Capability{}, false
}

// ByKind returns the entries of one kind, in name order.
func (m *Manifest) ByKind(kind capability.Kind) []capability.Capability {
	var out []capability.Capability
	if m == nil {
		return out
	}
	for _, item := range m.entries {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// Counts returns the number of entries per kind.
func (m *Manifest) Counts() map[capability.Kind]int {
	counts := make(map[capability.Kind]int, len(capability.Kinds()))
	if m == nil {
		return counts
	}
	for _, item := range m.entries {
		counts[item.Kind]++
	}
	return counts
}
