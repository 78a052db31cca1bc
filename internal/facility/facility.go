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

// Package facility detects the optional dependencies present in a build.
package facility

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// Set is an immutable collection of detected facility names.
type Set struct {
	names map[string]struct{}
}

// NewSet builds a Set from names; blanks are ignored.
func NewSet(names ...string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			s.names[name] = struct{}{}
		}
	}
	return s
}

// Has reports whether name was detected. Unknown names are absent.
func (s Set) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Names returns the detected names, sorted.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s Set) Len() int {
	return len(s.names)
}

// Probe finds facilities in one place.
type Probe interface {
	Name() string
	Detect() ([]string, error)
}

// Detect runs every probe once, concurrently, and merges their findings.
// Any probe error fails detection.
func Detect(log logger.Logger, probes ...Probe) (Set, error) {
	log = log.WithName("facility")

	var (
		mu    sync.Mutex
		found []string
		g     errgroup.Group
	)
	for _, probe := range probes {
		probe := probe
		g.Go(func() error {
			names, err := probe.Detect()
			if err != nil {
				return fmt.Errorf("facility probe %s: %w", probe.Name(), err)
			}
			log.V(1).Info("probe finished", "probe", probe.Name(), "found", names)
			mu.Lock()
			found = append(found, names...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Set{}, err
	}

	set := NewSet(found...)
	log.Info("facilities detected", "count", set.Len(), "names", set.Names())
	return set, nil
}

type staticProbe struct {
	names []string
}

// Static reports a fixed list of names, typically from --facility flags.
func Static(names ...string) Probe {
	return staticProbe{names: append([]string(nil), names...)}
}

func (p staticProbe) Name() string { return "static" }

func (p staticProbe) Detect() ([]string, error) {
	return p.names, nil
}

type envProbe struct {
	variable string
}

// Env reads a comma separated list of names from an environment variable.
func Env(variable string) Probe {
	return envProbe{variable: variable}
}

func (p envProbe) Name() string { return "env:" + p.variable }

func (p envProbe) Detect() ([]string, error) {
	value, ok := os.LookupEnv(p.variable)
	if !ok {
		return nil, nil
	}
	var names []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names, nil
}

type artifactsProbe struct {
	dirs      []string
	artifacts map[string][]string
}

// Artifacts reports a facility when one of its glob patterns matches a file
// directly inside one of dirs. Missing directories are skipped.
func Artifacts(dirs []string, artifacts map[string][]string) Probe {
	return artifactsProbe{dirs: append([]string(nil), dirs...), artifacts: artifacts}
}

func (p artifactsProbe) Name() string { return "artifacts" }

func (p artifactsProbe) Detect() ([]string, error) {
	var names []string
	for facility, patterns := range p.artifacts {
		present, err := p.anyMatch(patterns)
		if err != nil {
			return nil, err
		}
		if present {
			names = append(names, facility)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (p artifactsProbe) anyMatch(patterns []string) (bool, error) {
	for _, dir := range p.dirs {
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return false, err
		}
		if !info.IsDir() {
			continue
		}
		for _, pattern := range patterns {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return false, fmt.Errorf("artifact pattern %q: %w", pattern, err)
			}
			if len(matches) > 0 {
				return true, nil
			}
		}
	}
	return false, nil
}
