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

package emitter

import (
	"fmt"
	"strings"

	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
)

// Format names an output encoding of a manifest.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatArrow Format = "arrow"
)

// DefaultFormat is used when none is configured.
const DefaultFormat = FormatJSON

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatArrow}
}

// ParseFormat maps a user-supplied name onto a Format. Empty selects DefaultFormat.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultFormat, nil
	}
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errtypes.ErrUnknownFormat, s)
}

// Extension returns the conventional file suffix of f.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatArrow:
		return ".arrow"
	default:
		return ".json"
	}
}
