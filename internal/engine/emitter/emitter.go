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

// Package emitter serializes frozen manifests for the downstream image builder.
package emitter

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"nativehints.apache.org/nativehints-go/internal/engine/recorder"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// manifestNamespace seeds the name-based manifest ids.
var manifestNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://nativehints.apache.org/manifest"))

// SerializedManifest is one encoding of a manifest plus its identity.
type SerializedManifest struct {
	Format  Format
	Data    []byte
	Digest  string
	ID      uuid.UUID
	Entries int
}

// Observer is told how long each emission took.
type Observer func(format Format, elapsed time.Duration)

type Emitter struct {
	encoders map[Format]Encoder
	observer Observer
	logger   logger.Logger
}

type Option func(*Emitter)

// WithEncoder replaces or adds the encoder used for format.
func WithEncoder(format Format, encoder Encoder) Option {
	return func(e *Emitter) {
		e.encoders[format] = encoder
	}
}

func WithObserver(observer Observer) Option {
	return func(e *Emitter) {
		e.observer = observer
	}
}

func New(logger logger.Logger, options ...Option) *Emitter {
	e := &Emitter{
		encoders: map[Format]Encoder{
			FormatJSON:  jsonEncoder{},
			FormatYAML:  yamlEncoder{},
			FormatArrow: arrowEncoder{},
		},
		logger: logger.WithName("emitter"),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Emit encodes manifest in format. The same manifest always yields the same bytes.
func (e *Emitter) Emit(manifest *recorder.Manifest, format Format) (*SerializedManifest, error) {
	if manifest == nil {
		return nil, errtypes.ErrManifestIsNil
	}
	encoder, ok := e.encoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errtypes.ErrUnknownFormat, format)
	}

	start := time.Now()
	data, err := encoder.Encode(manifest.Entries())
	if err != nil {
		return nil, err
	}
	if e.observer != nil {
		e.observer(format, time.Since(start))
	}

	digest := Digest(data)
	out := &SerializedManifest{
		Format:  format,
		Data:    data,
		Digest:  digest,
		ID:      uuid.NewSHA1(manifestNamespace, []byte(digest)),
		Entries: manifest.Len(),
	}
	e.logger.Info("manifest emitted",
		"format", string(format),
		"entries", out.Entries,
		"bytes", len(data),
		"digest", digest)
	return out, nil
}

// Digest returns the hex BLAKE2b-256 sum of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
