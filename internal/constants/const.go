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

package constants

const (
	// DefaultComponent is the catalog embedded in the binary.
	DefaultComponent = "cassandra-client"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "NATIVEHINTS_"

	// FacilitiesEnv lists facility names, comma separated.
	FacilitiesEnv = EnvPrefix + "FACILITIES"
)

const (
	// ExitOK means a manifest was written.
	ExitOK = 0
	// ExitFailure covers I/O and unexpected errors.
	ExitFailure = 1
	// ExitInvalidConfiguration means the operator must fix a value.
	ExitInvalidConfiguration = 2
	// ExitCallerBug covers duplicate capabilities and lifecycle violations.
	ExitCallerBug = 3
)

const (
	DefaultOutputFile    = "-" // stdout
	DefaultStoreTable    = "nativehints_manifest"
	DefaultStorePlatform = "postgresql"
)
