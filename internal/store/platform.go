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

package store

import (
	"fmt"
	"strconv"
	"strings"

	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
)

// Platform is a supported manifest store database.
type Platform string

const (
	PlatformMySQL      Platform = "mysql"
	PlatformMariaDB    Platform = "mariadb"
	PlatformPostgreSQL Platform = "postgresql"
	PlatformSQLServer  Platform = "sqlserver"
)

func Platforms() []Platform {
	return []Platform{PlatformMySQL, PlatformMariaDB, PlatformPostgreSQL, PlatformSQLServer}
}

func PlatformNames() []string {
	var names []string
	for _, p := range Platforms() {
		names = append(names, string(p))
	}
	return names
}

func ParsePlatform(s string) (Platform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Platforms() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errtypes.ErrUnknownPlatform, s)
}

// DriverName is the database/sql driver registered for p.
func (p Platform) DriverName() string {
	switch p {
	case PlatformMySQL, PlatformMariaDB:
		return "mysql"
	case PlatformPostgreSQL:
		return "postgres"
	case PlatformSQLServer:
		return "sqlserver"
	default:
		return ""
	}
}

// Placeholder renders the n-th (1-based) bind parameter.
func (p Platform) Placeholder(n int) string {
	switch p {
	case PlatformPostgreSQL:
		return "$" + strconv.Itoa(n)
	case PlatformSQLServer:
		return "@p" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Rebind rewrites the ? markers of query into the platform placeholders.
func (p Platform) Rebind(query string) string {
	if p.Placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(p.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (p Platform) createTable(table string) string {
	switch p {
	case PlatformPostgreSQL:
		return `CREATE TABLE IF NOT EXISTS ` + table + ` (
	digest      CHAR(64) PRIMARY KEY,
	manifest_id CHAR(36) NOT NULL,
	component   VARCHAR(255) NOT NULL,
	format      VARCHAR(16) NOT NULL,
	entries     INTEGER NOT NULL,
	data        BYTEA NOT NULL,
	created_at  TIMESTAMP NOT NULL
)`
	case PlatformSQLServer:
		return `IF OBJECT_ID(N'` + table + `', N'U') IS NULL CREATE TABLE ` + table + ` (
	digest      CHAR(64) PRIMARY KEY,
	manifest_id CHAR(36) NOT NULL,
	component   NVARCHAR(255) NOT NULL,
	format      VARCHAR(16) NOT NULL,
	entries     INT NOT NULL,
	data        VARBINARY(MAX) NOT NULL,
	created_at  DATETIME2 NOT NULL
)`
	default:
		return `CREATE TABLE IF NOT EXISTS ` + table + ` (
	digest      CHAR(64) PRIMARY KEY,
	manifest_id CHAR(36) NOT NULL,
	component   VARCHAR(255) NOT NULL,
	format      VARCHAR(16) NOT NULL,
	entries     INT NOT NULL,
	data        LONGBLOB NOT NULL,
	created_at  DATETIME NOT NULL
)`
	}
}
