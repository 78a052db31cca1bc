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

// Package store publishes emitted manifests into a SQL database keyed by digest.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"

	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Record is a stored manifest.
type Record struct {
	Digest    string
	ID        uuid.UUID
	Component string
	Format    emitter.Format
	Entries   int
	Data      []byte
	CreatedAt time.Time
}

type Store struct {
	db       *sql.DB
	platform Platform
	table    string
	logger   logger.Logger
	now      func() time.Time
}

// Open prepares a connection pool. No connection is made until first use.
// MySQL DSNs need parseTime=true for Lookup.
func Open(platform, dsn, table string, log logger.Logger) (*Store, error) {
	p, err := ParsePlatform(platform)
	if err != nil {
		return nil, err
	}
	if !tableName.MatchString(table) {
		return nil, errtypes.NewInvalidConfigurationError("store.table", table, "not a plain SQL identifier")
	}

	db, err := sql.Open(p.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(30 * time.Second)

	return newStore(db, p, table, log), nil
}

func newStore(db *sql.DB, p Platform, table string, log logger.Logger) *Store {
	return &Store{
		db:       db,
		platform: p,
		table:    table,
		logger:   log.WithName("store").WithValues("platform", string(p), "table", table),
		now:      time.Now,
	}
}

// EnsureSchema pings the database and creates the manifest table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.platform.createTable(s.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Publish stores m unless a manifest with the same digest is already known.
// It reports whether a row was written.
func (s *Store) Publish(ctx context.Context, component string, m *emitter.SerializedManifest) (bool, error) {
	if m == nil {
		return false, errtypes.ErrManifestIsNil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx, s.existsQuery(), m.Digest).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up manifest %s: %w", m.Digest, err)
	}
	if count > 0 {
		s.logger.V(1).Info("manifest already published", "digest", m.Digest)
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, s.insertQuery(),
		m.Digest, m.ID.String(), component, string(m.Format), m.Entries, m.Data, s.now().UTC(),
	); err != nil {
		return false, fmt.Errorf("failed to insert manifest %s: %w", m.Digest, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit manifest %s: %w", m.Digest, err)
	}

	s.logger.Info("manifest published", "digest", m.Digest, "component", component, "format", string(m.Format))
	return true, nil
}

// Lookup returns the manifest stored under digest.
func (s *Store) Lookup(ctx context.Context, digest string) (*Record, error) {
	var (
		r      Record
		id     string
		format string
	)
	err := s.db.QueryRowContext(ctx, s.lookupQuery(), digest).
		Scan(&r.Digest, &id, &r.Component, &format, &r.Entries, &r.Data, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errtypes.ErrManifestNotFound, digest)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", digest, err)
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("manifest %s has a malformed id: %w", digest, err)
	}
	r.Format = emitter.Format(format)
	return &r, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) existsQuery() string {
	return s.platform.Rebind(`SELECT COUNT(*) FROM ` + s.table + ` WHERE digest = ?`)
}

func (s *Store) insertQuery() string {
	return s.platform.Rebind(`INSERT INTO ` + s.table +
		` (digest, manifest_id, component, format, entries, data, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
}

func (s *Store) lookupQuery() string {
	return s.platform.Rebind(`SELECT digest, manifest_id, component, format, entries, data, created_at FROM ` +
		s.table + ` WHERE digest = ?`)
}
