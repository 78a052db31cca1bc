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
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativehints.apache.org/nativehints-go/internal/engine/emitter"
	errtypes "nativehints.apache.org/nativehints-go/internal/types/err"
	"nativehints.apache.org/nativehints-go/internal/util/logger"
)

// memoryDriver is a database/sql driver that understands exactly the
// statements issued by Store. Each DSN is a separate database.
type memoryDriver struct {
	mu        sync.Mutex
	databases map[string]*memoryDB
}

type memoryDB struct {
	mu      sync.Mutex
	rows    map[string][]driver.Value
	inserts int
	ddl     int
}

var testDriver = &memoryDriver{databases: make(map[string]*memoryDB)}

func init() {
	sql.Register("nativehints-memory", testDriver)
}

func (d *memoryDriver) Open(dsn string) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	db, ok := d.databases[dsn]
	if !ok {
		db = &memoryDB{rows: make(map[string][]driver.Value)}
		d.databases[dsn] = db
	}
	return &memoryConn{db: db}, nil
}

type memoryConn struct {
	db *memoryDB
}

func (c *memoryConn) Prepare(query string) (driver.Stmt, error) {
	return &memoryStmt{db: c.db, query: strings.TrimSpace(query)}, nil
}

func (c *memoryConn) Close() error { return nil }

func (c *memoryConn) Begin() (driver.Tx, error) { return memoryTx{}, nil }

type memoryTx struct{}

func (memoryTx) Commit() error   { return nil }
func (memoryTx) Rollback() error { return nil }

type memoryStmt struct {
	db    *memoryDB
	query string
}

func (s *memoryStmt) Close() error  { return nil }
func (s *memoryStmt) NumInput() int { return -1 }

func (s *memoryStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	switch {
	case strings.HasPrefix(s.query, "CREATE TABLE"), strings.HasPrefix(s.query, "IF OBJECT_ID"):
		s.db.ddl++
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(s.query, "INSERT INTO"):
		digest := args[0].(string)
		if _, exists := s.db.rows[digest]; exists {
			return nil, errors.New("duplicate key")
		}
		s.db.rows[digest] = append([]driver.Value(nil), args...)
		s.db.inserts++
		return driver.RowsAffected(1), nil
	}
	return nil, errors.New("unexpected exec: " + s.query)
}

func (s *memoryStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	digest := args[0].(string)
	row, found := s.db.rows[digest]
	switch {
	case strings.HasPrefix(s.query, "SELECT COUNT(*)"):
		var count int64
		if found {
			count = 1
		}
		return &memoryRows{columns: []string{"count"}, values: [][]driver.Value{{count}}}, nil
	case strings.HasPrefix(s.query, "SELECT digest"):
		columns := []string{"digest", "manifest_id", "component", "format", "entries", "data", "created_at"}
		if !found {
			return &memoryRows{columns: columns}, nil
		}
		return &memoryRows{columns: columns, values: [][]driver.Value{row}}, nil
	}
	return nil, errors.New("unexpected query: " + s.query)
}

type memoryRows struct {
	columns []string
	values  [][]driver.Value
	next    int
}

func (r *memoryRows) Columns() []string { return r.columns }
func (r *memoryRows) Close() error      { return nil }

func (r *memoryRows) Next(dest []driver.Value) error {
	if r.next >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.next])
	r.next++
	return nil
}

func openMemoryStore(t *testing.T) (*Store, *memoryDB) {
	t.Helper()
	dsn := t.Name()
	db, err := sql.Open("nativehints-memory", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := newStore(db, PlatformMySQL, "nativehints_manifest", logger.Discard())
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	testDriver.mu.Lock()
	defer testDriver.mu.Unlock()
	if _, ok := testDriver.databases[dsn]; !ok {
		testDriver.databases[dsn] = &memoryDB{rows: make(map[string][]driver.Value)}
	}
	return s, testDriver.databases[dsn]
}

func serialized(data string) *emitter.SerializedManifest {
	digest := emitter.Digest([]byte(data))
	return &emitter.SerializedManifest{
		Format:  emitter.FormatJSON,
		Data:    []byte(data),
		Digest:  digest,
		ID:      uuid.NewSHA1(uuid.NameSpaceURL, []byte(digest)),
		Entries: 2,
	}
}

func TestPublishAndLookup(t *testing.T) {
	ctx := context.Background()
	s, db := openMemoryStore(t)
	require.NoError(t, s.EnsureSchema(ctx))
	assert.Equal(t, 1, db.ddl)

	m := serialized(`{"version":1,"entries":[]}`)

	created, err := s.Publish(ctx, "cassandra-client", m)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Publish(ctx, "cassandra-client", m)
	require.NoError(t, err)
	assert.False(t, created, "same digest is stored once")
	assert.Equal(t, 1, db.inserts)

	record, err := s.Lookup(ctx, m.Digest)
	require.NoError(t, err)
	assert.Equal(t, m.Digest, record.Digest)
	assert.Equal(t, m.ID, record.ID)
	assert.Equal(t, "cassandra-client", record.Component)
	assert.Equal(t, emitter.FormatJSON, record.Format)
	assert.Equal(t, 2, record.Entries)
	assert.Equal(t, m.Data, record.Data)
	assert.True(t, record.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}

func TestPublishDistinctDigests(t *testing.T) {
	ctx := context.Background()
	s, db := openMemoryStore(t)

	for _, data := range []string{"a", "b"} {
		created, err := s.Publish(ctx, "cassandra-client", serialized(data))
		require.NoError(t, err)
		assert.True(t, created)
	}
	assert.Equal(t, 2, db.inserts)
}

func TestLookupUnknownDigest(t *testing.T) {
	s, _ := openMemoryStore(t)

	record, err := s.Lookup(context.Background(), emitter.Digest([]byte("missing")))
	assert.Nil(t, record)
	assert.ErrorIs(t, err, errtypes.ErrManifestNotFound)
}
