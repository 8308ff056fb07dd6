//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The SilverETL Authors
//
// This file is part of SilverETL.
//
// SilverETL is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SilverETL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SilverETL. If not, see https://www.gnu.org/licenses/.

package writers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/prflakehouse/silveretl/core"
	"github.com/prflakehouse/silveretl/schema"
)

// PostgresWriterError wraps PostgreSQL-specific write errors with context
// about the operation.
type PostgresWriterError struct {
	Op  string
	Err error
}

func (e *PostgresWriterError) Error() string {
	return fmt.Sprintf("postgres writer %s: %v", e.Op, e.Err)
}

func (e *PostgresWriterError) Unwrap() error {
	return e.Err
}

// PostgresWriterStats holds PostgreSQL write performance statistics.
type PostgresWriterStats struct {
	RecordsWritten  int64
	BatchesWritten  int64
	LastWriteTime   time.Time
	WriteDuration   time.Duration
	ConnectionTime  time.Duration
	NullValueCounts map[string]int64
}

// PostgresWriterOptions configures the PostgreSQL silver writer.
type PostgresWriterOptions struct {
	DSN          string
	SchemaName   string
	TableName    string
	Columns      []string
	BatchSize    int
	Bootstrap    bool // run the silver DDL (schema, table, views) before loading
	Truncate     bool // empty the table inside the load transaction
	QueryTimeout time.Duration
}

// PostgresWriterOption represents a configuration function for
// PostgresWriterOptions.
type PostgresWriterOption func(*PostgresWriterOptions)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.DSN = dsn }
}

// WithPostgresTable sets the target schema and table.
func WithPostgresTable(schemaName, tableName string) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) {
		opts.SchemaName = schemaName
		opts.TableName = tableName
	}
}

// WithPostgresColumns overrides the columns to write.
func WithPostgresColumns(columns []string) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) {
		opts.Columns = append([]string(nil), columns...)
	}
}

// WithPostgresBatchSize sets the number of rows per INSERT statement.
func WithPostgresBatchSize(size int) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.BatchSize = size }
}

// WithPostgresBootstrap enables running the silver DDL before loading.
func WithPostgresBootstrap(bootstrap bool) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.Bootstrap = bootstrap }
}

// WithPostgresTruncate enables emptying the table before loading.
func WithPostgresTruncate(truncate bool) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.Truncate = truncate }
}

// WithPostgresQueryTimeout sets the per-statement timeout.
func WithPostgresQueryTimeout(timeout time.Duration) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.QueryTimeout = timeout }
}

// PostgresWriter implements DataSink for the PostgreSQL silver table.
//
// The whole load runs inside one transaction: the optional TRUNCATE, every
// batched INSERT, and the final COMMIT on Close. Either the silver table is
// replaced in full or the previous contents survive untouched.
type PostgresWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	options    PostgresWriterOptions
	columns    []string
	recordBuf  []core.Record
	stats      PostgresWriterStats
	errorState bool
	mu         sync.Mutex
}

// NewPostgresWriter creates a PostgreSQL writer, connects, optionally
// bootstraps the DDL, and opens the load transaction.
func NewPostgresWriter(ctx context.Context, opts ...PostgresWriterOption) (*PostgresWriter, error) {
	options := PostgresWriterOptions{
		SchemaName:   schema.PostgresSchema,
		TableName:    schema.PostgresTable,
		Columns:      schema.SilverColumns,
		BatchSize:    500,
		Truncate:     true,
		QueryTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.DSN == "" {
		return nil, &PostgresWriterError{Op: "validate", Err: fmt.Errorf("dsn is required")}
	}
	if options.BatchSize <= 0 {
		return nil, &PostgresWriterError{Op: "validate", Err: fmt.Errorf("batch size must be positive")}
	}

	w := &PostgresWriter{
		options:   options,
		columns:   append([]string(nil), options.Columns...),
		recordBuf: make([]core.Record, 0, options.BatchSize),
		stats:     PostgresWriterStats{NullValueCounts: make(map[string]int64)},
	}

	if err := w.connect(ctx); err != nil {
		return nil, &PostgresWriterError{Op: "connect", Err: err}
	}

	if options.Bootstrap {
		if err := w.bootstrap(ctx); err != nil {
			w.db.Close()
			return nil, &PostgresWriterError{Op: "bootstrap", Err: err}
		}
	}

	if err := w.begin(ctx); err != nil {
		w.db.Close()
		return nil, &PostgresWriterError{Op: "begin", Err: err}
	}

	return w, nil
}

// Write implements the DataSink interface. Rows are buffered and sent in
// multi-row INSERT statements.
func (w *PostgresWriter) Write(ctx context.Context, record core.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.errorState {
		return &PostgresWriterError{Op: "write", Err: fmt.Errorf("writer is in error state")}
	}

	for _, col := range w.columns {
		if record[col] == nil {
			w.stats.NullValueCounts[col]++
		}
	}

	w.recordBuf = append(w.recordBuf, record)
	w.stats.RecordsWritten++

	if len(w.recordBuf) >= w.options.BatchSize {
		if err := w.flushBufferUnsafe(ctx); err != nil {
			w.errorState = true
			return &PostgresWriterError{Op: "flush_batch", Err: err}
		}
	}

	return nil
}

// Flush implements the DataSink interface. Buffered rows are sent to the
// open transaction; nothing is committed yet.
func (w *PostgresWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.options.QueryTimeout)
	defer cancel()

	if err := w.flushBufferUnsafe(ctx); err != nil {
		w.errorState = true
		return &PostgresWriterError{Op: "flush", Err: err}
	}
	return nil
}

// Close flushes, commits the load transaction and closes the connection.
// If the writer is in an error state the transaction is rolled back, so a
// failed run leaves the previous silver table intact.
func (w *PostgresWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	defer func() {
		if w.db != nil {
			w.db.Close()
			w.db = nil
		}
	}()

	if w.tx == nil {
		return nil
	}

	if w.errorState {
		w.tx.Rollback()
		w.tx = nil
		return &PostgresWriterError{Op: "close", Err: fmt.Errorf("load aborted, rolled back")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.options.QueryTimeout)
	defer cancel()

	if err := w.flushBufferUnsafe(ctx); err != nil {
		w.tx.Rollback()
		w.tx = nil
		return &PostgresWriterError{Op: "close_flush", Err: err}
	}

	err := w.tx.Commit()
	w.tx = nil
	if err != nil {
		return &PostgresWriterError{Op: "commit", Err: err}
	}
	return nil
}

// Stats returns a copy of the current write statistics.
func (w *PostgresWriter) Stats() PostgresWriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	statsCopy := w.stats
	statsCopy.NullValueCounts = make(map[string]int64)
	for k, v := range w.stats.NullValueCounts {
		statsCopy.NullValueCounts[k] = v
	}
	return statsCopy
}

// connect opens and verifies the database connection.
func (w *PostgresWriter) connect(ctx context.Context) error {
	start := time.Now()

	db, err := sql.Open("postgres", w.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, w.options.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	w.db = db
	w.stats.ConnectionTime = time.Since(start)
	return nil
}

// bootstrap runs the silver DDL: schema, table and validation views.
func (w *PostgresWriter) bootstrap(ctx context.Context) error {
	for _, stmt := range schema.PostgresDDL(w.options.SchemaName, w.options.TableName) {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ddl failed: %w", err)
		}
	}
	return nil
}

// begin opens the load transaction and truncates inside it.
func (w *PostgresWriter) begin(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	w.tx = tx

	if w.options.Truncate {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", w.qualifiedTable())); err != nil {
			tx.Rollback()
			w.tx = nil
			return fmt.Errorf("failed to truncate table: %w", err)
		}
	}
	return nil
}

// flushBufferUnsafe sends buffered rows as one multi-row INSERT (must
// hold mutex).
func (w *PostgresWriter) flushBufferUnsafe(ctx context.Context) error {
	if len(w.recordBuf) == 0 {
		return nil
	}
	if w.tx == nil {
		return fmt.Errorf("no open transaction")
	}

	start := time.Now()

	query, args := buildInsert(w.qualifiedTable(), w.columns, w.recordBuf)
	if _, err := w.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to execute insert: %w", err)
	}

	w.stats.BatchesWritten++
	w.stats.LastWriteTime = time.Now()
	w.stats.WriteDuration += time.Since(start)
	w.recordBuf = w.recordBuf[:0]

	return nil
}

// qualifiedTable renders the schema-qualified table name.
func (w *PostgresWriter) qualifiedTable() string {
	if w.options.SchemaName == "" {
		return w.options.TableName
	}
	return w.options.SchemaName + "." + w.options.TableName
}

// buildInsert renders a multi-row INSERT statement and its arguments for
// the given records.
func buildInsert(table string, columns []string, records []core.Record) (string, []interface{}) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	args := make([]interface{}, 0, len(records)*len(columns))
	for r, record := range records {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c, col := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", r*len(columns)+c+1)
			args = append(args, pgValue(col, record[col]))
		}
		sb.WriteByte(')')
	}

	return sb.String(), args
}

// pgValue converts a silver value for the driver. TIME columns take the
// wall-clock rendering because lib/pq has no native time-of-day type.
func pgValue(column string, value interface{}) interface{} {
	if value == nil {
		return nil
	}
	if t, ok := value.(time.Time); ok && schema.SilverTypes[column] == schema.TypeTime {
		return t.Format(csvTimeLayout)
	}
	return value
}
