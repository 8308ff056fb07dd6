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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/prflakehouse/silveretl/core"
	"github.com/prflakehouse/silveretl/schema"
)

// ParquetWriterError wraps Parquet-specific write errors with context
// about the operation.
type ParquetWriterError struct {
	Op  string
	Err error
}

func (e *ParquetWriterError) Error() string {
	return fmt.Sprintf("parquet writer %s: %v", e.Op, e.Err)
}

func (e *ParquetWriterError) Unwrap() error {
	return e.Err
}

// ParquetWriterStats holds statistics about the Parquet writer's
// performance.
type ParquetWriterStats struct {
	RecordsWritten  int64
	BatchesWritten  int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

// ParquetWriterOptions configures the Parquet silver writer. The schema
// is always the fixed silver Arrow schema; there is nothing to infer.
type ParquetWriterOptions struct {
	BatchSize    int64
	Compression  compress.Compression
	RowGroupSize int64
}

// ParquetWriterOption represents a configuration function for
// ParquetWriterOptions.
type ParquetWriterOption func(*ParquetWriterOptions)

// WithParquetBatchSize sets the number of rows buffered per Arrow batch.
func WithParquetBatchSize(size int64) ParquetWriterOption {
	return func(opts *ParquetWriterOptions) { opts.BatchSize = size }
}

// WithParquetCompression sets the Parquet compression codec.
func WithParquetCompression(c compress.Compression) ParquetWriterOption {
	return func(opts *ParquetWriterOptions) { opts.Compression = c }
}

// WithParquetRowGroupSize sets the maximum row group length.
func WithParquetRowGroupSize(size int64) ParquetWriterOption {
	return func(opts *ParquetWriterOptions) { opts.RowGroupSize = size }
}

// ParquetWriter implements DataSink for the columnar silver output,
// writing the fixed 45-column silver schema with snappy compression by
// default.
type ParquetWriter struct {
	writer     *pqarrow.FileWriter
	schema     *arrow.Schema
	builders   []array.Builder
	buffered   int64
	opts       ParquetWriterOptions
	stats      ParquetWriterStats
	closed     bool
	errorState bool
}

// NewParquetWriter creates a Parquet writer for the given file path,
// creating parent directories as needed.
func NewParquetWriter(filename string, options ...ParquetWriterOption) (*ParquetWriter, error) {
	opts := ParquetWriterOptions{
		BatchSize:    1000,
		Compression:  compress.Codecs.Snappy,
		RowGroupSize: 10000,
	}
	for _, option := range options {
		option(&opts)
	}

	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &ParquetWriterError{Op: "create_directory", Err: err}
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, &ParquetWriterError{Op: "open_file", Err: err}
	}

	arrowSchema := schema.ArrowSchema()
	props := parquet.NewWriterProperties(
		parquet.WithCompression(opts.Compression),
		parquet.WithMaxRowGroupLength(opts.RowGroupSize),
	)
	writer, err := pqarrow.NewFileWriter(arrowSchema, file, props, pqarrow.DefaultWriterProps())
	if err != nil {
		file.Close()
		return nil, &ParquetWriterError{Op: "create_writer", Err: err}
	}

	alloc := memory.NewGoAllocator()
	builders := make([]array.Builder, len(arrowSchema.Fields()))
	for i, field := range arrowSchema.Fields() {
		builders[i] = array.NewBuilder(alloc, field.Type)
	}

	return &ParquetWriter{
		writer:   writer,
		schema:   arrowSchema,
		builders: builders,
		opts:     opts,
		stats:    ParquetWriterStats{NullValueCounts: make(map[string]int64)},
	}, nil
}

// Write implements the DataSink interface.
func (p *ParquetWriter) Write(ctx context.Context, record core.Record) error {
	if p.closed {
		return &ParquetWriterError{Op: "write", Err: fmt.Errorf("writer is closed")}
	}
	if p.errorState {
		return &ParquetWriterError{Op: "write", Err: fmt.Errorf("writer is in error state")}
	}

	for i, field := range p.schema.Fields() {
		value := record[field.Name]
		if value == nil {
			p.builders[i].AppendNull()
			p.stats.NullValueCounts[field.Name]++
			continue
		}
		if err := appendValue(p.builders[i], value); err != nil {
			p.errorState = true
			return &ParquetWriterError{
				Op:  "append_value",
				Err: fmt.Errorf("field %s: %w", field.Name, err),
			}
		}
	}

	p.buffered++
	p.stats.RecordsWritten++

	if p.buffered >= p.opts.BatchSize {
		if err := p.flushBatch(); err != nil {
			p.errorState = true
			return err
		}
	}
	return nil
}

// Flush implements the DataSink interface.
func (p *ParquetWriter) Flush() error {
	if p.buffered > 0 {
		return p.flushBatch()
	}
	return nil
}

// Close flushes remaining rows and finalizes the Parquet footer.
func (p *ParquetWriter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if p.buffered > 0 {
		if err := p.flushBatch(); err != nil {
			return err
		}
	}

	for _, builder := range p.builders {
		builder.Release()
	}
	p.builders = nil

	if err := p.writer.Close(); err != nil {
		return &ParquetWriterError{Op: "close_writer", Err: err}
	}
	return nil
}

// Stats returns the current writer statistics.
func (p *ParquetWriter) Stats() ParquetWriterStats {
	return p.stats
}

// flushBatch drains the builders into one Arrow record batch and writes
// it.
func (p *ParquetWriter) flushBatch() error {
	start := time.Now()

	arrays := make([]arrow.Array, len(p.builders))
	for i, builder := range p.builders {
		arrays[i] = builder.NewArray()
	}
	rec := array.NewRecord(p.schema, arrays, p.buffered)

	err := p.writer.Write(rec)
	rec.Release()
	for _, arr := range arrays {
		arr.Release()
	}
	if err != nil {
		return &ParquetWriterError{Op: "write_batch", Err: err}
	}

	p.buffered = 0
	p.stats.BatchesWritten++
	p.stats.LastFlushTime = time.Now()
	p.stats.FlushDuration += time.Since(start)
	return nil
}

// appendValue appends one typed silver value to its column builder.
func appendValue(builder array.Builder, value interface{}) error {
	switch b := builder.(type) {
	case *array.Int64Builder:
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", value)
		}
		b.Append(v)
	case *array.Float64Builder:
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", value)
		}
		b.Append(v)
	case *array.BooleanBuilder:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		b.Append(v)
	case *array.StringBuilder:
		switch v := value.(type) {
		case string:
			b.Append(v)
		case time.Time:
			b.Append(v.Format(csvTimeLayout))
		default:
			return fmt.Errorf("expected string, got %T", value)
		}
	case *array.Date32Builder:
		v, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", value)
		}
		b.Append(arrow.Date32FromTime(v))
	case *array.TimestampBuilder:
		v, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", value)
		}
		b.Append(arrow.Timestamp(v.UnixMicro()))
	default:
		return fmt.Errorf("unsupported builder type %T", builder)
	}
	return nil
}
