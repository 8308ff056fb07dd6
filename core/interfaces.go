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

package core

import "context"

// DataSource represents a source of raw records (the bronze side).
type DataSource interface {
	// Read returns the next record from the source.
	// Returns io.EOF when no more records are available.
	Read(ctx context.Context) (Record, error)

	// Close releases any resources held by the source.
	Close() error
}

// DataSink represents a destination for silver rows.
type DataSink interface {
	// Write persists a single record to the sink.
	Write(ctx context.Context, record Record) error

	// Flush forces any buffered records to be written.
	Flush() error

	// Close flushes remaining records and releases resources.
	Close() error
}

// ErrorStrategy defines how the pipeline reacts to record-level errors.
type ErrorStrategy int

const (
	// FailFast stops the run on the first record-level error.
	FailFast ErrorStrategy = iota

	// SkipErrors drops the offending record (or accident group) and
	// continues, counting the skip in the run summary.
	SkipErrors
)

// ErrorHandler receives record-level errors when the SkipErrors strategy
// is active, before the record is dropped.
type ErrorHandler interface {
	HandleError(ctx context.Context, record Record, err error) error
}

// ErrorHandlerFunc adapts a function to the ErrorHandler interface.
type ErrorHandlerFunc func(ctx context.Context, record Record, err error) error

// HandleError calls the underlying function.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, record Record, err error) error {
	return f(ctx, record, err)
}
