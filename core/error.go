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

import "fmt"

// ParseError reports a cell whose raw text could not be coerced to the
// column's declared type. Parse failures are field-local: the field becomes
// "not informed" and the record survives.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: invalid value %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DomainError reports a typed value that falls outside its domain rule
// (age bounds, coordinate envelope, UF table, vehicle year window). Like
// parse failures, domain rejections null the field and keep the record.
type DomainError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain %s: value %v rejected: %s", e.Field, e.Value, e.Reason)
}

// FatalRecordError reports a record that cannot participate in the silver
// table at all: a missing accident identifier, an unparseable occurrence
// date, or a date in the future. The record is dropped and counted.
type FatalRecordError struct {
	RecordID string
	Reason   string
	Err      error
}

func (e *FatalRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %s dropped: %s: %v", e.RecordID, e.Reason, e.Err)
	}
	return fmt.Sprintf("record %s dropped: %s", e.RecordID, e.Reason)
}

func (e *FatalRecordError) Unwrap() error {
	return e.Err
}

// AggregationInvariantError reports a mismatch between an emitted row's
// victim-count columns and the totals recomputed from the group's distinct
// person sub-records. This is a bug in the transform, never bad input, so
// it always aborts the run.
type AggregationInvariantError struct {
	AccidentID string
	Field      string
	Want       int64
	Got        int64
}

func (e *AggregationInvariantError) Error() string {
	return fmt.Sprintf("accident %s: aggregate %s mismatch: row carries %d, recomputed %d",
		e.AccidentID, e.Field, e.Got, e.Want)
}
