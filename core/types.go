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

// Package core defines the types shared by every stage of the silver ETL.
//
// SilverETL ingests raw PRF accident records, runs them through a
// deterministic transform and loads the resulting denormalized silver table
// into flat-file and relational sinks. The core package holds the record
// type, the source/sink contracts, and the transform error taxonomy.
package core

// Record represents a single data record in the pipeline.
// Each record is a map from column names to values. Sources emit raw string
// cells (or nil for empty cells); the transform replaces them with typed
// values, where nil means "not informed".
type Record map[string]interface{}

// Clone returns a shallow copy of the record. Transform stages never mutate
// their input; they always produce a new record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
