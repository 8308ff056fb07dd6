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

// Package silveretl turns raw PRF highway accident extracts (bronze) into
// the denormalized silver accident table and loads it into CSV, Parquet
// and PostgreSQL sinks. The root package hosts the pipeline orchestrator;
// readers, writers and the transform live in their own packages.
package silveretl

import "github.com/prflakehouse/silveretl/core"

// Re-exported core types, so callers wiring a pipeline only import the
// root package.
type (
	Record        = core.Record
	DataSource    = core.DataSource
	DataSink      = core.DataSink
	ErrorHandler  = core.ErrorHandler
	ErrorStrategy = core.ErrorStrategy
)

const (
	FailFast   = core.FailFast
	SkipErrors = core.SkipErrors
)
