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

package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/prflakehouse/silveretl/core"
	"github.com/prflakehouse/silveretl/domain"
)

// GroupDiagnostics reports what happened to one accident group during
// the transform.
type GroupDiagnostics struct {
	InputRows         int
	DuplicatesRemoved int
	SkippedRecords    int
	OutlierRows       int
	CauseAnomaly      bool
	Skipped           []*core.FatalRecordError
	Rejections        []*core.DomainError
}

// TransformGroup runs the full transform for one accident group:
// normalize, validate, de-duplicate, enrich, expand. Raw records that
// fail fatally are dropped and reported in the diagnostics; the group
// itself survives as long as at least one record does. The returned rows
// are ready for the silver sinks.
func TransformGroup(tables *domain.Tables, ref time.Time, raw []core.Record) ([]core.Record, GroupDiagnostics, error) {
	diag := GroupDiagnostics{InputRows: len(raw)}

	cleaned := make([]*CleanedRow, 0, len(raw))
	for _, rec := range raw {
		row, err := NormalizeRecord(tables, rec)
		if err != nil {
			diag.SkippedRecords++
			if fatal, ok := err.(*core.FatalRecordError); ok {
				diag.Skipped = append(diag.Skipped, fatal)
				continue
			}
			return nil, diag, err
		}
		if err := ValidateRow(tables, ref, row); err != nil {
			diag.SkippedRecords++
			if fatal, ok := err.(*core.FatalRecordError); ok {
				diag.Skipped = append(diag.Skipped, fatal)
				continue
			}
			return nil, diag, err
		}
		if len(row.Corrected) > 0 {
			diag.OutlierRows++
			diag.Rejections = append(diag.Rejections, row.Rejections...)
		}
		cleaned = append(cleaned, row)
	}

	cleaned, removed := dedupeRows(cleaned)
	diag.DuplicatesRemoved = removed

	if len(cleaned) == 0 {
		return nil, diag, nil
	}

	acc := EnrichGroup(tables, cleaned)
	rows, anomaly, err := ExpandGroup(tables, acc, cleaned)
	if err != nil {
		return nil, diag, err
	}
	diag.CauseAnomaly = anomaly

	return rows, diag, nil
}

// dedupeRows drops rows whose typed values are identical across every
// retained column, keeping the first occurrence.
func dedupeRows(rows []*CleanedRow) ([]*CleanedRow, int) {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	removed := 0
	for _, row := range rows {
		fp := fingerprint(row)
		if _, dup := seen[fp]; dup {
			removed++
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, row)
	}
	return out, removed
}

// fingerprint renders a row's typed values in a fixed column order.
func fingerprint(row *CleanedRow) string {
	var b strings.Builder
	for _, col := range retainedColumns {
		v := row.Values[col]
		if t, ok := v.(time.Time); ok {
			fmt.Fprintf(&b, "%d|", t.Unix())
			continue
		}
		fmt.Fprintf(&b, "%v|", v)
	}
	return b.String()
}
