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
	"time"

	"github.com/prflakehouse/silveretl/core"
	"github.com/prflakehouse/silveretl/domain"
)

// ValidateRow applies the domain rules to a normalized row. Rejected
// fields are nulled, with the value and reason recorded as a DomainError
// in Rejections; only an occurrence date after the reference date is
// fatal, because it proves the record does not belong to the extraction
// window.
func ValidateRow(tables *domain.Tables, ref time.Time, row *CleanedRow) error {
	if age, ok := row.Values["idade"].(int64); ok {
		if age < 0 || age > domain.MaxAge {
			row.reject("idade", fmt.Sprintf("age outside [0, %d]", domain.MaxAge))
		}
	}

	if d, ok := row.Values["data_inversa"].(time.Time); ok {
		if d.After(ref) {
			return &core.FatalRecordError{
				RecordID: recordID(row),
				Reason:   fmt.Sprintf("occurrence date %s after reference date %s",
					d.Format(DateLayout), ref.Format(DateLayout)),
			}
		}
	}

	lat, latOK := row.Values["latitude"].(float64)
	lon, lonOK := row.Values["longitude"].(float64)
	switch {
	case latOK && lonOK:
		if !tables.InBrazil(lat, lon) {
			row.reject("latitude", "coordinate pair outside the Brazil envelope")
			row.reject("longitude", "coordinate pair outside the Brazil envelope")
		}
	case latOK:
		row.reject("latitude", "coordinate pair incomplete")
	case lonOK:
		row.reject("longitude", "coordinate pair incomplete")
	}

	if uf, ok := row.Values["uf"].(string); ok {
		if !tables.KnownState(uf) {
			row.reject("uf", "unknown federative unit")
		}
	}

	if year, ok := row.Values["ano_fabricacao_veiculo"].(int64); ok {
		if year < domain.MinVehicleYear || year > int64(ref.Year()) {
			row.reject("ano_fabricacao_veiculo",
				fmt.Sprintf("fabrication year outside [%d, %d]", domain.MinVehicleYear, ref.Year()))
		}
	}

	return nil
}

// recordID renders the accident identifier of a cleaned row for error
// reporting.
func recordID(row *CleanedRow) string {
	if id, ok := row.Values["id"].(int64); ok {
		return fmt.Sprintf("%d", id)
	}
	return "unknown"
}
