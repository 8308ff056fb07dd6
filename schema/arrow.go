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

package schema

import (
	"github.com/apache/arrow/go/v12/arrow"
)

// ArrowSchema returns the Arrow schema of the silver table, columns in
// SilverColumns order, every field nullable. Times of day stay strings
// because Parquet TIME readers disagree on sub-day units; the combined
// data_hora carries the microsecond timestamp.
func ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, len(SilverColumns))
	for _, name := range SilverColumns {
		var dt arrow.DataType
		switch SilverTypes[name] {
		case TypeInt:
			dt = arrow.PrimitiveTypes.Int64
		case TypeFloat:
			dt = arrow.PrimitiveTypes.Float64
		case TypeBool:
			dt = arrow.FixedWidthTypes.Boolean
		case TypeDate:
			dt = arrow.FixedWidthTypes.Date32
		case TypeTimestamp:
			dt = &arrow.TimestampType{Unit: arrow.Microsecond}
		default:
			dt = arrow.BinaryTypes.String
		}
		fields = append(fields, arrow.Field{Name: name, Type: dt, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}
