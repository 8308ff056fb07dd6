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
	"strings"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractWidths(t *testing.T) {
	assert.Len(t, InputColumns, 37)
	assert.Len(t, SilverColumns, 45)
}

func TestEverySilverColumnIsTyped(t *testing.T) {
	for _, col := range SilverColumns {
		_, ok := SilverTypes[col]
		assert.True(t, ok, "column %s has no type", col)
	}
	assert.Len(t, SilverTypes, len(SilverColumns))
}

func TestSilverColumnOrderAnchors(t *testing.T) {
	assert.Equal(t, "sinistro_id", SilverColumns[0])
	assert.Equal(t, "id_envolvido", SilverColumns[1])
	assert.Equal(t, "veiculo_id", SilverColumns[2])
	assert.Equal(t, "gravidade", SilverColumns[43])
	assert.Equal(t, "ups", SilverColumns[44])
}

func TestArrowSchemaMatchesContract(t *testing.T) {
	s := ArrowSchema()
	require.Equal(t, len(SilverColumns), len(s.Fields()))

	for i, field := range s.Fields() {
		assert.Equal(t, SilverColumns[i], field.Name)
		assert.True(t, field.Nullable, "field %s must be nullable", field.Name)
	}

	byName := func(name string) arrow.DataType {
		idx := s.FieldIndices(name)
		require.Len(t, idx, 1, "field %s", name)
		return s.Field(idx[0]).Type
	}

	assert.Equal(t, arrow.PrimitiveTypes.Int64, byName("sinistro_id"))
	assert.Equal(t, arrow.PrimitiveTypes.Float64, byName("latitude"))
	assert.Equal(t, arrow.FixedWidthTypes.Boolean, byName("sinistro_causa_principal"))
	assert.Equal(t, arrow.FixedWidthTypes.Date32, byName("data"))
	assert.Equal(t, arrow.BinaryTypes.String, byName("horario"))
	assert.Equal(t, arrow.TIMESTAMP, byName("data_hora").ID())
}

func TestPostgresDDLStatements(t *testing.T) {
	stmts := PostgresDDL("", "")
	require.Len(t, stmts, 5)

	assert.Contains(t, stmts[0], "CREATE SCHEMA IF NOT EXISTS sinistros")
	assert.Contains(t, stmts[1], "CREATE TABLE IF NOT EXISTS sinistros.tb_sinistros_silver")

	// Every silver column appears in the table DDL.
	for _, col := range SilverColumns {
		assert.Contains(t, stmts[1], col)
	}

	assert.Contains(t, stmts[1], "data DATE")
	assert.Contains(t, stmts[1], "horario TIME")
	assert.Contains(t, stmts[1], "data_hora TIMESTAMP")
	assert.Contains(t, stmts[1], "sinistro_id BIGINT")
	assert.Contains(t, stmts[1], "latitude DOUBLE PRECISION")
	assert.Contains(t, stmts[1], "sinistro_causa_principal BOOLEAN")

	assert.Contains(t, stmts[2], "vw_sinistros")
	assert.Contains(t, stmts[2], "SELECT DISTINCT")
	assert.Contains(t, stmts[3], "vw_envolvidos")
	assert.Contains(t, stmts[3], "id_envolvido IS NOT NULL")
	assert.Contains(t, stmts[4], "vw_veiculos")
	assert.Contains(t, stmts[4], "veiculo_id IS NOT NULL")
}

func TestPostgresDDLCustomLocation(t *testing.T) {
	stmts := PostgresDDL("staging", "tb_test")
	assert.Contains(t, stmts[0], "staging")
	assert.Contains(t, stmts[1], "staging.tb_test")
	assert.False(t, strings.Contains(stmts[1], "sinistros.tb_sinistros_silver"))
}

func TestAccidentViewExcludesPersonColumns(t *testing.T) {
	stmts := PostgresDDL("", "")
	view := stmts[2]
	// Accident-level projection must not fan out per person/vehicle.
	assert.False(t, strings.Contains(view, "id_envolvido"))
	assert.False(t, strings.Contains(view, "veiculo_id"))
	assert.False(t, strings.Contains(view, "faixa_etaria"))
}
