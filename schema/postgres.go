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
	"fmt"
	"strings"
)

// Default location of the silver table in PostgreSQL.
const (
	PostgresSchema = "sinistros"
	PostgresTable  = "tb_sinistros_silver"
)

// postgresType maps a column type to its PostgreSQL column type.
func postgresType(t ColumnType) string {
	switch t {
	case TypeInt:
		return "BIGINT"
	case TypeFloat:
		return "DOUBLE PRECISION"
	case TypeBool:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// PostgresDDL returns the statements that bootstrap the silver schema:
// schema, table, and the three validation views used to check distinct
// accident, person and vehicle counts after a load.
func PostgresDDL(schemaName, tableName string) []string {
	if schemaName == "" {
		schemaName = PostgresSchema
	}
	if tableName == "" {
		tableName = PostgresTable
	}
	qualified := schemaName + "." + tableName

	cols := make([]string, 0, len(SilverColumns))
	for _, name := range SilverColumns {
		cols = append(cols, fmt.Sprintf("    %s %s", name, postgresType(SilverTypes[name])))
	}

	accidentCols := []string{
		"sinistro_id", "data", "horario", "data_hora", "ano", "hora",
		"dia_semana", "periodo", "periodo_semana", "uf", "localidade",
		"regiao", "municipio", "rodovia", "rodovia_numero", "quilometro",
		"latitude", "longitude", "condicao_meteorologica", "via_tipo",
		"via_tracado", "via_sentido", "uso_solo", "ilesos", "feridos_leves",
		"feridos_graves", "feridos", "mortos", "gravidade", "ups",
	}

	return []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)",
			qualified, strings.Join(cols, ",\n")),
		fmt.Sprintf("CREATE OR REPLACE VIEW %s.vw_sinistros AS\nSELECT DISTINCT %s\nFROM %s",
			schemaName, strings.Join(accidentCols, ", "), qualified),
		fmt.Sprintf("CREATE OR REPLACE VIEW %s.vw_envolvidos AS\nSELECT *\nFROM %s\nWHERE id_envolvido IS NOT NULL",
			schemaName, qualified),
		fmt.Sprintf("CREATE OR REPLACE VIEW %s.vw_veiculos AS\nSELECT DISTINCT sinistro_id, veiculo_id, veiculo_tipo, veiculo_marca_modelo, veiculo_ano_fabricacao\nFROM %s\nWHERE veiculo_id IS NOT NULL",
			schemaName, qualified),
	}
}
