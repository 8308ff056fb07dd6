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

// Package schema pins the two fixed contracts of the pipeline: the
// 37-column bronze input produced by the PRF open-data extraction and the
// 45-column silver output, together with the per-column types that drive
// CSV formatting, the Parquet schema and the PostgreSQL DDL.
package schema

// ColumnType classifies a silver column for formatting and storage.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDate      // calendar date, no time component
	TypeTime      // wall-clock time of day
	TypeTimestamp // combined date and time
)

// InputColumns is the bronze header, in file order. Readers deliver every
// cell as a raw string under these names; nothing else is recognized.
var InputColumns = []string{
	"id",
	"pesid",
	"data_inversa",
	"dia_semana",
	"horario",
	"uf",
	"br",
	"km",
	"municipio",
	"causa_principal",
	"causa_acidente",
	"ordem_tipo_acidente",
	"tipo_acidente",
	"classificacao_acidente",
	"fase_dia",
	"sentido_via",
	"condicao_meteorologica",
	"tipo_pista",
	"tracado_via",
	"uso_solo",
	"id_veiculo",
	"tipo_veiculo",
	"marca",
	"ano_fabricacao_veiculo",
	"tipo_envolvido",
	"estado_fisico",
	"idade",
	"sexo",
	"ilesos",
	"feridos_leves",
	"feridos_graves",
	"mortos",
	"latitude",
	"longitude",
	"regional",
	"delegacia",
	"uop",
}

// SilverColumns is the silver output contract, in emission order. Every
// sink writes exactly these columns in exactly this order.
var SilverColumns = []string{
	"sinistro_id",
	"id_envolvido",
	"veiculo_id",
	"data",
	"horario",
	"data_hora",
	"ano",
	"hora",
	"dia_semana",
	"periodo",
	"periodo_semana",
	"uf",
	"localidade",
	"regiao",
	"municipio",
	"rodovia",
	"rodovia_numero",
	"quilometro",
	"latitude",
	"longitude",
	"sinistro_tipo",
	"sinistro_causa",
	"sinistro_causa_principal",
	"sinistro_ordem_tipo",
	"condicao_meteorologica",
	"via_tipo",
	"via_tracado",
	"via_sentido",
	"uso_solo",
	"envolvido_idade",
	"envolvido_sexo",
	"envolvido_tipo",
	"estado_fisico",
	"faixa_etaria_ano",
	"faixa_etaria_classe",
	"veiculo_tipo",
	"veiculo_marca_modelo",
	"veiculo_ano_fabricacao",
	"ilesos",
	"feridos_leves",
	"feridos_graves",
	"feridos",
	"mortos",
	"gravidade",
	"ups",
}

// SilverTypes maps each silver column to its type.
var SilverTypes = map[string]ColumnType{
	"sinistro_id":              TypeInt,
	"id_envolvido":             TypeInt,
	"veiculo_id":               TypeInt,
	"data":                     TypeDate,
	"horario":                  TypeTime,
	"data_hora":                TypeTimestamp,
	"ano":                      TypeInt,
	"hora":                     TypeInt,
	"dia_semana":               TypeString,
	"periodo":                  TypeString,
	"periodo_semana":           TypeString,
	"uf":                       TypeString,
	"localidade":               TypeString,
	"regiao":                   TypeString,
	"municipio":                TypeString,
	"rodovia":                  TypeString,
	"rodovia_numero":           TypeString,
	"quilometro":               TypeFloat,
	"latitude":                 TypeFloat,
	"longitude":                TypeFloat,
	"sinistro_tipo":            TypeString,
	"sinistro_causa":           TypeString,
	"sinistro_causa_principal": TypeBool,
	"sinistro_ordem_tipo":      TypeInt,
	"condicao_meteorologica":   TypeString,
	"via_tipo":                 TypeString,
	"via_tracado":              TypeString,
	"via_sentido":              TypeString,
	"uso_solo":                 TypeString,
	"envolvido_idade":          TypeInt,
	"envolvido_sexo":           TypeString,
	"envolvido_tipo":           TypeString,
	"estado_fisico":            TypeString,
	"faixa_etaria_ano":         TypeString,
	"faixa_etaria_classe":      TypeString,
	"veiculo_tipo":             TypeString,
	"veiculo_marca_modelo":     TypeString,
	"veiculo_ano_fabricacao":   TypeInt,
	"ilesos":                   TypeInt,
	"feridos_leves":            TypeInt,
	"feridos_graves":           TypeInt,
	"feridos":                  TypeInt,
	"mortos":                   TypeInt,
	"gravidade":                TypeString,
	"ups":                      TypeInt,
}
