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

// Package transform implements the deterministic bronze-to-silver
// transform: per-field normalization, domain validation, accident-level
// enrichment, and the expansion of each accident group into silver rows
// with consistent victim-count aggregates.
package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/prflakehouse/silveretl/core"
	"github.com/prflakehouse/silveretl/domain"
)

// Layouts of the bronze date and time columns.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04:05"
)

// rawKind is the declared type of a bronze column.
type rawKind int

const (
	kindString rawKind = iota
	kindInt
	kindFloat
	kindDate
	kindTime
	kindBool
	kindUF
)

// rawKinds lists the bronze columns the transform retains and how each
// one is coerced. Columns absent from this map (regional, delegacia, uop,
// classificacao_acidente, fase_dia, dia_semana) are dropped outright:
// they are either administrative noise or recomputed downstream.
var rawKinds = map[string]rawKind{
	"id":                     kindInt,
	"pesid":                  kindInt,
	"data_inversa":           kindDate,
	"horario":                kindTime,
	"uf":                     kindUF,
	"br":                     kindInt,
	"km":                     kindFloat,
	"municipio":              kindString,
	"causa_principal":        kindBool,
	"causa_acidente":         kindString,
	"ordem_tipo_acidente":    kindInt,
	"tipo_acidente":          kindString,
	"sentido_via":            kindString,
	"condicao_meteorologica": kindString,
	"tipo_pista":             kindString,
	"tracado_via":            kindString,
	"uso_solo":               kindString,
	"id_veiculo":             kindInt,
	"tipo_veiculo":           kindString,
	"marca":                  kindString,
	"ano_fabricacao_veiculo": kindInt,
	"tipo_envolvido":         kindString,
	"estado_fisico":          kindString,
	"idade":                  kindInt,
	"sexo":                   kindString,
	"ilesos":                 kindInt,
	"feridos_leves":          kindInt,
	"feridos_graves":         kindInt,
	"mortos":                 kindInt,
	"latitude":               kindFloat,
	"longitude":              kindFloat,
}

// retainedColumns is rawKinds' key set in bronze header order, used for
// deterministic duplicate fingerprints.
var retainedColumns = []string{
	"id", "pesid", "data_inversa", "horario", "uf", "br", "km",
	"municipio", "causa_principal", "causa_acidente", "ordem_tipo_acidente",
	"tipo_acidente", "sentido_via", "condicao_meteorologica", "tipo_pista",
	"tracado_via", "uso_solo", "id_veiculo", "tipo_veiculo", "marca",
	"ano_fabricacao_veiculo", "tipo_envolvido", "estado_fisico", "idade",
	"sexo", "ilesos", "feridos_leves", "feridos_graves", "mortos",
	"latitude", "longitude",
}

// CleanedRow is one bronze record after normalization and validation.
// Values holds typed values keyed by bronze column name; a nil value means
// "not informed". Corrected lists fields nulled by a domain rule, with the
// rejected value and reason kept in Rejections; ParseRejected lists fields
// whose raw text failed coercion.
type CleanedRow struct {
	Values        core.Record
	Corrected     []string
	Rejections    []*core.DomainError
	ParseRejected []string
}

// reject nulls a field after a domain rejection, recording the rejected
// value and the rule it broke.
func (c *CleanedRow) reject(field, reason string) {
	c.Rejections = append(c.Rejections, &core.DomainError{
		Field:  field,
		Value:  c.Values[field],
		Reason: reason,
	})
	c.Values[field] = nil
	c.Corrected = append(c.Corrected, field)
}

// NormalizeRecord coerces one raw bronze record into a CleanedRow.
//
// Every coercion failure is field-local (the field becomes nil and is
// listed in ParseRejected) except two: a missing or unparseable accident
// identifier and an unparseable occurrence date make the record useless
// and return a FatalRecordError.
func NormalizeRecord(tables *domain.Tables, rec core.Record) (*CleanedRow, error) {
	row := &CleanedRow{Values: make(core.Record, len(rawKinds))}

	rawID, ok := rawCell(tables, rec, "id")
	if !ok {
		return nil, &core.FatalRecordError{RecordID: "unknown", Reason: "missing accident identifier"}
	}
	id, err := parseInt(rawID)
	if err != nil {
		return nil, &core.FatalRecordError{RecordID: rawID, Reason: "invalid accident identifier", Err: err}
	}
	row.Values["id"] = id

	for _, col := range retainedColumns {
		if col == "id" {
			continue
		}
		raw, ok := rawCell(tables, rec, col)
		if !ok {
			if col == "data_inversa" {
				return nil, &core.FatalRecordError{RecordID: rawID, Reason: "missing occurrence date"}
			}
			row.Values[col] = nil
			continue
		}

		var v interface{}
		var perr error
		switch rawKinds[col] {
		case kindInt:
			v, perr = parseInt(raw)
			// Bronze extracts use negative ages as a not-informed
			// placeholder, not as data.
			if perr == nil && col == "idade" && v.(int64) < 0 {
				v = nil
			}
		case kindFloat:
			v, perr = parseFloat(raw)
		case kindDate:
			v, perr = time.Parse(DateLayout, raw)
			if perr != nil {
				return nil, &core.FatalRecordError{
					RecordID: rawID,
					Reason:   "unparseable occurrence date",
					Err:      &core.ParseError{Field: col, Value: raw, Err: perr},
				}
			}
		case kindTime:
			v, perr = time.Parse(TimeLayout, raw)
		case kindBool:
			v, perr = parseSimNao(raw)
		case kindUF:
			v = strings.ToUpper(raw)
		default:
			v = normalizeText(col, raw)
		}

		if perr != nil {
			row.Values[col] = nil
			row.ParseRejected = append(row.ParseRejected, col)
			continue
		}
		row.Values[col] = v
	}

	return row, nil
}

// rawCell fetches a trimmed raw cell, reporting false when the cell is
// absent, empty, or one of the null sentinels.
func rawCell(tables *domain.Tables, rec core.Record, col string) (string, bool) {
	v, ok := rec[col]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if tables.IsNullSentinel(s) {
		return "", false
	}
	return s, true
}

// parseInt parses an integer cell. Bronze exports sometimes serialize
// integer columns as floats ("35.0"), so an integral float parse is
// accepted as a fallback.
func parseInt(raw string) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	n := int64(f)
	if float64(n) != f {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

// parseFloat parses a float cell, accepting the Brazilian decimal comma.
func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
}

// parseSimNao parses the Sim/Não flag columns.
func parseSimNao(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "sim", "s":
		return true, nil
	case "não", "nao", "n":
		return false, nil
	default:
		return false, strconv.ErrSyntax
	}
}

// normalizeText applies the column-specific rewrite rules inherited from
// the bronze extraction: land-use flags become Urbano/Rural and the
// unaccented "Ceu" spellings of the weather column are fixed.
func normalizeText(col, raw string) string {
	switch col {
	case "uso_solo":
		switch strings.ToLower(raw) {
		case "sim":
			return "Urbano"
		case "não", "nao":
			return "Rural"
		}
	case "condicao_meteorologica":
		if strings.HasPrefix(raw, "Ceu ") || raw == "Ceu" {
			return strings.Replace(raw, "Ceu", "Céu", 1)
		}
	}
	return raw
}
