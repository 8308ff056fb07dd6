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
	"strconv"

	"github.com/prflakehouse/silveretl/core"
	"github.com/prflakehouse/silveretl/domain"
)

// ExpandGroup turns one enriched accident into its silver rows: one row
// per recorded (person, vehicle, cause) involvement, accident-level
// fields repeated on every row. Rows flagged as the principal cause come
// first; within each partition the source order is preserved.
//
// The returned flag reports a principal-cause anomaly: a well-formed
// group flags exactly one of its rows as the principal cause.
//
// Before returning, the victim-count columns of every emitted row are
// checked against totals recomputed from the group's distinct persons; a
// mismatch aborts with AggregationInvariantError.
func ExpandGroup(tables *domain.Tables, acc *Accident, rows []*CleanedRow) ([]core.Record, bool, error) {
	ordered := make([]*CleanedRow, 0, len(rows))
	principal := 0
	for _, row := range rows {
		if flag, ok := row.Values["causa_principal"].(bool); ok && flag {
			ordered = append(ordered, row)
			principal++
		}
	}
	for _, row := range rows {
		if flag, ok := row.Values["causa_principal"].(bool); ok && flag {
			continue
		}
		ordered = append(ordered, row)
	}

	out := make([]core.Record, 0, len(ordered))
	for _, row := range ordered {
		rec := acc.Values.Clone()
		rec["sinistro_id"] = acc.ID
		rec["id_envolvido"] = row.Values["pesid"]
		rec["veiculo_id"] = row.Values["id_veiculo"]
		rec["sinistro_tipo"] = orNotInformed(row.Values["tipo_acidente"])
		rec["sinistro_causa"] = orNotInformed(row.Values["causa_acidente"])
		rec["sinistro_causa_principal"] = row.Values["causa_principal"]
		rec["sinistro_ordem_tipo"] = row.Values["ordem_tipo_acidente"]
		rec["envolvido_idade"] = row.Values["idade"]
		rec["envolvido_sexo"] = row.Values["sexo"]
		rec["envolvido_tipo"] = row.Values["tipo_envolvido"]
		rec["estado_fisico"] = row.Values["estado_fisico"]
		rec["veiculo_tipo"] = row.Values["tipo_veiculo"]
		rec["veiculo_marca_modelo"] = row.Values["marca"]
		rec["veiculo_ano_fabricacao"] = row.Values["ano_fabricacao_veiculo"]

		if age, ok := row.Values["idade"].(int64); ok {
			rec["faixa_etaria_ano"] = tables.AgeBracket(age)
			rec["faixa_etaria_classe"] = tables.AgeClass(age)
		} else {
			rec["faixa_etaria_ano"] = domain.NotInformed
			rec["faixa_etaria_classe"] = domain.NotInformed
		}

		out = append(out, rec)
	}

	if err := checkAggregates(acc, rows, out); err != nil {
		return nil, false, err
	}

	return out, principal != 1, nil
}

// checkAggregates recomputes the victim totals from the cleaned rows and
// verifies every emitted row carries exactly those totals.
func checkAggregates(acc *Accident, rows []*CleanedRow, emitted []core.Record) error {
	totals := countVictims(rows)
	fields := append([]string{}, victimFlags...)
	fields = append(fields, "feridos")
	for _, rec := range emitted {
		for _, field := range fields {
			want := totals.value(field)
			got := rec[field]
			if want == nil && got == nil {
				continue
			}
			w, wok := want.(int64)
			g, gok := got.(int64)
			if wok && gok && w == g {
				continue
			}
			return &core.AggregationInvariantError{
				AccidentID: strconv.FormatInt(acc.ID, 10),
				Field:      field,
				Want:       w,
				Got:        g,
			}
		}
	}
	return nil
}

// orNotInformed backfills the canonical not-informed label on key
// descriptive strings so downstream grouping never splits on null.
func orNotInformed(v interface{}) interface{} {
	if v == nil {
		return domain.NotInformed
	}
	return v
}
