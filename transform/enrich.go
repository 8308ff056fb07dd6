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

// Accident carries the accident-level portion of a silver group: the
// fields every emitted row of the group shares, already under their
// silver column names.
type Accident struct {
	ID     int64
	Values core.Record
}

// EnrichGroup derives the accident-level silver fields for one accident
// from its cleaned rows. Scalars that the source repeats on every row
// (date, location, road, weather) are taken from the first row in source
// order; the victim-count totals aggregate over the group's distinct
// persons.
func EnrichGroup(tables *domain.Tables, rows []*CleanedRow) *Accident {
	first := rows[0].Values
	id := first["id"].(int64)
	out := make(core.Record, 32)

	d := first["data_inversa"].(time.Time)
	out["data"] = d
	out["ano"] = int64(d.Year())
	out["dia_semana"] = tables.WeekdayName(d)
	out["periodo_semana"] = tables.WeekPeriod(d)

	if h, ok := first["horario"].(time.Time); ok {
		out["horario"] = h
		out["hora"] = int64(h.Hour())
		out["periodo"] = tables.PeriodOfDay(h.Hour())
		out["data_hora"] = time.Date(d.Year(), d.Month(), d.Day(),
			h.Hour(), h.Minute(), h.Second(), 0, time.UTC)
	} else {
		out["horario"] = nil
		out["hora"] = nil
		out["periodo"] = domain.NotInformed
		out["data_hora"] = nil
	}

	if uf, ok := first["uf"].(string); ok {
		out["uf"] = uf
		out["localidade"] = tables.StateName(uf)
		out["regiao"] = tables.Region(uf)
	} else {
		out["uf"] = nil
		out["localidade"] = domain.NotInformed
		out["regiao"] = domain.NotInformed
	}

	if br, ok := first["br"].(int64); ok {
		out["rodovia"] = fmt.Sprintf("BR-%03d", br)
		out["rodovia_numero"] = fmt.Sprintf("%03d", br)
	} else {
		out["rodovia"] = nil
		out["rodovia_numero"] = nil
	}

	out["municipio"] = first["municipio"]
	out["quilometro"] = first["km"]
	out["latitude"] = first["latitude"]
	out["longitude"] = first["longitude"]
	out["condicao_meteorologica"] = first["condicao_meteorologica"]
	out["via_tipo"] = first["tipo_pista"]
	out["via_tracado"] = first["tracado_via"]
	out["via_sentido"] = first["sentido_via"]
	out["uso_solo"] = first["uso_solo"]

	totals := countVictims(rows)
	out["ilesos"] = totals.value("ilesos")
	out["feridos_leves"] = totals.value("feridos_leves")
	out["feridos_graves"] = totals.value("feridos_graves")
	out["feridos"] = totals.value("feridos")
	out["mortos"] = totals.value("mortos")
	out["gravidade"] = tables.Gravidade(out["mortos"], out["feridos"])

	pedestrian := false
	for _, row := range rows {
		if t, ok := row.Values["tipo_acidente"].(string); ok && tables.IsPedestrianType(t) {
			pedestrian = true
			break
		}
	}
	out["ups"] = tables.UPS(totals.sum("mortos"), totals.sum("feridos"), pedestrian)

	return &Accident{ID: id, Values: out}
}

// victimCounts accumulates the four source flags over distinct persons.
// A flag whose value no row of the group informs stays uninformed, so the
// totals can distinguish "zero victims" from "unknown".
type victimCounts struct {
	sums     map[string]int64
	informed map[string]bool
}

var victimFlags = []string{"ilesos", "feridos_leves", "feridos_graves", "mortos"}

// countVictims sums the victim flags over the group's distinct persons.
// Persons are distinct by pesid; rows with no person identifier describe
// unidentified involvements and each counts on its own.
func countVictims(rows []*CleanedRow) *victimCounts {
	c := &victimCounts{
		sums:     make(map[string]int64, 5),
		informed: make(map[string]bool, 5),
	}
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if pesid, ok := row.Values["pesid"].(int64); ok {
			if _, dup := seen[pesid]; dup {
				continue
			}
			seen[pesid] = struct{}{}
		}
		for _, flag := range victimFlags {
			if n, ok := row.Values[flag].(int64); ok {
				c.sums[flag] += n
				c.informed[flag] = true
			}
		}
	}
	c.sums["feridos"] = c.sums["feridos_leves"] + c.sums["feridos_graves"]
	c.informed["feridos"] = c.informed["feridos_leves"] || c.informed["feridos_graves"]
	return c
}

// sum returns the accumulated total for a flag, zero when uninformed.
func (c *victimCounts) sum(flag string) int64 {
	return c.sums[flag]
}

// value returns the total as a silver value: int64 when informed, nil
// otherwise.
func (c *victimCounts) value(flag string) interface{} {
	if !c.informed[flag] {
		return nil
	}
	return c.sums[flag]
}
