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

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStates(t *testing.T) {
	tables := NewTables()

	assert.True(t, tables.KnownState("SP"))
	assert.Equal(t, "São Paulo", tables.StateName("SP"))
	assert.Equal(t, "Sudeste", tables.Region("SP"))
	assert.Equal(t, "Centro-Oeste", tables.Region("DF"))
	assert.Equal(t, "Norte", tables.Region("TO"))

	assert.False(t, tables.KnownState("XX"))
	assert.Equal(t, NotInformed, tables.StateName("XX"))
	assert.Equal(t, NotInformed, tables.Region(""))
}

func TestUPSCascade(t *testing.T) {
	tables := NewTables()

	tests := []struct {
		name       string
		deaths     int64
		injured    int64
		pedestrian bool
		want       int64
	}{
		{"death dominates", 1, 0, false, 13},
		{"death dominates pedestrian", 2, 3, true, 13},
		{"pedestrian with injuries", 0, 1, true, 6},
		{"pedestrian without injuries", 0, 0, true, 6},
		{"injuries only", 0, 2, false, 4},
		{"no victims", 0, 0, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.UPS(tt.deaths, tt.injured, tt.pedestrian))
		})
	}
}

func TestPedestrianTypes(t *testing.T) {
	tables := NewTables()

	assert.True(t, tables.IsPedestrianType("Atropelamento"))
	assert.True(t, tables.IsPedestrianType("Atropelamento de Pedestre"))
	assert.True(t, tables.IsPedestrianType("Atropelamento de Pessoa"))
	assert.False(t, tables.IsPedestrianType("Colisão frontal"))
	assert.False(t, tables.IsPedestrianType(""))
}

func TestGravidade(t *testing.T) {
	tables := NewTables()

	assert.Equal(t, "Com morto", tables.Gravidade(int64(1), int64(0)))
	assert.Equal(t, "Com morto", tables.Gravidade(int64(2), int64(5)))
	assert.Equal(t, "Com ferido", tables.Gravidade(int64(0), int64(1)))
	assert.Equal(t, "Sem vítima", tables.Gravidade(int64(0), int64(0)))
	assert.Equal(t, NotInformed, tables.Gravidade(nil, nil))
	assert.Equal(t, "Com ferido", tables.Gravidade(nil, int64(3)))
}

func TestAgeBrackets(t *testing.T) {
	tables := NewTables()

	assert.Equal(t, "0-9", tables.AgeBracket(0))
	assert.Equal(t, "0-9", tables.AgeBracket(9))
	assert.Equal(t, "10-19", tables.AgeBracket(10))
	assert.Equal(t, "30-39", tables.AgeBracket(35))
	assert.Equal(t, "90-99", tables.AgeBracket(99))
	assert.Equal(t, "100+", tables.AgeBracket(100))
	assert.Equal(t, "100+", tables.AgeBracket(140))
}

func TestAgeClasses(t *testing.T) {
	tables := NewTables()

	assert.Equal(t, "Criança", tables.AgeClass(0))
	assert.Equal(t, "Criança", tables.AgeClass(11))
	assert.Equal(t, "Adolescente", tables.AgeClass(12))
	assert.Equal(t, "Adolescente", tables.AgeClass(17))
	assert.Equal(t, "Adulto", tables.AgeClass(18))
	assert.Equal(t, "Adulto", tables.AgeClass(59))
	assert.Equal(t, "Idoso", tables.AgeClass(60))
}

func TestPeriodOfDay(t *testing.T) {
	tables := NewTables()

	assert.Equal(t, "Madrugada", tables.PeriodOfDay(0))
	assert.Equal(t, "Madrugada", tables.PeriodOfDay(5))
	assert.Equal(t, "Manhã", tables.PeriodOfDay(6))
	assert.Equal(t, "Manhã", tables.PeriodOfDay(11))
	assert.Equal(t, "Tarde", tables.PeriodOfDay(12))
	assert.Equal(t, "Tarde", tables.PeriodOfDay(17))
	assert.Equal(t, "Noite", tables.PeriodOfDay(18))
	assert.Equal(t, "Noite", tables.PeriodOfDay(23))
}

func TestWeekClassification(t *testing.T) {
	tables := NewTables()

	monday := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 7, 6, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Segunda-feira", tables.WeekdayName(monday))
	assert.Equal(t, "Sábado", tables.WeekdayName(saturday))
	assert.Equal(t, "Domingo", tables.WeekdayName(sunday))

	assert.Equal(t, "Segunda à Sexta", tables.WeekPeriod(monday))
	assert.Equal(t, "Final de semana", tables.WeekPeriod(saturday))
	assert.Equal(t, "Final de semana", tables.WeekPeriod(sunday))
}

func TestCoordinateEnvelope(t *testing.T) {
	tables := NewTables()

	assert.True(t, tables.InBrazil(-15.79, -47.88))  // Brasília
	assert.True(t, tables.InBrazil(-23.55, -46.63))  // São Paulo
	assert.False(t, tables.InBrazil(40.71, -74.00))  // New York
	assert.False(t, tables.InBrazil(-23.55, 46.63))  // sign flip
	assert.False(t, tables.InBrazil(-34.60, -58.38)) // Buenos Aires
}

func TestNullSentinels(t *testing.T) {
	tables := NewTables()

	for _, raw := range []string{"", "NA", "n/a", "NULL", "(null)", "None", "NaN", "Inválido", "  na  "} {
		assert.True(t, tables.IsNullSentinel(raw), "expected %q to be a null sentinel", raw)
	}
	assert.False(t, tables.IsNullSentinel("0"))
	assert.False(t, tables.IsNullSentinel("Não informado"))
}
