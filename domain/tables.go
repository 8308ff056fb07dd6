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

// Package domain holds the reference data and classification rules of the
// Brazilian federal highway accident domain: the UF table, severity weights,
// age brackets, time-of-day buckets and the coordinate envelope. Everything
// is exposed through an immutable Tables value built once at startup and
// injected into the transform, so classification rules never hide inside
// transform logic.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotInformed is the canonical label for any value the source did not
// provide or that failed validation.
const NotInformed = "Não informado"

// MaxAge is the upper bound for a plausible involved-person age.
const MaxAge = 200

// MinVehicleYear is the lower bound for a plausible fabrication year.
const MinVehicleYear = 1900

// Brazil's continental bounding envelope, degrees.
const (
	MinLatitude  = -33.75
	MaxLatitude  = 5.27
	MinLongitude = -73.99
	MaxLongitude = -28.84
)

// State describes one federative unit.
type State struct {
	Name   string
	Region string
}

// Tables is the immutable set of domain lookup tables. Construct it with
// NewTables and share it freely; all methods are safe for concurrent use.
type Tables struct {
	states          map[string]State
	pedestrianTypes map[string]struct{}
	nullSentinels   map[string]struct{}
}

// NewTables builds the full lookup set.
func NewTables() *Tables {
	t := &Tables{
		states: map[string]State{
			"AC": {"Acre", "Norte"},
			"AL": {"Alagoas", "Nordeste"},
			"AP": {"Amapá", "Norte"},
			"AM": {"Amazonas", "Norte"},
			"BA": {"Bahia", "Nordeste"},
			"CE": {"Ceará", "Nordeste"},
			"DF": {"Distrito Federal", "Centro-Oeste"},
			"ES": {"Espírito Santo", "Sudeste"},
			"GO": {"Goiás", "Centro-Oeste"},
			"MA": {"Maranhão", "Nordeste"},
			"MT": {"Mato Grosso", "Centro-Oeste"},
			"MS": {"Mato Grosso do Sul", "Centro-Oeste"},
			"MG": {"Minas Gerais", "Sudeste"},
			"PA": {"Pará", "Norte"},
			"PB": {"Paraíba", "Nordeste"},
			"PR": {"Paraná", "Sul"},
			"PE": {"Pernambuco", "Nordeste"},
			"PI": {"Piauí", "Nordeste"},
			"RJ": {"Rio de Janeiro", "Sudeste"},
			"RN": {"Rio Grande do Norte", "Nordeste"},
			"RS": {"Rio Grande do Sul", "Sul"},
			"RO": {"Rondônia", "Norte"},
			"RR": {"Roraima", "Norte"},
			"SC": {"Santa Catarina", "Sul"},
			"SP": {"São Paulo", "Sudeste"},
			"SE": {"Sergipe", "Nordeste"},
			"TO": {"Tocantins", "Norte"},
		},
		pedestrianTypes: map[string]struct{}{
			"Atropelamento":             {},
			"Atropelamento de Pedestre": {},
			"Atropelamento de Pessoa":   {},
		},
		nullSentinels: map[string]struct{}{
			"":         {},
			"na":       {},
			"n/a":      {},
			"nan":      {},
			"null":     {},
			"(null)":   {},
			"none":     {},
			"nonetype": {},
			"inválido": {},
			"invalido": {},
		},
	}
	return t
}

// KnownState reports whether uf is one of the 27 federative units.
func (t *Tables) KnownState(uf string) bool {
	_, ok := t.states[uf]
	return ok
}

// StateName returns the full name for a UF code, or NotInformed.
func (t *Tables) StateName(uf string) string {
	if s, ok := t.states[uf]; ok {
		return s.Name
	}
	return NotInformed
}

// Region returns the macro-region for a UF code, or NotInformed.
func (t *Tables) Region(uf string) string {
	if s, ok := t.states[uf]; ok {
		return s.Region
	}
	return NotInformed
}

// IsPedestrianType reports whether the accident type describes a
// pedestrian strike. Pedestrian strikes score a higher severity weight.
func (t *Tables) IsPedestrianType(accidentType string) bool {
	_, ok := t.pedestrianTypes[accidentType]
	return ok
}

// IsNullSentinel reports whether the raw cell text is one of the literals
// the bronze files use to mean "no value". Matching is case-insensitive
// and ignores surrounding whitespace.
func (t *Tables) IsNullSentinel(raw string) bool {
	_, ok := t.nullSentinels[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// InBrazil reports whether the coordinate pair falls inside Brazil's
// bounding envelope.
func (t *Tables) InBrazil(lat, lon float64) bool {
	return lat >= MinLatitude && lat <= MaxLatitude &&
		lon >= MinLongitude && lon <= MaxLongitude
}

// AgeBracket returns the decade bracket label for an age ("0-9" through
// "90-99", then "100+").
func (t *Tables) AgeBracket(age int64) string {
	if age >= 100 {
		return "100+"
	}
	low := (age / 10) * 10
	return fmt.Sprintf("%d-%d", low, low+9)
}

// AgeClass returns the ECA life-stage class for an age.
func (t *Tables) AgeClass(age int64) string {
	switch {
	case age <= 11:
		return "Criança"
	case age <= 17:
		return "Adolescente"
	case age <= 59:
		return "Adulto"
	default:
		return "Idoso"
	}
}

// PeriodOfDay buckets an hour of day into the four Brazilian dayparts.
func (t *Tables) PeriodOfDay(hour int) string {
	switch {
	case hour < 6:
		return "Madrugada"
	case hour < 12:
		return "Manhã"
	case hour < 18:
		return "Tarde"
	default:
		return "Noite"
	}
}

// WeekPeriod classifies a date as weekend or weekday.
func (t *Tables) WeekPeriod(d time.Time) string {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return "Final de semana"
	default:
		return "Segunda à Sexta"
	}
}

// WeekdayName returns the Portuguese weekday name for a date.
func (t *Tables) WeekdayName(d time.Time) string {
	switch d.Weekday() {
	case time.Monday:
		return "Segunda-feira"
	case time.Tuesday:
		return "Terça-feira"
	case time.Wednesday:
		return "Quarta-feira"
	case time.Thursday:
		return "Quinta-feira"
	case time.Friday:
		return "Sexta-feira"
	case time.Saturday:
		return "Sábado"
	default:
		return "Domingo"
	}
}

// UPS returns the severity weight (Unidade Padrão de Severidade) for an
// accident: 13 with any death, 6 for a pedestrian strike, 4 with
// injuries, 1 otherwise. The cascade is strict: deaths dominate, then
// the pedestrian qualifier regardless of the injury count, then plain
// injuries.
func (t *Tables) UPS(deaths, injured int64, pedestrian bool) int64 {
	switch {
	case deaths > 0:
		return 13
	case pedestrian:
		return 6
	case injured > 0:
		return 4
	default:
		return 1
	}
}

// Gravidade returns the severity label derived from the victim totals.
// A nil total (not informed on every record of the group) yields
// NotInformed rather than an unwarranted "Sem vítima".
func (t *Tables) Gravidade(deaths, injured interface{}) string {
	d, dok := deaths.(int64)
	i, iok := injured.(int64)
	switch {
	case dok && d > 0:
		return "Com morto"
	case iok && i > 0:
		return "Com ferido"
	case dok && iok:
		return "Sem vítima"
	default:
		return NotInformed
	}
}
