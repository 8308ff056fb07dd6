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

package silveretl

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prflakehouse/silveretl/core"
)

var testRef = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

// sliceSource serves records from memory.
type sliceSource struct {
	records []core.Record
	index   int
	closed  bool
}

func (s *sliceSource) Read(ctx context.Context) (core.Record, error) {
	if s.index >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.index]
	s.index++
	return rec, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

// memorySink collects written records in order.
type memorySink struct {
	records []core.Record
	flushed bool
	closed  bool
}

func (m *memorySink) Write(ctx context.Context, record core.Record) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memorySink) Flush() error {
	m.flushed = true
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

// bronzeRecord builds a minimal raw involvement for the given accident.
func bronzeRecord(accidentID, pesid string, overrides map[string]interface{}) core.Record {
	rec := core.Record{
		"id":              accidentID,
		"pesid":           pesid,
		"data_inversa":    "15/03/2024",
		"horario":         "08:00:00",
		"uf":              "PR",
		"br":              "376",
		"causa_principal": "Sim",
		"causa_acidente":  "Velocidade Incompatível",
		"tipo_acidente":   "Saída de leito carroçável",
		"ilesos":          "1",
		"feridos_leves":   "0",
		"feridos_graves":  "0",
		"mortos":          "0",
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

func buildPipeline(t *testing.T, source core.DataSource, sink core.DataSink, workers int) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline().
		From(source).
		To(sink).
		WithReferenceDate(testRef).
		WithWorkers(workers).
		Build()
	require.NoError(t, err)
	return pipeline
}

func TestPipelineBuilderValidation(t *testing.T) {
	_, err := NewPipeline().Build()
	assert.Error(t, err)

	_, err = NewPipeline().From(&sliceSource{}).Build()
	assert.Error(t, err)

	_, err = NewPipeline().From(&sliceSource{}).To(&memorySink{}).WithWorkers(0).Build()
	assert.Error(t, err)

	_, err = NewPipeline().From(nil).To(&memorySink{}).Build()
	assert.Error(t, err)
}

func TestPipelineGroupsNonContiguousRecords(t *testing.T) {
	// Accident 1's rows are interleaved with accident 2's.
	source := &sliceSource{records: []core.Record{
		bronzeRecord("1", "10", nil),
		bronzeRecord("2", "20", nil),
		bronzeRecord("1", "11", map[string]interface{}{"causa_principal": "Não"}),
	}}
	sink := &memorySink{}

	summary, err := buildPipeline(t, source, sink, 1).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.InputRows)
	assert.Equal(t, 2, summary.DistinctAccidents)
	assert.Equal(t, 3, summary.OutputRows)
	require.Len(t, sink.records, 3)

	// Groups emit in first-seen order: both accident-1 rows, then accident 2.
	assert.Equal(t, int64(1), sink.records[0]["sinistro_id"])
	assert.Equal(t, int64(1), sink.records[1]["sinistro_id"])
	assert.Equal(t, int64(2), sink.records[2]["sinistro_id"])

	assert.True(t, source.closed)
	assert.True(t, sink.flushed)
}

func TestPipelineSkipsRecordsWithoutID(t *testing.T) {
	source := &sliceSource{records: []core.Record{
		bronzeRecord("1", "10", nil),
		{"pesid": "99", "data_inversa": "15/03/2024"},
	}}
	sink := &memorySink{}

	summary, err := buildPipeline(t, source, sink, 1).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.InputRows)
	assert.Equal(t, 1, summary.DistinctAccidents)
	assert.Equal(t, 1, summary.RecordsSkipped)
	assert.Len(t, sink.records, 1)
}

func TestPipelineSkipsFutureDatedRecords(t *testing.T) {
	source := &sliceSource{records: []core.Record{
		bronzeRecord("1", "10", nil),
		bronzeRecord("2", "20", map[string]interface{}{"data_inversa": "01/01/2030"}),
	}}
	sink := &memorySink{}

	summary, err := buildPipeline(t, source, sink, 1).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.RecordsSkipped)
	assert.Equal(t, 1, summary.OutputRows)
	require.Len(t, sink.records, 1)
	assert.Equal(t, int64(1), sink.records[0]["sinistro_id"])
}

func TestPipelineParallelOutputIsDeterministic(t *testing.T) {
	const accidents = 20
	records := make([]core.Record, 0, accidents)
	for i := 1; i <= accidents; i++ {
		records = append(records, bronzeRecord(fmt.Sprint(i), fmt.Sprint(100+i), nil))
	}

	sequential := &memorySink{}
	_, err := buildPipeline(t, &sliceSource{records: records}, sequential, 1).Execute(context.Background())
	require.NoError(t, err)

	parallel := &memorySink{}
	_, err = buildPipeline(t, &sliceSource{records: records}, parallel, 4).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, parallel.records, len(sequential.records))
	for i := range sequential.records {
		assert.Equal(t, sequential.records[i]["sinistro_id"], parallel.records[i]["sinistro_id"], "row %d", i)
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	records := []core.Record{
		bronzeRecord("7", "70", nil),
		bronzeRecord("7", "71", map[string]interface{}{
			"causa_principal": "Não",
			"feridos_leves":   "1",
			"ilesos":          "0",
		}),
	}

	run := func() []core.Record {
		sink := &memorySink{}
		_, err := buildPipeline(t, &sliceSource{records: records}, sink, 1).Execute(context.Background())
		require.NoError(t, err)
		return sink.records
	}

	first := run()
	second := run()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i], second[i], "row %d", i)
	}
}

func TestPipelineSummaryTallies(t *testing.T) {
	records := []core.Record{
		bronzeRecord("1", "10", nil),
		// exact duplicate of the row above
		bronzeRecord("1", "10", nil),
		// implausible age makes an outlier row
		bronzeRecord("2", "20", map[string]interface{}{"idade": "500"}),
		// no principal cause makes an anomaly
		bronzeRecord("3", "30", map[string]interface{}{"causa_principal": "Não"}),
	}
	sink := &memorySink{}

	summary, err := buildPipeline(t, &sliceSource{records: records}, sink, 1).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.InputRows)
	assert.Equal(t, 3, summary.DistinctAccidents)
	assert.Equal(t, 1, summary.DuplicatesRemoved)
	assert.Equal(t, 1, summary.OutlierRows)
	assert.Equal(t, 1, summary.CauseAnomalies)
	assert.Equal(t, 3, summary.OutputRows)
}

func TestPipelineMultipleSinksReceiveSameRows(t *testing.T) {
	first := &memorySink{}
	second := &memorySink{}

	pipeline, err := NewPipeline().
		From(&sliceSource{records: []core.Record{bronzeRecord("1", "10", nil)}}).
		To(first).
		To(second).
		WithReferenceDate(testRef).
		Build()
	require.NoError(t, err)

	_, err = pipeline.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, first.records, 1)
	require.Len(t, second.records, 1)
	assert.Equal(t, first.records[0], second.records[0])
}
