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
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prflakehouse/silveretl/core"
	"github.com/prflakehouse/silveretl/domain"
	"github.com/prflakehouse/silveretl/transform"
)

// Summary reports the outcome of one bronze-to-silver run.
type Summary struct {
	InputRows         int
	OutputRows        int
	DistinctAccidents int
	RecordsSkipped    int
	DuplicatesRemoved int
	OutlierRows       int
	CauseAnomalies    int
}

// Pipeline executes the silver transform: it drains the bronze source,
// groups records by accident identifier, transforms each group and writes
// the resulting rows to every configured sink.
type Pipeline struct {
	source   core.DataSource
	sinks    []core.DataSink
	tables   *domain.Tables
	refDate  time.Time
	workers  int
	strategy core.ErrorStrategy
	handler  core.ErrorHandler
	logger   *zap.Logger
}

// PipelineBuilder configures a Pipeline with a fluent interface.
type PipelineBuilder struct {
	pipeline *Pipeline
	errors   []error
}

// NewPipeline creates a new pipeline builder.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			workers:  1,
			strategy: core.SkipErrors,
		},
	}
}

// From sets the bronze data source.
func (b *PipelineBuilder) From(source core.DataSource) *PipelineBuilder {
	if source == nil {
		b.errors = append(b.errors, fmt.Errorf("source cannot be nil"))
		return b
	}
	b.pipeline.source = source
	return b
}

// To adds a silver sink. Every emitted row goes to every sink, in the
// same order.
func (b *PipelineBuilder) To(sink core.DataSink) *PipelineBuilder {
	if sink == nil {
		b.errors = append(b.errors, fmt.Errorf("sink cannot be nil"))
		return b
	}
	b.pipeline.sinks = append(b.pipeline.sinks, sink)
	return b
}

// WithTables overrides the domain lookup tables.
func (b *PipelineBuilder) WithTables(tables *domain.Tables) *PipelineBuilder {
	b.pipeline.tables = tables
	return b
}

// WithReferenceDate sets the upper bound for plausible occurrence dates
// and vehicle fabrication years. Defaults to the wall clock at Build.
func (b *PipelineBuilder) WithReferenceDate(ref time.Time) *PipelineBuilder {
	b.pipeline.refDate = ref
	return b
}

// WithWorkers sets how many accident groups are transformed in parallel.
// Output order stays deterministic regardless of the worker count.
func (b *PipelineBuilder) WithWorkers(n int) *PipelineBuilder {
	if n < 1 {
		b.errors = append(b.errors, fmt.Errorf("workers must be at least 1, got %d", n))
		return b
	}
	b.pipeline.workers = n
	return b
}

// WithErrorStrategy sets how source read errors are handled.
func (b *PipelineBuilder) WithErrorStrategy(strategy core.ErrorStrategy) *PipelineBuilder {
	b.pipeline.strategy = strategy
	return b
}

// WithErrorHandler installs a handler invoked for every skipped record.
func (b *PipelineBuilder) WithErrorHandler(handler core.ErrorHandler) *PipelineBuilder {
	b.pipeline.handler = handler
	return b
}

// WithLogger sets the run logger. Defaults to a no-op logger.
func (b *PipelineBuilder) WithLogger(logger *zap.Logger) *PipelineBuilder {
	b.pipeline.logger = logger
	return b
}

// Build validates the configuration and returns the pipeline.
func (b *PipelineBuilder) Build() (*Pipeline, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("pipeline configuration errors: %v", b.errors)
	}
	if b.pipeline.source == nil {
		return nil, fmt.Errorf("pipeline must have a data source")
	}
	if len(b.pipeline.sinks) == 0 {
		return nil, fmt.Errorf("pipeline must have at least one data sink")
	}
	if b.pipeline.tables == nil {
		b.pipeline.tables = domain.NewTables()
	}
	if b.pipeline.refDate.IsZero() {
		b.pipeline.refDate = time.Now().UTC()
	}
	if b.pipeline.logger == nil {
		b.pipeline.logger = zap.NewNop()
	}
	return b.pipeline, nil
}

// group is one accident's raw records, in first-seen order.
type group struct {
	key     string
	records []core.Record
}

// groupResult is the transform outcome for one group.
type groupResult struct {
	rows []core.Record
	diag transform.GroupDiagnostics
	err  error
}

// Execute runs the pipeline. It drains the source, transforms every
// accident group and writes the silver rows group by group, groups in
// first-seen source order. The summary is returned even when the run
// aborts, reflecting the work done up to the failure.
func (p *Pipeline) Execute(ctx context.Context) (*Summary, error) {
	defer p.source.Close()

	summary := &Summary{}

	groups, err := p.collectGroups(ctx, summary)
	if err != nil {
		return summary, err
	}
	summary.DistinctAccidents = len(groups)

	results := make([]groupResult, len(groups))
	if p.workers > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(p.workers)
		for i := range groups {
			i := i
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				rows, diag, err := transform.TransformGroup(p.tables, p.refDate, groups[i].records)
				results[i] = groupResult{rows: rows, diag: diag, err: err}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return summary, err
		}
	} else {
		for i := range groups {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			rows, diag, err := transform.TransformGroup(p.tables, p.refDate, groups[i].records)
			results[i] = groupResult{rows: rows, diag: diag, err: err}
		}
	}

	for i, res := range results {
		if err := p.accountGroup(ctx, groups[i], res, summary); err != nil {
			p.logSummary(summary)
			return summary, err
		}
		for _, row := range res.rows {
			for _, sink := range p.sinks {
				if err := sink.Write(ctx, row); err != nil {
					return summary, fmt.Errorf("write failed: %w", err)
				}
			}
			summary.OutputRows++
		}
	}

	for _, sink := range p.sinks {
		if err := sink.Flush(); err != nil {
			return summary, fmt.Errorf("flush failed: %w", err)
		}
	}

	p.logSummary(summary)
	return summary, nil
}

// collectGroups drains the source and buckets records by their raw
// accident identifier, keeping first-seen order. Rows of one accident
// need not be contiguous in the source. Records without an identifier
// cannot be grouped and are skipped here.
func (p *Pipeline) collectGroups(ctx context.Context, summary *Summary) ([]group, error) {
	index := make(map[string]int)
	var groups []group

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := p.source.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if p.strategy == core.FailFast {
				return nil, fmt.Errorf("read failed: %w", err)
			}
			summary.RecordsSkipped++
			p.handleError(ctx, record, err)
			continue
		}
		summary.InputRows++

		key := rawAccidentID(record)
		if key == "" {
			summary.RecordsSkipped++
			p.handleError(ctx, record, &core.FatalRecordError{
				RecordID: "unknown",
				Reason:   "missing accident identifier",
			})
			continue
		}

		if i, ok := index[key]; ok {
			groups[i].records = append(groups[i].records, record)
		} else {
			index[key] = len(groups)
			groups = append(groups, group{key: key, records: []core.Record{record}})
		}
	}

	return groups, nil
}

// accountGroup folds one group's outcome into the summary. An
// aggregation invariant violation is a transform bug and aborts the run
// regardless of the error strategy.
func (p *Pipeline) accountGroup(ctx context.Context, g group, res groupResult, summary *Summary) error {
	if res.err != nil {
		var inv *core.AggregationInvariantError
		if errors.As(res.err, &inv) {
			p.logger.Error("aggregate invariant violated, aborting",
				zap.String("accident_id", inv.AccidentID),
				zap.String("field", inv.Field),
				zap.Int64("want", inv.Want),
				zap.Int64("got", inv.Got))
			return res.err
		}
		if p.strategy == core.FailFast {
			return res.err
		}
		summary.RecordsSkipped += len(g.records)
		p.handleError(ctx, nil, res.err)
		return nil
	}

	summary.RecordsSkipped += res.diag.SkippedRecords
	summary.DuplicatesRemoved += res.diag.DuplicatesRemoved
	summary.OutlierRows += res.diag.OutlierRows
	for _, rej := range res.diag.Rejections {
		p.logger.Debug("field rejected",
			zap.String("accident_id", g.key),
			zap.String("field", rej.Field),
			zap.Any("value", rej.Value),
			zap.String("reason", rej.Reason))
	}
	if res.diag.CauseAnomaly {
		summary.CauseAnomalies++
		p.logger.Warn("principal cause anomaly",
			zap.String("accident_id", g.key))
	}
	for _, fatal := range res.diag.Skipped {
		p.logger.Warn("record dropped",
			zap.String("accident_id", g.key),
			zap.String("reason", fatal.Reason))
		p.handleError(ctx, nil, fatal)
	}
	return nil
}

// handleError forwards a skipped-record error to the configured handler.
func (p *Pipeline) handleError(ctx context.Context, record core.Record, err error) {
	if p.handler == nil {
		return
	}
	if herr := p.handler.HandleError(ctx, record, err); herr != nil {
		p.logger.Warn("error handler failed", zap.Error(herr))
	}
}

// logSummary emits the run summary.
func (p *Pipeline) logSummary(s *Summary) {
	p.logger.Info("silver run summary",
		zap.Int("input_rows", s.InputRows),
		zap.Int("output_rows", s.OutputRows),
		zap.Int("distinct_accidents", s.DistinctAccidents),
		zap.Int("records_skipped", s.RecordsSkipped),
		zap.Int("duplicates_removed", s.DuplicatesRemoved),
		zap.Int("outlier_rows", s.OutlierRows),
		zap.Int("cause_anomalies", s.CauseAnomalies))
}

// rawAccidentID extracts the trimmed raw accident identifier used for
// grouping.
func rawAccidentID(record core.Record) string {
	v, ok := record["id"]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
