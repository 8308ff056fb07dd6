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

package readers

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prflakehouse/silveretl/core"
)

// CSVDirReader implements DataSource over every CSV file in a local
// bronze directory, reading files in lexical key order so a run over the
// same directory is always ordered the same way.
type CSVDirReader struct {
	files   []string
	index   int
	current *CSVReader
	options []ReaderOptionCSV
	stats   CSVReaderStats
}

// NewCSVDirReader lists the .csv files under dir and returns a reader
// that streams them back to back. The CSV options apply to every file.
func NewCSVDirReader(dir string, options ...ReaderOptionCSV) (*CSVDirReader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &CSVReaderError{Op: "list_dir", Err: err}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return &CSVDirReader{
		files:   files,
		options: options,
		stats:   CSVReaderStats{NullValueCounts: make(map[string]int64)},
	}, nil
}

// Read implements the DataSource interface.
func (d *CSVDirReader) Read(ctx context.Context) (core.Record, error) {
	for {
		if d.current == nil {
			if d.index >= len(d.files) {
				return nil, io.EOF
			}
			file, err := os.Open(d.files[d.index])
			if err != nil {
				return nil, &CSVReaderError{Op: "open_file", Err: err}
			}
			reader, err := NewCSVReader(file, d.options...)
			if err != nil {
				file.Close()
				return nil, err
			}
			d.current = reader
		}

		record, err := d.current.Read(ctx)
		if err == io.EOF {
			d.mergeStats()
			if cerr := d.current.Close(); cerr != nil {
				return nil, cerr
			}
			d.current = nil
			d.index++
			continue
		}
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}

// Close implements the DataSource interface.
func (d *CSVDirReader) Close() error {
	if d.current != nil {
		d.mergeStats()
		err := d.current.Close()
		d.current = nil
		return err
	}
	return nil
}

// Stats returns the accumulated reader statistics across files.
func (d *CSVDirReader) Stats() CSVReaderStats {
	stats := d.stats
	if d.current != nil {
		cur := d.current.Stats()
		stats.RecordsRead += cur.RecordsRead
		stats.ReadDuration += cur.ReadDuration
		if cur.LastReadTime.After(stats.LastReadTime) {
			stats.LastReadTime = cur.LastReadTime
		}
	}
	return stats
}

// mergeStats folds the finished file's statistics into the directory
// totals.
func (d *CSVDirReader) mergeStats() {
	cur := d.current.Stats()
	d.stats.RecordsRead += cur.RecordsRead
	d.stats.ReadDuration += cur.ReadDuration
	if cur.LastReadTime.After(d.stats.LastReadTime) {
		d.stats.LastReadTime = cur.LastReadTime
	}
	for k, v := range cur.NullValueCounts {
		d.stats.NullValueCounts[k] += v
	}
}
