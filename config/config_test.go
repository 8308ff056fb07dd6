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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "silveretl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
bronze:
  dir: /data/bronze
silver:
  csv_path: /data/silver/sinistros.csv
  parquet_path: /data/silver/sinistros.parquet
database:
  host: localhost
  name: lakehouse
  user: etl
  password: secret
transform:
  reference_date: "2024-12-31"
  workers: 4
logging:
  level: debug
`

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "/data/bronze", cfg.Bronze.Dir)
	assert.Equal(t, "/data/silver/sinistros.csv", cfg.Silver.CSVPath)
	assert.Equal(t, 4, cfg.Transform.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)

	ref, err := cfg.ReferenceDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), ref)

	dsn := cfg.Database.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=lakehouse")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
bronze:
  dir: /data/bronze
silver:
  csv_path: /tmp/out.csv
`))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Transform.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)

	ref, err := cfg.ReferenceDate()
	require.NoError(t, err)
	assert.True(t, ref.IsZero())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			"no input",
			"silver:\n  csv_path: /tmp/out.csv\n",
			ErrNoBronzeInput,
		},
		{
			"ambiguous input",
			"bronze:\n  dir: /data\n  s3:\n    bucket: b\nsilver:\n  csv_path: /tmp/out.csv\n",
			ErrAmbiguousInput,
		},
		{
			"no output",
			"bronze:\n  dir: /data\n",
			ErrNoSilverOutput,
		},
		{
			"bad reference date",
			"bronze:\n  dir: /data\nsilver:\n  csv_path: /tmp/o.csv\ntransform:\n  reference_date: 31/12/2024\n",
			ErrBadReferenceDate,
		},
		{
			"negative workers",
			"bronze:\n  dir: /data\nsilver:\n  csv_path: /tmp/o.csv\ntransform:\n  workers: -2\n",
			ErrBadWorkers,
		},
		{
			"incomplete database",
			"bronze:\n  dir: /data\ndatabase:\n  host: localhost\n",
			ErrIncompleteDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDatabaseCredentialsFromEnv(t *testing.T) {
	t.Setenv("PGUSER", "env_user")
	t.Setenv("PGPASSWORD", "env_pass")

	cfg, err := LoadConfig(writeConfig(t, `
bronze:
  dir: /data/bronze
database:
  host: localhost
  name: lakehouse
`))
	require.NoError(t, err)

	assert.Equal(t, "env_user", cfg.Database.User)
	assert.Contains(t, cfg.Database.DSN(), "password=env_pass")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
