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

// Package config loads and validates the YAML run configuration: where
// the bronze CSVs come from, where the silver outputs go, and the
// transform settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrNoBronzeInput    = errors.New("config: either bronze.dir or bronze.s3.bucket must be set")
	ErrAmbiguousInput   = errors.New("config: bronze.dir and bronze.s3.bucket are mutually exclusive")
	ErrNoSilverOutput   = errors.New("config: at least one silver output must be configured")
	ErrBadReferenceDate = errors.New("config: transform.reference_date must be YYYY-MM-DD")
	ErrBadWorkers       = errors.New("config: transform.workers must be at least 1")
	ErrIncompleteDB     = errors.New("config: database requires host, name and user")
)

// ReferenceDateLayout is the accepted reference date format.
const ReferenceDateLayout = "2006-01-02"

// S3Config locates the bronze objects in S3-compatible storage.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// BronzeConfig locates the raw input, either a local directory or S3.
type BronzeConfig struct {
	Dir string   `yaml:"dir"`
	S3  S3Config `yaml:"s3"`
}

// SilverConfig lists the silver outputs. Empty paths disable an output.
type SilverConfig struct {
	CSVPath     string `yaml:"csv_path"`
	ParquetPath string `yaml:"parquet_path"`
}

// DatabaseConfig configures the PostgreSQL silver destination. User and
// password fall back to the PGUSER/PGPASSWORD environment variables so
// credentials can stay out of the file.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether a database destination is configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != "" || d.Name != ""
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// TransformConfig holds the transform settings.
type TransformConfig struct {
	ReferenceDate string `yaml:"reference_date"`
	Workers       int    `yaml:"workers"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the full run configuration.
type Config struct {
	Bronze    BronzeConfig    `yaml:"bronze"`
	Silver    SilverConfig    `yaml:"silver"`
	Database  DatabaseConfig  `yaml:"database"`
	Transform TransformConfig `yaml:"transform"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoadConfig reads, parses and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values with sensible defaults and pulls
// database credentials from the environment when unset.
func (c *Config) applyDefaults() {
	if c.Transform.Workers == 0 {
		c.Transform.Workers = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.User == "" {
		c.Database.User = os.Getenv("PGUSER")
	}
	if c.Database.Password == "" {
		c.Database.Password = os.Getenv("PGPASSWORD")
	}
}

// Validate checks the configuration for contradictions and omissions.
func (c *Config) Validate() error {
	if c.Bronze.Dir == "" && c.Bronze.S3.Bucket == "" {
		return ErrNoBronzeInput
	}
	if c.Bronze.Dir != "" && c.Bronze.S3.Bucket != "" {
		return ErrAmbiguousInput
	}
	if c.Silver.CSVPath == "" && c.Silver.ParquetPath == "" && !c.Database.Enabled() {
		return ErrNoSilverOutput
	}
	if c.Database.Enabled() {
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return ErrIncompleteDB
		}
	}
	if c.Transform.ReferenceDate != "" {
		if _, err := time.Parse(ReferenceDateLayout, c.Transform.ReferenceDate); err != nil {
			return ErrBadReferenceDate
		}
	}
	if c.Transform.Workers < 1 {
		return ErrBadWorkers
	}
	return nil
}

// ReferenceDate parses the configured reference date; the zero time
// means "use the wall clock".
func (c *Config) ReferenceDate() (time.Time, error) {
	if c.Transform.ReferenceDate == "" {
		return time.Time{}, nil
	}
	return time.Parse(ReferenceDateLayout, c.Transform.ReferenceDate)
}
