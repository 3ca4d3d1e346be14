// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/report"
)

// InfluxMeasurement is the measurement name all report points share.
const InfluxMeasurement = "zkbench"

// InfluxConfig locates an InfluxDB 2.x bucket.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxSink publishes report metrics as time-series points, one point
// per report, tagged by backend, operation, and case.
type InfluxSink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

// NewInfluxSink validates the config and connects the client. The
// connection itself is lazy; a bad URL surfaces on first publish.
func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: url, token, org, and bucket are all required", ErrInfluxConfig)
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

// Publish writes one report's numeric and boolean metrics. Failure
// records are skipped: a failed run has no comparable series.
func (s *InfluxSink) Publish(ctx context.Context, r *report.Report) error {
	if r.Failed() {
		return nil
	}

	fields := map[string]any{}
	for name, v := range r.Metrics {
		switch v.Kind() {
		case metrics.KindInt, metrics.KindBytes:
			n, _ := v.Int64()
			fields[name] = n
		case metrics.KindFloat:
			f, _ := v.Num()
			fields[name] = f
		case metrics.KindBool:
			b, _ := v.Bool()
			fields[name] = b
		}
	}
	if len(fields) == 0 {
		return nil
	}

	point := influxdb2.NewPoint(InfluxMeasurement,
		map[string]string{
			"backend":   r.Backend.Name,
			"version":   r.Backend.Version,
			"operation": r.Name,
			"case":      r.Case.Name(),
		},
		fields,
		r.Timestamp,
	)
	if err := s.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("publish report %s: %w", r.RecordID, err)
	}
	return nil
}

// Close releases the client's idle connections.
func (s *InfluxSink) Close() {
	s.client.Close()
}
