// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/report"
)

// csvFixedColumns precede the metric columns in every export.
var csvFixedColumns = []string{
	"record_id", "timestamp", "name", "case", "backend", "backend_version", "status",
}

// WriteCSV exports reports as one flat CSV table. The metric columns
// are the sorted union of metric names across all reports; a report
// without a given metric gets an empty cell, preserving the absent
// versus zero distinction.
func WriteCSV(w io.Writer, reports []*report.Report) error {
	names := map[string]bool{}
	for _, r := range reports {
		for name := range r.Metrics {
			names[name] = true
		}
	}
	columns := make([]string, 0, len(names))
	for name := range names {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, csvFixedColumns...), columns...)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range reports {
		status := "ok"
		if r.Failed() {
			status = "failed:" + r.Failure.Stage
		}
		row := []string{
			r.RecordID,
			r.Timestamp.Format(time.RFC3339),
			r.Name,
			r.Case.Name(),
			r.Backend.Name,
			r.Backend.Version,
			status,
		}
		for _, name := range columns {
			row = append(row, csvCell(r.Metrics, name))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(set metrics.Set, name string) string {
	v, ok := set[name]
	if !ok {
		return ""
	}
	return v.String()
}
