// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zkbench/zkbench/pkg/logging"
	"github.com/zkbench/zkbench/pkg/runner"
)

// Strategy selects how a backend's output is interpreted.
type Strategy int

const (
	// StrategyStructured treats stdout as a JSON document.
	StrategyStructured Strategy = iota

	// StrategyText scans free-text log lines for known markers.
	StrategyText
)

// mandatory lists metrics an operation's contract requires. Absence of
// a mandatory metric is a parse failure, not a silent gap.
var mandatory = map[string][]string{
	"verify": {"ok"},
}

// numericSuffixes drive type coercion for structured extraction: a JSON
// field matching one of these must be numeric, and a mismatch surfaces
// as ErrParse instead of being dropped.
var numericSuffixes = []string{"_ms", "_bytes", "_gates", "_count", "_mb"}

var numericNames = map[string]bool{
	"gates_total":  true,
	"acir_opcodes": true,
	"gas_used":     true,
}

// Extractor turns a completed run's raw output into a metric set.
//
// # Thread Safety
//
// Safe for concurrent use.
type Extractor struct {
	strategy Strategy
	logger   *logging.Logger
}

// NewExtractor creates an Extractor with the given strategy.
func NewExtractor(strategy Strategy, logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{strategy: strategy, logger: logger}
}

// Extract parses the raw output for the given operation name.
//
// With StrategyText the verify verdict falls back to the process exit
// code when no explicit marker is present, since exit status is the
// backend's own verdict. With StrategyStructured the JSON document must
// carry every mandatory field itself.
func (e *Extractor) Extract(op string, out *runner.RawOutput) (Set, error) {
	if out == nil {
		return nil, ErrNoOutput
	}

	var set Set
	var err error
	switch e.strategy {
	case StrategyStructured:
		set, err = e.extractJSON(op, out)
	default:
		set = ScanText(out.Stdout + "\n" + out.Stderr)
		if op == "verify" {
			if _, present := set["ok"]; !present {
				set["ok"] = Bool(out.Success())
			}
		}
	}
	if err != nil {
		return nil, err
	}

	for _, name := range mandatory[op] {
		if _, present := set[name]; !present {
			return nil, fmt.Errorf("%w: mandatory metric %q absent for %s", ErrParse, name, op)
		}
	}

	e.logger.Debug("extracted metrics", "operation", op, "count", len(set))
	return set, nil
}

func (e *Extractor) extractJSON(op string, out *runner.RawOutput) (Set, error) {
	doc := strings.TrimSpace(out.Stdout)
	if doc == "" {
		return nil, fmt.Errorf("%w: empty stdout, expected JSON document", ErrParse)
	}

	if op == "gates" {
		if set, err := ParseGatesJSON([]byte(doc)); err == nil {
			return set, nil
		}
		// Not in the bb gates shape; fall through to flat mapping.
	}
	return FromJSON([]byte(doc))
}

// FromJSON maps the top-level scalar fields of a JSON object into a
// metric set. Nested objects and arrays are skipped: they are not
// metrics. Fields with numeric names holding non-numeric values are a
// coercion failure.
func FromJSON(data []byte) (Set, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	set := make(Set, len(raw))
	for name, val := range raw {
		switch t := val.(type) {
		case bool:
			set[name] = Bool(t)
		case float64:
			if isByteSizeName(name) {
				set[name] = Bytes(int64(t))
			} else if t == float64(int64(t)) {
				set[name] = Int(int64(t))
			} else {
				set[name] = Float(t)
			}
		case string:
			if requiresNumeric(name) {
				return nil, fmt.Errorf("%w: field %q should be numeric, got %q", ErrParse, name, t)
			}
			set[name] = String(t)
		default:
			// object, array, or null: not a scalar metric
			if requiresNumeric(name) && val != nil {
				return nil, fmt.Errorf("%w: field %q should be numeric", ErrParse, name)
			}
		}
	}
	return set, nil
}

// gatesDoc matches the gates JSON emitted by bb: one entry per circuit
// function with opcode and gate counts.
type gatesDoc struct {
	Functions []struct {
		AcirOpcodes int64   `json:"acir_opcodes"`
		CircuitSize *int64  `json:"circuit_size"`
		TotalGates  *int64  `json:"total_gates"`
		GatesPerOp  []int64 `json:"gates_per_opcode"`
	} `json:"functions"`
}

// ParseGatesJSON extracts gate metrics from the bb "gates" report
// shape. Totals are summed across functions. The subgroup size is the
// next power of two at or above the gate total, reported only when the
// total is positive.
func ParseGatesJSON(data []byte) (Set, error) {
	var doc gatesDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(doc.Functions) == 0 {
		return nil, fmt.Errorf("%w: gates report has no functions", ErrParse)
	}

	var gates, opcodes int64
	for _, fn := range doc.Functions {
		switch {
		case fn.TotalGates != nil:
			gates += *fn.TotalGates
		case fn.CircuitSize != nil:
			gates += *fn.CircuitSize
		default:
			return nil, fmt.Errorf("%w: gates report function missing circuit_size", ErrParse)
		}
		opcodes += fn.AcirOpcodes
	}

	set := Set{
		"gates_total":  Int(gates),
		"acir_opcodes": Int(opcodes),
	}
	if gates > 0 {
		set["subgroup_size"] = Int(nextPow2(gates))
	}
	return set, nil
}

// marker is one known free-text pattern and its conversion rule.
type marker struct {
	name   string
	prefix string
}

var lineMarkers = []marker{
	{"calldata_bytes", "CALDATA_BYTES:"},
	{"gates_total", "GATES_TOTAL:"},
	{"proof_size_bytes", "PROOF_SIZE_BYTES:"},
}

// ScanText scans free-text log lines for known markers. A marker that
// does not appear yields an absent metric, never zero.
func ScanText(text string) Set {
	set := make(Set)
	for _, line := range strings.Split(text, "\n") {
		for _, m := range lineMarkers {
			if _, present := set[m.name]; present {
				continue
			}
			idx := strings.Index(line, m.prefix)
			if idx < 0 {
				continue
			}
			if n, ok := parseMarkedInt(line[idx+len(m.prefix):]); ok {
				if isByteSizeName(m.name) {
					set[m.name] = Bytes(n)
				} else {
					set[m.name] = Int(n)
				}
			}
		}
	}
	if gas, ok := scanGas(text); ok {
		set["gas_used"] = Int(gas)
	}
	return set
}

// scanGas looks for forge-style gas reporting, preferring the
// "(gas: N)" form over a bare "gas: N" heuristic.
func scanGas(text string) (int64, bool) {
	if idx := strings.Index(text, "(gas:"); idx >= 0 {
		rest := text[idx+5:]
		if end := strings.IndexByte(rest, ')'); end >= 0 {
			if n, ok := parseMarkedInt(rest[:end]); ok {
				return n, true
			}
		}
	}
	if idx := strings.Index(text, "gas:"); idx >= 0 {
		if n, ok := parseMarkedInt(text[idx+4:]); ok {
			return n, true
		}
	}
	return 0, false
}

// parseMarkedInt reads a decimal integer immediately following a
// marker, tolerating leading spaces and digit-group underscores.
func parseMarkedInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t:")
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if r == '_' && digits.Len() > 0 {
			continue
		} else {
			break
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FileSize returns a byte-size metric for a filesystem artifact. Sizes
// are always measured from the file itself, never from tool
// self-reporting.
func FileSize(path string) (Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Value{}, fmt.Errorf("stat artifact %s: %w", path, err)
	}
	return Bytes(info.Size()), nil
}

func isByteSizeName(name string) bool {
	return strings.HasSuffix(name, "_bytes")
}

func requiresNumeric(name string) bool {
	if numericNames[name] {
		return true
	}
	for _, suf := range numericSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

func nextPow2(n int64) int64 {
	p := int64(1)
	for p < n {
		p <<= 1
	}
	return p
}
