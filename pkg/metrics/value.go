// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metrics normalizes heterogeneous backend output into typed
// metric sets.
//
// A metric that a tool did not report is simply absent from the set.
// Absence and zero are different facts and the distinction is preserved
// through serialization: an absent metric never becomes 0 anywhere in
// the pipeline.
package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the underlying type of a Value.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindBytes
	KindString
)

// Value is a typed metric value.
//
// Values serialize as bare JSON scalars; the kind is recovered on read
// from the JSON type (numbers with no fractional part become KindInt).
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// Int creates an integer metric (counts, gate totals).
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float creates a floating-point metric (millisecond timings).
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Bool creates a boolean metric (verification verdicts).
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Bytes creates a byte-size metric (proof and key sizes).
func Bytes(v int64) Value { return Value{kind: KindBytes, i: v} }

// String creates a string metric (auxiliary identifiers).
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Num returns the value as a float64 for comparison purposes. The
// second return is false for non-numeric kinds.
func (v Value) Num() (float64, bool) {
	switch v.kind {
	case KindInt, KindBytes:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Int64 returns the integer value. False for non-integer kinds.
func (v Value) Int64() (int64, bool) {
	if v.kind == KindInt || v.kind == KindBytes {
		return v.i, true
	}
	return 0, false
}

// Bool returns the boolean value. False second return for other kinds.
func (v Value) Bool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// Str returns the string value. False second return for other kinds.
func (v Value) Str() (string, bool) {
	if v.kind == KindString {
		return v.s, true
	}
	return "", false
}

// String renders the value for human-readable output and exports.
func (v Value) String() string {
	switch v.kind {
	case KindInt, KindBytes:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// MarshalJSON writes the value as a bare JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt, KindBytes:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.s)
	}
	return nil, fmt.Errorf("unknown metric kind %d", v.kind)
}

// UnmarshalJSON recovers a Value from a bare JSON scalar. Integral
// numbers come back as KindInt; byte-size semantics are a property of
// the metric name, not recoverable from JSON, which is fine for
// comparison purposes.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case bool:
		*v = Bool(t)
	case string:
		*v = String(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			*v = Int(int64(t))
		} else {
			*v = Float(t)
		}
	default:
		return fmt.Errorf("unsupported metric value %s", data)
	}
	return nil
}

// Set maps metric names to typed values.
type Set map[string]Value

// Names returns the metric names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every metric from other into s, overwriting on clash.
func (s Set) Merge(other Set) {
	for name, val := range other {
		s[name] = val
	}
}
