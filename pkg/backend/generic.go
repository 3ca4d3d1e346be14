// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/zkbench/zkbench/pkg/metrics"
	"github.com/zkbench/zkbench/pkg/runner"
)

// Placeholder names a generic template may use.
const (
	PlaceholderArtifact = "{artifact}"
	PlaceholderWitness  = "{witness}"
	PlaceholderProof    = "{proof}"
	PlaceholderOutdir   = "{outdir}"
)

// requiredPlaceholders lists what each operation's template must
// contain. Validation runs at configuration time, before any spawn.
var requiredPlaceholders = map[Operation][]string{
	OpExecute: {PlaceholderArtifact},
	OpGates:   {PlaceholderArtifact},
	OpProve:   {PlaceholderArtifact, PlaceholderWitness, PlaceholderProof},
	OpVerify:  {PlaceholderProof},
}

// Generic invokes an arbitrary external tool through a command template
// with placeholder substitution, so any backend with a CLI can be
// benchmarked without built-in support.
type Generic struct {
	name       string
	template   []string
	extraArgs  []string
	structured bool
	run        *runner.Runner
}

// GenericOption configures a Generic backend.
type GenericOption func(*Generic)

// WithStructuredOutput marks the tool as emitting JSON on stdout.
func WithStructuredOutput() GenericOption {
	return func(g *Generic) { g.structured = true }
}

// NewGeneric creates a templated backend. The template is split
// shell-style before substitution so quoted segments with spaces stay a
// single argument. An empty template is a configuration error.
func NewGeneric(name, template string, extraArgs []string, run *runner.Runner, opts ...GenericOption) (*Generic, error) {
	parts, err := splitCommand(template)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrEmptyTemplate
	}
	if name == "" || name == "generic" {
		name = "generic"
	}
	g := &Generic{name: name, template: parts, extraArgs: extraArgs, run: run}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Version(ctx context.Context) string {
	return queryVersion(ctx, g.run, g.template[0])
}

func (g *Generic) Strategy(op Operation) metrics.Strategy {
	if g.structured || op == OpGates {
		return metrics.StrategyStructured
	}
	return metrics.StrategyText
}

// Validate checks that the template carries every placeholder the
// operation requires.
func (g *Generic) Validate(op Operation) error {
	required, ok := requiredPlaceholders[op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	joined := strings.Join(g.template, " ")
	for _, ph := range required {
		if !strings.Contains(joined, ph) {
			return fmt.Errorf("%w: %s needs %s", ErrMissingPlaceholder, op, ph)
		}
	}
	return nil
}

func (g *Generic) Run(ctx context.Context, op Operation, req *RunRequest) (*runner.RawOutput, error) {
	if err := g.Validate(op); err != nil {
		return nil, err
	}

	outDir := req.Workspace.Dir()
	proof := req.Proof
	if proof == "" {
		if op == OpVerify {
			return nil, fmt.Errorf("%w: verify needs a proof file", ErrMissingInput)
		}
		proof = req.Workspace.Path("proof")
	}

	resolved := make([]string, len(g.template))
	for i, part := range g.template {
		part = strings.ReplaceAll(part, PlaceholderArtifact, req.Artifact)
		part = strings.ReplaceAll(part, PlaceholderWitness, req.Inputs)
		part = strings.ReplaceAll(part, PlaceholderProof, proof)
		part = strings.ReplaceAll(part, PlaceholderOutdir, outDir)
		resolved[i] = part
	}
	args := append(resolved[1:], g.extraArgs...)
	args = append(args, req.ExtraArgs...)

	out, err := g.run.Run(ctx, runner.Spec{
		Command: resolved[0],
		Args:    args,
		Timeout: req.Timeout,
		Wrap:    req.Wrap,
	})
	if err != nil {
		return out, err
	}
	if op == OpProve {
		out.Artifacts = []string{proof}
	}
	return out, nil
}

// splitCommand splits a template into argv parts, honoring single and
// double quotes. Substitution happens per part after splitting, so a
// path with spaces substituted into a quoted placeholder stays one
// argument.
func splitCommand(s string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	var quote rune
	inPart := false

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inPart = true
		case r == ' ' || r == '\t':
			if inPart {
				parts = append(parts, cur.String())
				cur.Reset()
				inPart = false
			}
		default:
			cur.WriteRune(r)
			inPart = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrEmptyTemplate)
	}
	if inPart {
		parts = append(parts, cur.String())
	}
	return parts, nil
}
