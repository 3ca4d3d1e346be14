// Copyright (C) 2025 the zkbench authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/zkbench/zkbench/pkg/backend"
	"github.com/zkbench/zkbench/pkg/logging"
)

// --- Global Command Variables ---
var (
	logLevel string
	logJSON  bool
	quiet    bool
	noColor  bool

	backendName string
	backendPath string
	template    string
	label       string
	inputsPath  string
	proofPath   string
	iterations  int
	warmup      int
	timeoutStr  string
	wrapCmd     string
	jsonOut     string

	thresholdPct float64
	compareJSON  bool

	historyMetric string
	historyHTML   string
	historyTitle  string

	csvOut string

	evmProject         string
	evmProofHex        string
	evmProofFile       string
	evmPublicInHex     string
	evmPublicInFile    string
	evmForgePath       string
	evmGasRate         float64
	evmTimeoutOverride string

	log *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "zkbench",
		Short: "A benchmarking harness for zero-knowledge proof toolchains",
		Long: `zkbench drives circuit toolchains (nargo, barretenberg, or any
command given as a template) through execute/gates/prove/verify
workflows, extracts their metrics, and records self-describing
reports for comparison and regression tracking.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(logging.Config{
				Level:   logging.ParseLevel(logLevel),
				Service: "zkbench",
				JSON:    logJSON,
				Quiet:   quiet,
			})
		},
	}

	execCmd = &cobra.Command{
		Use:   "exec [artifact] [-- tool args]",
		Short: "Benchmark witness execution for a compiled circuit",
		Args:  cobra.MinimumNArgs(1),
		Run:   runOperation(backend.OpExecute), // Defined in cmd_run.go
	}
	gatesCmd = &cobra.Command{
		Use:   "gates [artifact] [-- tool args]",
		Short: "Benchmark circuit-size reporting and record gate counts",
		Args:  cobra.MinimumNArgs(1),
		Run:   runOperation(backend.OpGates),
	}
	proveCmd = &cobra.Command{
		Use:   "prove [artifact] [-- tool args]",
		Short: "Benchmark proof generation and record proof size",
		Args:  cobra.MinimumNArgs(1),
		Run:   runOperation(backend.OpProve),
	}
	verifyCmd = &cobra.Command{
		Use:   "verify [artifact] [-- tool args]",
		Short: "Benchmark proof verification; exits 1 when the proof is rejected",
		Args:  cobra.MinimumNArgs(1),
		Run:   runOperation(backend.OpVerify),
	}

	suiteCmd = &cobra.Command{
		Use:   "suite [config.yaml]",
		Short: "Run a declarative matrix of cases, backends, and operations",
		Args:  cobra.ExactArgs(1),
		Run:   runSuite, // Defined in cmd_suite.go
	}

	compareCmd = &cobra.Command{
		Use:   "compare [baseline.json] [contender.json]",
		Short: "Compare two reports; exits 1 when a regression is detected",
		Args:  cobra.ExactArgs(2),
		Run:   runCompare, // Defined in cmd_compare.go
	}

	historyCmd = &cobra.Command{
		Use:   "history [records.jsonl]",
		Short: "Fold a record stream into per-case metric trends",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory, // Defined in cmd_history.go
	}

	exportCsvCmd = &cobra.Command{
		Use:   "export-csv [records.jsonl]",
		Short: "Flatten a record stream into a CSV table",
		Args:  cobra.ExactArgs(1),
		Run:   runExportCSV, // Defined in cmd_export.go
	}

	evmVerifyCmd = &cobra.Command{
		Use:   "evm-verify",
		Short: "Measure on-chain verification gas through a Foundry project",
		Args:  cobra.NoArgs,
		Run:   runEVMVerify, // Defined in cmd_evm.go
	}
)

// addBenchFlags registers the flags shared by the four single-shot
// benchmark commands.
func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&backendName, "backend", "barretenberg",
		"Backend to drive: 'barretenberg', 'nargo', or 'mock'")
	cmd.Flags().StringVar(&backendPath, "backend-path", "", "Override the backend binary location")
	cmd.Flags().StringVar(&template, "template",
		"", "Generic command template with {artifact}, {witness}, {proof}, {outdir} placeholders")
	cmd.Flags().StringVar(&label, "label", "", "Case label for the report (defaults to the artifact stem)")
	cmd.Flags().StringVar(&inputsPath, "inputs", "", "Input assignment file (witness source)")
	cmd.Flags().StringVar(&proofPath, "proof", "", "Existing proof file, for verify")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 1, "Measured iteration count")
	cmd.Flags().IntVarP(&warmup, "warmup", "w", 0, "Discarded warmup iterations")
	cmd.Flags().StringVar(&timeoutStr, "timeout", "", "Per-process timeout (e.g. '90s')")
	cmd.Flags().StringVar(&wrapCmd, "wrap", "", "Profiling wrapper command prefix")
	cmd.Flags().StringVarP(&jsonOut, "json-out", "o", "", "Also write the report JSON to this path")
}

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log verbosity: debug, info, warn, or error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")

	for _, cmd := range []*cobra.Command{execCmd, gatesCmd, proveCmd, verifyCmd} {
		addBenchFlags(cmd)
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(suiteCmd)

	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Float64Var(&thresholdPct, "threshold", 0,
		"Regression threshold in percent (default 2.0)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Emit the comparison as JSON")

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyMetric, "metric", "",
		"Metric to track (default: each operation's wall-clock metric)")
	historyCmd.Flags().StringVar(&historyHTML, "html", "", "Write an HTML trend page to this path")
	historyCmd.Flags().StringVar(&historyTitle, "title", "zkbench history", "Title for the HTML page")

	rootCmd.AddCommand(exportCsvCmd)
	exportCsvCmd.Flags().StringVarP(&csvOut, "out", "o", "", "Write the CSV here instead of stdout")

	rootCmd.AddCommand(evmVerifyCmd)
	evmVerifyCmd.Flags().StringVar(&evmProject, "project", "", "Foundry project with the verifier test")
	evmVerifyCmd.Flags().StringVar(&evmProofHex, "proof-hex", "", "Proof calldata as hex")
	evmVerifyCmd.Flags().StringVar(&evmProofFile, "proof-file", "", "File containing the proof hex")
	evmVerifyCmd.Flags().StringVar(&evmPublicInHex, "public-inputs-hex", "", "Public inputs as hex")
	evmVerifyCmd.Flags().StringVar(&evmPublicInFile, "public-inputs-file", "", "File containing the public input hex")
	evmVerifyCmd.Flags().StringVar(&evmForgePath, "forge", "forge", "Forge binary location")
	evmVerifyCmd.Flags().Float64Var(&evmGasRate, "gas-rate", 0,
		"Gas-per-second rate for the latency estimate")
	evmVerifyCmd.Flags().StringVar(&evmTimeoutOverride, "timeout", "5m", "Forge invocation timeout")
	_ = evmVerifyCmd.MarkFlagRequired("project")
}
