package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/warriorguo/reteflow"
	"github.com/warriorguo/reteflow/dataset"
	"github.com/warriorguo/reteflow/types"
)

var runFlags struct {
	input          string
	output         string
	dataset        string
	decisionColumn string
	strictColumns  bool
}

var runCmd = &cobra.Command{
	Use:   "run <workflow.json>",
	Short: "Process a CSV dataset through a workflow document",
	Long: `Load a workflow document (JSON or YAML), run every row of the input
CSV through it and write the augmented rows out with the decision
column appended.

Usage:
  reteflow run pill_sorting.json
  reteflow run pill_sorting.json -i batch_42.csv -o sorted.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.input, "input", "i", "pill_data.csv", "Input CSV dataset")
	f.StringVarP(&runFlags.output, "output", "o", "", "Output CSV path (default: processed_<timestamp>_<input>)")
	f.StringVar(&runFlags.dataset, "dataset", "", "Dataset name matched against Source nodes")
	f.StringVar(&runFlags.decisionColumn, "decision-column", "", "Column the decision is written to")
	f.BoolVar(&runFlags.strictColumns, "strict-columns", false, "Fail rows referencing missing columns instead of evaluating false")
}

func runRun(cmd *cobra.Command, args []string) error {
	wf, err := reteflow.ParseFile(args[0])
	if err != nil {
		return errors.Trace(err)
	}

	opts := []types.EngineOption{}
	if runFlags.dataset != "" {
		opts = append(opts, types.WithDataset(runFlags.dataset))
	}
	if runFlags.decisionColumn != "" {
		opts = append(opts, types.WithDecisionColumn(runFlags.decisionColumn))
	}
	if runFlags.strictColumns {
		opts = append(opts, types.EnableStrictColumns())
	}

	eng, err := reteflow.New(wf, opts...)
	if err != nil {
		return errors.Trace(err)
	}

	source, err := dataset.OpenCSV(runFlags.input)
	if err != nil {
		return errors.Trace(err)
	}

	output := runFlags.output
	if output == "" {
		output = fmt.Sprintf("processed_%s_%s",
			time.Now().Format("20060102-150405"), filepath.Base(runFlags.input))
	}

	result, err := reteflow.ProcessDataset(eng, source, dataset.NewCSVSink(output))
	if err != nil {
		return errors.Trace(err)
	}

	printStats(cmd, result.Stats)
	fmt.Fprintf(cmd.OutOrStdout(), "\nProcessed file written to: %s\n", output)
	return nil
}

func printStats(cmd *cobra.Command, stats types.RunStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total processed: %d\n", stats.TotalProcessed)
	fmt.Fprintf(out, "Accepted:        %d\n", stats.Accepted)
	fmt.Fprintf(out, "Discarded:       %d\n", stats.Discarded)
	fmt.Fprintf(out, "Errors:          %d\n", stats.Errors)
	fmt.Fprintf(out, "Time taken:      %.3fs\n", stats.TimeTaken)

	if len(stats.Decisions) == 0 {
		return
	}
	fmt.Fprintf(out, "Decisions:\n")
	decisions := make([]string, 0, len(stats.Decisions))
	for decision := range stats.Decisions {
		decisions = append(decisions, decision)
	}
	sort.Strings(decisions)
	for _, decision := range decisions {
		fmt.Fprintf(out, "  %-24s %d\n", decision, stats.Decisions[decision])
	}
}
