package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dartlift/internal/lift"
	"dartlift/internal/report"
	"dartlift/internal/snapshot"
)

var liftCmd = &cobra.Command{
	Use:   "lift [flags] snapshot.bin",
	Short: "Lift a snapshot's code into typed pseudo-code",
	Long:  `Lift reconstructs a typed node listing for every function with decoded code in the snapshot`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLift,
}

func init() {
	liftCmd.Flags().Int("jobs", 0, "worker parallelism (0 = number of CPUs)")
	liftCmd.Flags().String("ui", "auto", "interactive progress (auto|on|off)")
	liftCmd.Flags().Bool("diagnostics", false, "interleave diagnostics with each listing")
}

func runLift(cmd *cobra.Command, args []string) error {
	store, err := snapshot.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	thread, err := loadThreadInfo(cmd)
	if err != nil {
		return err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	opts := lift.Options{Jobs: jobs, MaxDiagnostics: maxDiagnostics}

	var run *lift.RunResult
	if shouldUseTUI(mode) {
		run, err = runLiftWithUI(cmd.Context(), "lifting "+args[0], store, thread, opts)
	} else {
		run, err = lift.LiftAll(cmd.Context(), store, thread, opts)
	}
	if err != nil {
		return fmt.Errorf("lifting failed: %w", err)
	}

	withDiags, _ := cmd.Flags().GetBool("diagnostics")
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	report.Listings(os.Stdout, run, report.Options{
		Color:       colorFlag,
		Diagnostics: withDiags,
	})

	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		printTimings(os.Stderr, run.Timing)
	}
	return nil
}
