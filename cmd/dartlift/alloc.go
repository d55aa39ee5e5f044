package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dartlift/internal/lift"
	"dartlift/internal/report"
	"dartlift/internal/snapshot"
)

var allocCmd = &cobra.Command{
	Use:   "alloc [flags] snapshot.bin",
	Short: "Report inline allocation sites by class",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlloc,
}

func init() {
	allocCmd.Flags().Int("jobs", 0, "worker parallelism (0 = number of CPUs)")
}

func runAlloc(cmd *cobra.Command, args []string) error {
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

	run, err := lift.LiftAll(cmd.Context(), store, thread, lift.Options{Jobs: jobs})
	if err != nil {
		return fmt.Errorf("lifting failed: %w", err)
	}

	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	report.Allocations(os.Stdout, run, report.Options{Color: colorFlag})
	return nil
}
