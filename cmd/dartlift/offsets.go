package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var offsetsCmd = &cobra.Command{
	Use:   "offsets",
	Short: "Show the thread-offset registry",
	Long:  `Offsets prints every known per-thread runtime slot: plain fields and cached entry points, with leaf-call signatures where known`,
	Args:  cobra.NoArgs,
	RunE:  runOffsets,
}

func runOffsets(cmd *cobra.Command, args []string) error {
	thread, err := loadThreadInfo(cmd)
	if err != nil {
		return err
	}

	byName := thread.Offsets()
	offsets := make([]int64, 0, len(byName))
	for off := range byName {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, off := range offsets {
		name := byName[off]
		if fn, ok := thread.LeafFunction(off); ok {
			fmt.Fprintf(w, "%#x\t%s\t%s (%s)\n", off, name, fn.ReturnType, fn.Params)
			continue
		}
		fmt.Fprintf(w, "%#x\t%s\t\n", off, name)
	}
	return w.Flush()
}
