package main

import (
	"fmt"
	"io"

	"dartlift/internal/observ"
)

func printTimings(out io.Writer, timing observ.Report) {
	if out == nil {
		return
	}
	for _, phase := range timing.Phases {
		fmt.Fprintf(out, "%s %.1f ms\n", phase.Name, phase.DurationMS)
	}
	fmt.Fprintf(out, "total %.1f ms\n", timing.TotalMS)
}
