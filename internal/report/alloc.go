package report

import (
	"fmt"
	"io"
	"sort"

	"dartlift/internal/dartrt"
	"dartlift/internal/il"
	"dartlift/internal/lift"
)

// AllocSite is one inline allocation found in lifted code.
type AllocSite struct {
	Fn   *dartrt.Function
	Addr uint64
}

// AllocSummary groups allocation sites by allocated class.
type AllocSummary struct {
	Class *dartrt.Class
	Sites []AllocSite
}

// CollectAllocations walks a run and groups every inline allocation by class,
// most-allocated first.
func CollectAllocations(run *lift.RunResult) []AllocSummary {
	byClass := map[dartrt.ClassID]*AllocSummary{}
	for _, res := range run.Functions {
		for _, node := range res.Nodes {
			alloc, ok := node.(*il.AllocateObjectInstr)
			if !ok {
				continue
			}
			s := byClass[alloc.Class.ID]
			if s == nil {
				s = &AllocSummary{Class: alloc.Class}
				byClass[alloc.Class.ID] = s
			}
			s.Sites = append(s.Sites, AllocSite{Fn: res.Fn, Addr: node.Range().Start})
		}
	}

	out := make([]AllocSummary, 0, len(byClass))
	for _, s := range byClass {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Sites) != len(out[j].Sites) {
			return len(out[i].Sites) > len(out[j].Sites)
		}
		return out[i].Class.ID < out[j].Class.ID
	})
	return out
}

// Allocations renders the allocation-site report.
func Allocations(w io.Writer, run *lift.RunResult, opts Options) {
	p := newPrinter(w, opts)
	summaries := CollectAllocations(run)
	if len(summaries) == 0 {
		fmt.Fprintln(w, "no inline allocations")
		return
	}
	fmt.Fprintln(w, p.header.Sprint("allocation sites by class"))
	for _, s := range summaries {
		fmt.Fprintf(w, "  %-24s %4d\n", s.Class.Name, len(s.Sites))
		for _, site := range s.Sites {
			line := fmt.Sprintf("      %#x in %s", site.Addr, site.Fn.FullName())
			fmt.Fprintln(w, truncate(line, p.width))
		}
	}
}
