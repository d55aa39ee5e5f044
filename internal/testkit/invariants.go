package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"dartlift/internal/dartrt"
	"dartlift/internal/il"
)

// CheckNodeInvariants runs a minimal set of structural invariants on a lifted
// function body:
// 1) every node range is non-empty and within the function's code bounds
// 2) node ranges are ascending and never overlap
// 3) composite sub-nodes stay inside the composite's range
// 4) register saves and restores are balanced
func CheckNodeInvariants(fn *dartrt.Function, nodes []il.Instr) error {
	if fn == nil {
		return fmt.Errorf("nil function")
	}
	size, err := safecast.Conv[uint64](fn.Size)
	if err != nil {
		return fmt.Errorf("function size overflow: %w", err)
	}
	end := fn.Addr + size

	var prev il.AddrRange
	var saves int
	for i, n := range nodes {
		if n == nil {
			return fmt.Errorf("nil node at index %d", i)
		}
		rng := n.Range()
		if rng.End <= rng.Start {
			return fmt.Errorf("empty node range: %v", rng)
		}
		if rng.Start < fn.Addr || rng.End > end {
			return fmt.Errorf("node range %v outside function %#x..%#x", rng, fn.Addr, end)
		}
		if i > 0 && rng.Start < prev.End {
			return fmt.Errorf("node range %v overlaps previous %v", rng, prev)
		}
		prev = rng

		switch node := n.(type) {
		case *il.SaveRegisterInstr:
			saves++
		case *il.RestoreRegisterInstr:
			saves--
			if saves < 0 {
				return fmt.Errorf("restore of %s without matching save", node.Dst.Name())
			}
		case *il.LoadTaggedClassIdMayBeSmiInstr:
			if err := checkSubRange(rng, node.LoadImm.Range()); err != nil {
				return err
			}
			if err := checkSubRange(rng, node.Branch.Range()); err != nil {
				return err
			}
			if err := checkSubRange(rng, node.LoadCid.Range()); err != nil {
				return err
			}
		}
	}
	if saves != 0 {
		return fmt.Errorf("%d register saves never restored", saves)
	}
	return nil
}

func checkSubRange(outer, inner il.AddrRange) error {
	if inner.Start < outer.Start || inner.End > outer.End {
		return fmt.Errorf("sub-node range %v outside composite %v", inner, outer)
	}
	return nil
}
