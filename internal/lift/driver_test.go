package lift_test

import (
	"context"
	"testing"

	"dartlift/internal/dartrt"
	"dartlift/internal/il"
	"dartlift/internal/lift"
	"dartlift/internal/snapshot"
)

func ret(addr uint64) snapshot.InsnRec {
	return snapshot.InsnRec{Addr: addr, Size: 4, Mnemonic: "ret"}
}

func driverStore(t *testing.T) *snapshot.Store {
	t.Helper()
	store, err := snapshot.Build(&snapshot.Payload{
		Schema: 1,
		Functions: []snapshot.FuncRec{
			// Payload order deliberately differs from address order.
			{Name: "second", Addr: 0x2000, Size: 4},
			{Name: "first", Addr: 0x1000, Size: 4},
			{Name: "codeless", Addr: 0x3000, Size: 4},
		},
		Code: []snapshot.FuncCode{
			{Addr: 0x2000, Insns: []snapshot.InsnRec{ret(0x2000)}},
			{Addr: 0x1000, Insns: []snapshot.InsnRec{ret(0x1000)}},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return store
}

func TestLiftAll(t *testing.T) {
	events := make(chan lift.Event, 8)
	run, err := lift.LiftAll(context.Background(), driverStore(t), dartrt.Default(), lift.Options{
		Jobs:     2,
		Progress: events,
	})
	if err != nil {
		t.Fatalf("LiftAll() error: %v", err)
	}

	if len(run.Functions) != 2 {
		t.Fatalf("got %d lifted functions, want 2", len(run.Functions))
	}
	if run.Functions[0].Fn.Name != "first" || run.Functions[1].Fn.Name != "second" {
		t.Errorf("results out of address order: %s, %s",
			run.Functions[0].Fn.Name, run.Functions[1].Fn.Name)
	}
	for i, res := range run.Functions {
		if len(res.Nodes) != 1 || res.Nodes[0].Kind() != il.Return {
			t.Errorf("Functions[%d].Nodes = %v", i, res.Nodes)
		}
		if run.Bags[i] == nil {
			t.Errorf("Bags[%d] is nil", i)
		}
	}

	var got int
	for range events {
		got++
	}
	if got != 2 {
		t.Errorf("received %d progress events, want 2", got)
	}
	if len(run.Timing.Phases) == 0 {
		t.Error("no timing phases recorded")
	}
}

func TestLiftAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lift.LiftAll(ctx, driverStore(t), dartrt.Default(), lift.Options{}); err == nil {
		t.Error("LiftAll() on canceled context returned nil error")
	}
}
