package lift

import (
	"dartlift/internal/arm64"
	"dartlift/internal/vars"
)

// numRegs covers X0..X30, SP and ZR.
const numRegs = 33

// RegState is the abstract register file: which value binding each register
// currently holds. Entries are owned items; moving a value between registers
// relocates the binding rather than copying it.
type RegState struct {
	regs [numRegs]*vars.Item
}

// NewRegState returns a state with every register uninitialized except the
// fixed-role registers whose contents are pinned by the runtime.
func NewRegState() *RegState {
	s := &RegState{}
	s.Set(arm64.NullReg, vars.NewRegItem(arm64.NullReg, vars.NewNull()))
	return s
}

// Get returns the binding currently in reg, nil when the register holds
// nothing the lifter knows about.
func (s *RegState) Get(reg arm64.Register) *vars.Item {
	if !reg.IsValid() {
		return nil
	}
	return s.regs[reg]
}

// Set installs a binding in reg, dropping whatever was there.
func (s *RegState) Set(reg arm64.Register, it *vars.Item) {
	if reg.IsValid() {
		s.regs[reg] = it
	}
}

// Clear forgets the contents of reg.
func (s *RegState) Clear(reg arm64.Register) {
	if reg.IsValid() {
		s.regs[reg] = nil
	}
}

// Move relocates the binding from src into dst. The old binding is consumed;
// src is forgotten.
func (s *RegState) Move(dst, src arm64.Register) {
	if !dst.IsValid() || !src.IsValid() {
		return
	}
	it := s.regs[src]
	if it == nil {
		s.regs[dst] = nil
		return
	}
	s.regs[dst] = it.MoveToReg(dst)
	s.regs[src] = nil
}

// ClearCallClobbered drops every register a call may overwrite, leaving the
// pinned registers alone.
func (s *RegState) ClearCallClobbered() {
	for r := arm64.X0; r <= arm64.X18; r++ {
		s.regs[r] = nil
	}
}
