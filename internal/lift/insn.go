package lift

import (
	"fmt"
	"strings"

	"dartlift/internal/arm64"
	"dartlift/internal/il"
	"dartlift/internal/snapshot"
)

// Insn is one decoded native instruction as the lifter consumes it. The
// decoder collaborator produces these; the lifter only reads address ranges,
// mnemonics and operands, never raw bytes.
type Insn struct {
	Addr     uint64
	Size     uint32
	Mnemonic string
	Ops      []Op
}

// OpKind classifies a decoded operand.
type OpKind uint8

const (
	// OpReg is a register operand.
	OpReg OpKind = iota
	// OpImm is an immediate.
	OpImm
	// OpMem is base plus displacement.
	OpMem
	// OpMemIdx is base plus scaled index.
	OpMemIdx
)

// Op is one decoded operand.
type Op struct {
	Kind      OpKind
	Reg       arm64.Register
	Imm       int64
	Base      arm64.Register
	Disp      int64
	Index     arm64.Register
	Shift     uint8
	WriteBack bool
}

// Range returns the address range the instruction occupies.
func (in *Insn) Range() il.AddrRange {
	return il.NewAddrRange(in.Addr, in.Size)
}

// IsReg reports whether operand i is the given register.
func (in *Insn) IsReg(i int, reg arm64.Register) bool {
	return i < len(in.Ops) && in.Ops[i].Kind == OpReg && in.Ops[i].Reg == reg
}

// Reg returns operand i as a register, NoRegister when it is not one.
func (in *Insn) Reg(i int) arm64.Register {
	if i < len(in.Ops) && in.Ops[i].Kind == OpReg {
		return in.Ops[i].Reg
	}
	return arm64.NoRegister
}

// Imm returns operand i as an immediate.
func (in *Insn) Imm(i int) (int64, bool) {
	if i < len(in.Ops) && in.Ops[i].Kind == OpImm {
		return in.Ops[i].Imm, true
	}
	return 0, false
}

// Mem returns operand i as a base+displacement memory operand.
func (in *Insn) Mem(i int) (Op, bool) {
	if i < len(in.Ops) && (in.Ops[i].Kind == OpMem || in.Ops[i].Kind == OpMemIdx) {
		return in.Ops[i], true
	}
	return Op{}, false
}

// Text renders the instruction for unknown-window listings.
func (in *Insn) Text() string {
	var b strings.Builder
	b.WriteString(in.Mnemonic)
	for i, op := range in.Ops {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		switch op.Kind {
		case OpReg:
			b.WriteString(op.Reg.Name())
		case OpImm:
			fmt.Fprintf(&b, "#%#x", op.Imm)
		case OpMem:
			fmt.Fprintf(&b, "[%s, #%#x]", op.Base.Name(), op.Disp)
		case OpMemIdx:
			fmt.Fprintf(&b, "[%s, %s, lsl #%d]", op.Base.Name(), op.Index.Name(), op.Shift)
		}
	}
	return b.String()
}

// FromRecords converts decoder records into lifter instructions.
func FromRecords(recs []snapshot.InsnRec) []Insn {
	insns := make([]Insn, len(recs))
	for i, r := range recs {
		ops := make([]Op, len(r.Ops))
		for j, o := range r.Ops {
			ops[j] = Op{
				Kind:      OpKind(o.Kind),
				Reg:       arm64.Register(o.Reg),
				Imm:       o.Imm,
				Base:      arm64.Register(o.Base),
				Disp:      o.Disp,
				Index:     arm64.Register(o.Index),
				Shift:     o.Shift,
				WriteBack: o.WriteBack,
			}
		}
		insns[i] = Insn{Addr: r.Addr, Size: r.Size, Mnemonic: r.Mnemonic, Ops: ops}
	}
	return insns
}
