package vexfuse

import (
	"fmt"
	"math"

	"github.com/reusee/vex/vexvec"
)

// The fused routine targets a small word-stack machine. An integer value
// occupies one stack word, a double occupies two (value bits plus a pad
// word), so every control-flow merge must agree on the exact residual
// slot layout, as on a real bytecode stack.
type KOp uint32

const (
	KReturn KOp = iota + 1
	KConstI     // arg: int pool index
	KConstD     // arg: double pool index
	KLoadLocal  // arg: local word index
	KStoreLocal // arg: local word index
	KIInc       // arg: local word index; locals[arg]++
	KDup
	KSwap
	KPop
	KPop2
	KDup2X1 // {i, d} -> {d, i, d}
	KIRem
	KIMax
	KIAdd
	KI2D
	KD2I
	KJump     // arg: relative offset
	KIfICmpEq // pops b, a; jump when a == b
	KIfICmpLT // pops b, a; jump when a < b
	KLoadElemI  // arg: operand index; pops element index
	KLoadElemD  // arg: operand index; pops element index
	KStoreElemI // pops value, then output index
	KStoreElemD // pops value, then output index
	KApply1I    // arg: op table index
	KApply1D
	KApply2I
	KApply2D
)

func (o KOp) With(arg int) KOp {
	return o | KOp(arg)<<8
}

func (o KOp) String() string {
	names := map[KOp]string{
		KReturn: "return", KConstI: "const.i", KConstD: "const.d",
		KLoadLocal: "load", KStoreLocal: "store", KIInc: "iinc",
		KDup: "dup", KSwap: "swap", KPop: "pop", KPop2: "pop2",
		KDup2X1: "dup2_x1", KIRem: "irem", KIMax: "imax", KIAdd: "iadd",
		KI2D: "i2d", KD2I: "d2i", KJump: "jump",
		KIfICmpEq: "if_icmpeq", KIfICmpLT: "if_icmplt",
		KLoadElemI: "loadelem.i", KLoadElemD: "loadelem.d",
		KStoreElemI: "storeelem.i", KStoreElemD: "storeelem.d",
		KApply1I: "apply1.i", KApply1D: "apply1.d",
		KApply2I: "apply2.i", KApply2D: "apply2.d",
	}
	if name, ok := names[o&0xff]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint32(o&0xff))
}

// Program is one finalized fused routine.
type Program struct {
	Code      []KOp
	ConstsI   []int32
	ConstsD   []float64
	Ops       []*OpSpec
	NumLocals int
	MaxStack  int
}

// Run executes the routine over the given source vectors. Depending on
// the routine's result kind exactly one of outI, outD is written. The
// kernel has no user-visible failure modes: NA handling is compiled in,
// and a malformed program is a programming error.
func (p *Program) Run(operands []vexvec.Vector, outI []int32, outD []float64) {
	stack := make([]uint64, p.MaxStack)
	locals := make([]uint64, p.NumLocals)
	sp := 0
	ip := 0

	pushI := func(x int32) {
		stack[sp] = uint64(uint32(x))
		sp++
	}
	popI := func() int32 {
		sp--
		return int32(uint32(stack[sp]))
	}
	pushD := func(f float64) {
		stack[sp] = math.Float64bits(f)
		stack[sp+1] = 0
		sp += 2
	}
	popD := func() float64 {
		sp -= 2
		return math.Float64frombits(stack[sp])
	}

	for {
		inst := p.Code[ip]
		ip++
		op := inst & 0xff
		arg := int(int32(inst) >> 8)

		switch op {

		case KReturn:
			return

		case KConstI:
			pushI(p.ConstsI[arg])

		case KConstD:
			pushD(p.ConstsD[arg])

		case KLoadLocal:
			stack[sp] = locals[arg]
			sp++

		case KStoreLocal:
			sp--
			locals[arg] = stack[sp]

		case KIInc:
			locals[arg] = uint64(uint32(int32(uint32(locals[arg])) + 1))

		case KDup:
			stack[sp] = stack[sp-1]
			sp++

		case KSwap:
			stack[sp-1], stack[sp-2] = stack[sp-2], stack[sp-1]

		case KPop:
			sp--

		case KPop2:
			sp -= 2

		case KDup2X1:
			// ..., a, d0, d1 -> ..., d0, d1, a, d0, d1
			a, d0, d1 := stack[sp-3], stack[sp-2], stack[sp-1]
			stack[sp-3], stack[sp-2], stack[sp-1] = d0, d1, a
			stack[sp] = d0
			stack[sp+1] = d1
			sp += 2

		case KIRem:
			b := popI()
			a := popI()
			pushI(a % b)

		case KIMax:
			b := popI()
			a := popI()
			if b > a {
				a = b
			}
			pushI(a)

		case KIAdd:
			b := popI()
			a := popI()
			pushI(a + b)

		case KI2D:
			pushD(float64(popI()))

		case KD2I:
			pushI(int32(popD()))

		case KJump:
			ip += arg

		case KIfICmpEq:
			b := popI()
			a := popI()
			if a == b {
				ip += arg
			}

		case KIfICmpLT:
			b := popI()
			a := popI()
			if a < b {
				ip += arg
			}

		case KLoadElemI:
			idx := popI()
			pushI(operands[arg].ElemInt(int(idx)))

		case KLoadElemD:
			idx := popI()
			pushD(operands[arg].ElemDouble(int(idx)))

		case KStoreElemI:
			val := popI()
			idx := popI()
			outI[idx] = val

		case KStoreElemD:
			val := popD()
			idx := popI()
			outD[idx] = val

		case KApply1I:
			pushI(p.Ops[arg].Int1(popI()))

		case KApply1D:
			pushD(p.Ops[arg].Double1(popD()))

		case KApply2I:
			b := popI()
			a := popI()
			pushI(p.Ops[arg].Int2(a, b))

		case KApply2D:
			b := popD()
			a := popD()
			pushD(p.Ops[arg].Double2(a, b))

		default:
			panic(fmt.Errorf("bad kernel opcode: %v", op))
		}
	}
}
