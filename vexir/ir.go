package vexir

import (
	"github.com/reusee/vex/vexvec"
)

// Expr is a side-effect-free-to-describe expression tree evaluated by
// the instruction interpreter. Calls may of course have effects when
// run.
type Expr interface {
	expr()
}

// Const yields a fixed vector value.
type Const struct {
	Value vexvec.Vector
}

// IntLit yields a raw machine integer, used for loop counter
// initialization only. Surface integer literals become Const scalars.
type IntLit struct {
	N int
}

// ReadVar reads a variable from the environment chain.
type ReadVar struct {
	Name string
}

// ReadTemp reads a routine temporary.
type ReadTemp struct {
	Temp int
}

// Call applies a function value to evaluated arguments. The *Call
// pointer identifies the call site for loop specialization.
type Call struct {
	Fn   Expr
	Args []Expr
}

// ElemAt extracts element CounterTemp of the vector in VecTemp as a
// one-element vector of the same kind.
type ElemAt struct {
	VecTemp     int
	CounterTemp int
}

// LengthOf yields the operand's element count as a one-element integer
// vector.
type LengthOf struct {
	X Expr
}

// CmpGE compares the machine-integer counter against the first element
// of the length vector. This generic comparison backs the uncompiled
// loop path.
type CmpGE struct {
	CounterTemp int
	LengthTemp  int
}

// MakeClosure captures the current environment into a function value.
type MakeClosure struct {
	Def *ClosureDef
}

func (*Const) expr()       {}
func (*IntLit) expr()      {}
func (*ReadVar) expr()     {}
func (*ReadTemp) expr()    {}
func (*Call) expr()        {}
func (*ElemAt) expr()      {}
func (*LengthOf) expr()    {}
func (*CmpGE) expr()       {}
func (*MakeClosure) expr() {}

// ClosureDef is the lowered form of a function definition, shared by
// every closure value made from it.
type ClosureDef struct {
	Name   string
	Params []string
	Body   *Routine
}

// Instr is one lowered instruction.
type Instr interface {
	instr()
}

// AssignVar writes a variable in the current scope.
type AssignVar struct {
	Name string
	RHS  Expr
}

// AssignTemp writes a routine temporary.
type AssignTemp struct {
	Temp int
	RHS  Expr
}

// IncTemp increments a machine-integer temporary.
type IncTemp struct {
	Temp int
}

// ExprStmt evaluates for effect. Its value becomes the routine result
// when it is the last one executed.
type ExprStmt struct {
	X Expr
}

// Goto transfers unconditionally.
type Goto struct {
	Target *Label
}

// BranchFalse transfers to Target when Cond is false and falls through
// when it is true. The loop back-edge is BranchFalse(CmpGE(counter,
// length), body): iteration continues exactly while counter < length.
type BranchFalse struct {
	Cond   Expr
	Target *Label
}

// Return ends the enclosing routine with a value.
type Return struct {
	X Expr
}

func (*AssignVar) instr()   {}
func (*AssignTemp) instr()  {}
func (*IncTemp) instr()     {}
func (*ExprStmt) instr()    {}
func (*Goto) instr()        {}
func (*BranchFalse) instr() {}
func (*Return) instr()      {}

// Label marks an instruction position. Targets hold the pointer, so no
// patching pass is needed after lowering.
type Label struct {
	IP    int
	bound bool
}

// Routine is a lowered instruction sequence plus the loop descriptors
// the compilation state machine drives off.
type Routine struct {
	Name     string
	Instrs   []Instr
	NumTemps int
	Loops    []*LoopInfo

	loopAt map[int]*LoopInfo
}

// LoopAt returns the loop whose entry instruction sits at ip.
func (r *Routine) LoopAt(ip int) (*LoopInfo, bool) {
	info, ok := r.loopAt[ip]
	return info, ok
}

// LoopInfo records the instruction layout of one lowered for-loop and
// carries the call site's compilation state.
type LoopInfo struct {
	EntryIP   int // the Goto to the termination test
	BodyStart int
	NextIP    int // continue target: the counter increment
	ExitIP    int // break target: first instruction after the loop

	VecTemp     int
	LengthTemp  int
	CounterTemp int
	ElemVar     string

	Site LoopSite
}
