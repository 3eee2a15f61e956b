package vexir

import "fmt"

// builder accumulates instructions for one routine during lowering.
type builder struct {
	name   string
	instrs []Instr
	nTemps int
	loops  []*LoopInfo

	// innermost-last stack of enclosing loops, for break/continue
	active []*activeLoop
}

type activeLoop struct {
	next *Label
	exit *Label
}

func newBuilder(name string) *builder {
	return &builder{name: name}
}

func (b *builder) newTemp() int {
	t := b.nTemps
	b.nTemps++
	return t
}

func (b *builder) newLabel() *Label {
	return &Label{}
}

func (b *builder) mark(l *Label) {
	if l.bound {
		panic(fmt.Errorf("label bound twice"))
	}
	l.IP = len(b.instrs)
	l.bound = true
}

func (b *builder) emit(in Instr) int {
	ip := len(b.instrs)
	b.instrs = append(b.instrs, in)
	return ip
}

func (b *builder) finish() *Routine {
	r := &Routine{
		Name:     b.name,
		Instrs:   b.instrs,
		NumTemps: b.nTemps,
		Loops:    b.loops,
		loopAt:   make(map[int]*LoopInfo, len(b.loops)),
	}
	for _, info := range b.loops {
		r.loopAt[info.EntryIP] = info
	}
	return r
}
