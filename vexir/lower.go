package vexir

import (
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/reusee/vex/vexvec"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Lower parses source and translates it into an instruction sequence.
// Every for-loop in the result carries a LoopInfo so execution can
// attempt specialization at its entry.
func Lower(name string, source io.Reader) (*Routine, error) {
	file, err := fileOptions.Parse(name, source, 0)
	if err != nil {
		return nil, err
	}

	l := &lowerer{b: newBuilder(name)}
	if err := l.stmts(file.Stmts); err != nil {
		return nil, err
	}
	return l.b.finish(), nil
}

type lowerer struct {
	b *builder
}

func (l *lowerer) stmts(stmts []syntax.Stmt) error {
	for _, s := range stmts {
		if err := l.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) stmt(stmt syntax.Stmt) error {
	switch s := stmt.(type) {
	case *syntax.ExprStmt:
		x, err := l.expr(s.X)
		if err != nil {
			return err
		}
		l.b.emit(&ExprStmt{X: x})
		return nil
	case *syntax.AssignStmt:
		return l.assign(s)
	case *syntax.DefStmt:
		return l.def(s)
	case *syntax.ReturnStmt:
		var x Expr = &Const{Value: vexvec.NewLogical()}
		if s.Result != nil {
			var err error
			if x, err = l.expr(s.Result); err != nil {
				return err
			}
		}
		l.b.emit(&Return{X: x})
		return nil
	case *syntax.IfStmt:
		return l.ifStmt(s)
	case *syntax.WhileStmt:
		return l.whileStmt(s)
	case *syntax.ForStmt:
		return l.forStmt(s)
	case *syntax.BranchStmt:
		return l.branch(s)
	default:
		return fmt.Errorf("unsupported statement: %T", stmt)
	}
}

func (l *lowerer) assign(s *syntax.AssignStmt) error {
	if s.Op != syntax.EQ {
		// augmented assign desugars to a call on the current value
		name, ok := augOpName[s.Op]
		if !ok {
			return fmt.Errorf("unsupported assignment operator: %s", s.Op)
		}
		ident, ok := s.LHS.(*syntax.Ident)
		if !ok {
			return fmt.Errorf("augmented assignment needs a variable on the left")
		}
		rhs, err := l.expr(s.RHS)
		if err != nil {
			return err
		}
		l.b.emit(&AssignVar{Name: ident.Name, RHS: &Call{
			Fn:   &ReadVar{Name: name},
			Args: []Expr{&ReadVar{Name: ident.Name}, rhs},
		}})
		return nil
	}

	switch lhs := unparen(s.LHS).(type) {
	case *syntax.Ident:
		rhs, err := l.expr(s.RHS)
		if err != nil {
			return err
		}
		l.b.emit(&AssignVar{Name: lhs.Name, RHS: rhs})
		return nil
	case *syntax.IndexExpr:
		// x[i] = v updates x through the replacement form
		ident, ok := unparen(lhs.X).(*syntax.Ident)
		if !ok {
			return fmt.Errorf("indexed assignment needs a variable")
		}
		index, err := l.expr(lhs.Y)
		if err != nil {
			return err
		}
		rhs, err := l.expr(s.RHS)
		if err != nil {
			return err
		}
		l.b.emit(&AssignVar{Name: ident.Name, RHS: &Call{
			Fn:   &ReadVar{Name: "[<-"},
			Args: []Expr{&ReadVar{Name: ident.Name}, index, rhs},
		}})
		return nil
	default:
		return fmt.Errorf("unsupported assignment target: %T", s.LHS)
	}
}

func (l *lowerer) def(s *syntax.DefStmt) error {
	def, err := l.closureDef(s.Name.Name, s.Params, s.Body)
	if err != nil {
		return err
	}
	l.b.emit(&AssignVar{Name: s.Name.Name, RHS: &MakeClosure{Def: def}})
	return nil
}

func (l *lowerer) closureDef(name string, params []syntax.Expr, body []syntax.Stmt) (*ClosureDef, error) {
	names := make([]string, 0, len(params))
	for _, p := range params {
		ident, ok := p.(*syntax.Ident)
		if !ok {
			return nil, fmt.Errorf("unsupported parameter form: %T", p)
		}
		names = append(names, ident.Name)
	}

	inner := &lowerer{b: newBuilder(name)}
	if err := inner.stmts(body); err != nil {
		return nil, err
	}
	return &ClosureDef{
		Name:   name,
		Params: names,
		Body:   inner.b.finish(),
	}, nil
}

func (l *lowerer) ifStmt(s *syntax.IfStmt) error {
	cond, err := l.expr(s.Cond)
	if err != nil {
		return err
	}
	elseL := l.b.newLabel()
	l.b.emit(&BranchFalse{Cond: cond, Target: elseL})

	if err := l.stmts(s.True); err != nil {
		return err
	}

	if len(s.False) == 0 {
		l.b.mark(elseL)
		return nil
	}
	end := l.b.newLabel()
	l.b.emit(&Goto{Target: end})
	l.b.mark(elseL)
	if err := l.stmts(s.False); err != nil {
		return err
	}
	l.b.mark(end)
	return nil
}

func (l *lowerer) whileStmt(s *syntax.WhileStmt) error {
	test := l.b.newLabel()
	exit := l.b.newLabel()
	l.b.mark(test)

	cond, err := l.expr(s.Cond)
	if err != nil {
		return err
	}
	l.b.emit(&BranchFalse{Cond: cond, Target: exit})

	l.b.active = append(l.b.active, &activeLoop{next: test, exit: exit})
	if err := l.stmts(s.Body); err != nil {
		return err
	}
	l.b.active = l.b.active[:len(l.b.active)-1]

	l.b.emit(&Goto{Target: test})
	l.b.mark(exit)
	return nil
}

// forStmt lowers a counted loop: the iterable and its length are
// snapshotted into temps before the first iteration, a machine-integer
// counter runs from 0, and the loop variable is rebound to the current
// element at the top of every iteration. The variable stays bound after
// the loop ends.
func (l *lowerer) forStmt(s *syntax.ForStmt) error {
	ident, ok := unparen(s.Vars).(*syntax.Ident)
	if !ok {
		return fmt.Errorf("unsupported loop variable form: %T", s.Vars)
	}

	iterable, err := l.expr(s.X)
	if err != nil {
		return err
	}

	vec := l.b.newTemp()
	length := l.b.newTemp()
	counter := l.b.newTemp()

	l.b.emit(&AssignTemp{Temp: vec, RHS: iterable})
	l.b.emit(&AssignTemp{Temp: length, RHS: &LengthOf{X: &ReadTemp{Temp: vec}}})
	l.b.emit(&AssignTemp{Temp: counter, RHS: &IntLit{N: 0}})

	body := l.b.newLabel()
	test := l.b.newLabel()
	next := l.b.newLabel()
	exit := l.b.newLabel()

	entryIP := l.b.emit(&Goto{Target: test})

	l.b.mark(body)
	l.b.emit(&AssignVar{Name: ident.Name, RHS: &ElemAt{
		VecTemp:     vec,
		CounterTemp: counter,
	}})

	l.b.active = append(l.b.active, &activeLoop{next: next, exit: exit})
	if err := l.stmts(s.Body); err != nil {
		return err
	}
	l.b.active = l.b.active[:len(l.b.active)-1]

	l.b.mark(next)
	nextIP := l.b.emit(&IncTemp{Temp: counter})

	l.b.mark(test)
	l.b.emit(&BranchFalse{
		Cond:   &CmpGE{CounterTemp: counter, LengthTemp: length},
		Target: body,
	})
	l.b.mark(exit)

	l.b.loops = append(l.b.loops, &LoopInfo{
		EntryIP:     entryIP,
		BodyStart:   entryIP + 1,
		NextIP:      nextIP,
		ExitIP:      exit.IP,
		VecTemp:     vec,
		LengthTemp:  length,
		CounterTemp: counter,
		ElemVar:     ident.Name,
	})
	return nil
}

func (l *lowerer) branch(s *syntax.BranchStmt) error {
	if s.Token == syntax.PASS {
		return nil
	}
	if len(l.b.active) == 0 {
		return fmt.Errorf("%s outside loop", s.Token)
	}
	loop := l.b.active[len(l.b.active)-1]
	switch s.Token {
	case syntax.BREAK:
		l.b.emit(&Goto{Target: loop.exit})
	case syntax.CONTINUE:
		l.b.emit(&Goto{Target: loop.next})
	}
	return nil
}

var binOpName = map[syntax.Token]string{
	syntax.PLUS:     "+",
	syntax.MINUS:    "-",
	syntax.STAR:     "*",
	syntax.SLASH:    "/",
	syntax.PERCENT:  "%",
	syntax.STARSTAR: "^",
	syntax.LT:       "<",
	syntax.GT:       ">",
	syntax.LE:       "<=",
	syntax.GE:       ">=",
	syntax.EQL:      "==",
	syntax.NEQ:      "!=",
}

var augOpName = map[syntax.Token]string{
	syntax.PLUS_EQ:  "+",
	syntax.MINUS_EQ: "-",
	syntax.STAR_EQ:  "*",
	syntax.SLASH_EQ: "/",
}

func (l *lowerer) expr(expr syntax.Expr) (Expr, error) {
	switch e := expr.(type) {
	case *syntax.Literal:
		return l.literal(e)
	case *syntax.Ident:
		switch e.Name {
		case "True":
			return &Const{Value: vexvec.Bool(true)}, nil
		case "False":
			return &Const{Value: vexvec.Bool(false)}, nil
		case "None":
			return &Const{Value: vexvec.NewLogical(vexvec.NAInt)}, nil
		}
		return &ReadVar{Name: e.Name}, nil
	case *syntax.ParenExpr:
		return l.expr(e.X)
	case *syntax.UnaryExpr:
		return l.unary(e)
	case *syntax.BinaryExpr:
		return l.binary(e)
	case *syntax.CallExpr:
		return l.call(e)
	case *syntax.IndexExpr:
		x, err := l.expr(e.X)
		if err != nil {
			return nil, err
		}
		y, err := l.expr(e.Y)
		if err != nil {
			return nil, err
		}
		return &Call{Fn: &ReadVar{Name: "["}, Args: []Expr{x, y}}, nil
	case *syntax.CondExpr:
		return l.cond(e)
	case *syntax.LambdaExpr:
		def, err := l.closureDef("<lambda>", e.Params, []syntax.Stmt{
			&syntax.ReturnStmt{Result: e.Body},
		})
		if err != nil {
			return nil, err
		}
		return &MakeClosure{Def: def}, nil
	default:
		return nil, fmt.Errorf("unsupported expression: %T", expr)
	}
}

func (l *lowerer) literal(e *syntax.Literal) (Expr, error) {
	switch v := e.Value.(type) {
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 && int32(v) != vexvec.NAInt {
			return &Const{Value: vexvec.NewInt(int32(v))}, nil
		}
		return &Const{Value: vexvec.NewDouble(float64(v))}, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return &Const{Value: vexvec.NewDouble(f)}, nil
	case float64:
		return &Const{Value: vexvec.NewDouble(v)}, nil
	case string:
		return &Const{Value: vexvec.NewString(v)}, nil
	default:
		return nil, fmt.Errorf("unsupported literal: %T", e.Value)
	}
}

func (l *lowerer) unary(e *syntax.UnaryExpr) (Expr, error) {
	x, err := l.expr(e.X)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case syntax.PLUS:
		return x, nil
	case syntax.MINUS:
		return &Call{Fn: &ReadVar{Name: "-"}, Args: []Expr{x}}, nil
	case syntax.NOT:
		return &Call{Fn: &ReadVar{Name: "!"}, Args: []Expr{x}}, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator: %s", e.Op)
	}
}

func (l *lowerer) binary(e *syntax.BinaryExpr) (Expr, error) {
	if e.Op == syntax.AND || e.Op == syntax.OR {
		return l.shortCircuit(e)
	}
	name, ok := binOpName[e.Op]
	if !ok {
		return nil, fmt.Errorf("unsupported binary operator: %s", e.Op)
	}
	x, err := l.expr(e.X)
	if err != nil {
		return nil, err
	}
	y, err := l.expr(e.Y)
	if err != nil {
		return nil, err
	}
	return &Call{Fn: &ReadVar{Name: name}, Args: []Expr{x, y}}, nil
}

// shortCircuit lowers "and"/"or" through a temp and branches so the
// right side only evaluates when needed.
func (l *lowerer) shortCircuit(e *syntax.BinaryExpr) (Expr, error) {
	x, err := l.expr(e.X)
	if err != nil {
		return nil, err
	}
	t := l.b.newTemp()
	end := l.b.newLabel()
	l.b.emit(&AssignTemp{Temp: t, RHS: x})

	if e.Op == syntax.AND {
		l.b.emit(&BranchFalse{Cond: &ReadTemp{Temp: t}, Target: end})
	} else {
		rhs := l.b.newLabel()
		l.b.emit(&BranchFalse{Cond: &ReadTemp{Temp: t}, Target: rhs})
		l.b.emit(&Goto{Target: end})
		l.b.mark(rhs)
	}

	y, err := l.expr(e.Y)
	if err != nil {
		return nil, err
	}
	l.b.emit(&AssignTemp{Temp: t, RHS: y})
	l.b.mark(end)
	return &ReadTemp{Temp: t}, nil
}

func (l *lowerer) cond(e *syntax.CondExpr) (Expr, error) {
	cond, err := l.expr(e.Cond)
	if err != nil {
		return nil, err
	}
	t := l.b.newTemp()
	elseL := l.b.newLabel()
	end := l.b.newLabel()

	l.b.emit(&BranchFalse{Cond: cond, Target: elseL})
	x, err := l.expr(e.True)
	if err != nil {
		return nil, err
	}
	l.b.emit(&AssignTemp{Temp: t, RHS: x})
	l.b.emit(&Goto{Target: end})

	l.b.mark(elseL)
	y, err := l.expr(e.False)
	if err != nil {
		return nil, err
	}
	l.b.emit(&AssignTemp{Temp: t, RHS: y})
	l.b.mark(end)
	return &ReadTemp{Temp: t}, nil
}

func (l *lowerer) call(e *syntax.CallExpr) (*Call, error) {
	fn, err := l.expr(e.Fn)
	if err != nil {
		return nil, err
	}
	args := make([]Expr, 0, len(e.Args))
	for _, a := range e.Args {
		if bin, ok := a.(*syntax.BinaryExpr); ok && bin.Op == syntax.EQ {
			return nil, fmt.Errorf("named arguments are not supported")
		}
		x, err := l.expr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, x)
	}
	return &Call{Fn: fn, Args: args}, nil
}

func unparen(e syntax.Expr) syntax.Expr {
	for {
		p, ok := e.(*syntax.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
