package intcode

import "fmt"

// Logf is a printf-style function that receives a trace of executed
// instructions.
type Logf func(format string, args ...any)

// Bound returns the position past the last complete instruction.
// Trailing cells that cannot form a whole instruction are never decoded.
func (p *Program) Bound() int {
	return p.n - p.n%Width
}

// Run executes the program from position 0 until it halts, runs past
// Bound, or fails.
func (p *Program) Run() error {
	return p.Exec(nil)
}

// Exec is like Run but, if logf is non-nil, calls it with a description of
// each instruction before executing it.
func (p *Program) Exec(logf Logf) error {
	for pos := 0; pos < p.Bound(); pos += Width {
		if logf != nil {
			logf("%s", p.Disasm(pos))
		}
		a, err := p.Step(pos)
		if err != nil {
			return err
		}
		if a == Stop {
			break
		}
	}
	return nil
}

// Step executes the instruction at pos. It returns Stop if that
// instruction is HLT, and Proceed after a successful ADD or MUL.
func (p *Program) Step(pos int) (Action, error) {
	v, err := p.ReadCell(pos)
	if err != nil {
		return Stop, err
	}
	switch op := Op(v); op {
	case ADD, MUL:
		dest, err := p.ReadCell(pos + 3)
		if err != nil {
			return Stop, err
		}
		if dest < 0 || dest > int64(p.n) {
			return Stop, Error{Code: ModifyPositionOutOfBounds, Addr: dest}
		}
		a, err := p.ReadOperand(pos + 1)
		if err != nil {
			return Stop, err
		}
		b, err := p.ReadOperand(pos + 2)
		if err != nil {
			return Stop, err
		}
		// Overflow wraps around.
		if op == ADD {
			p.WriteCell(dest, a+b)
		} else {
			p.WriteCell(dest, a*b)
		}
		return Proceed, nil
	case HLT:
		return Stop, nil
	default:
		return Stop, Error{Code: UnknownOpcode, Op: op, Pos: pos}
	}
}

// Disasm returns a one-line description of the instruction at pos.
// Addresses that fall outside memory are shown without their contents.
func (p *Program) Disasm(pos int) string {
	v, err := p.ReadCell(pos)
	if err != nil {
		return fmt.Sprintf("%.4d ???", pos)
	}
	op := Op(v)
	if op != ADD && op != MUL {
		return fmt.Sprintf("%.4d %s", pos, op)
	}
	arg := func(i int) string {
		addr, err := p.ReadCell(pos + i)
		if err != nil {
			return "?"
		}
		if addr < 0 || addr >= int64(p.n) {
			return fmt.Sprintf("[%d]", addr)
		}
		return fmt.Sprintf("[%d]=%d", addr, p.mem[addr])
	}
	dest := "?"
	if d, err := p.ReadCell(pos + 3); err == nil {
		dest = fmt.Sprint(d)
	}
	return fmt.Sprintf("%.4d %s %s %s -> %s", pos, op, arg(1), arg(2), dest)
}

// Error is returned by Step, Run and RunWithParameters when execution
// cannot continue. Only the fields relevant to Code are set.
type Error struct {
	Code ErrorCode
	Op   Op    // UnknownOpcode
	Pos  int   // position being decoded or read
	Addr int64 // resolved address
}

func (e Error) Error() string {
	switch e.Code {
	case UnknownOpcode:
		return fmt.Sprintf("%s %d at position %d", e.Code, int64(e.Op), e.Pos)
	case ProgramPositionOutOfBounds:
		return fmt.Sprintf("%s: %d", e.Code, e.Pos)
	case ModifyPositionOutOfBounds:
		return fmt.Sprintf("%s: %d", e.Code, e.Addr)
	case ArgumentPositionOutOfBounds:
		return fmt.Sprintf("%s: cell %d refers to %d", e.Code, e.Pos, e.Addr)
	}
	return e.Code.String()
}

// ErrorCode signifies the condition that stopped execution.
type ErrorCode byte

const (
	UnknownOpcode ErrorCode = iota + 1
	ProgramPositionOutOfBounds
	ModifyPositionOutOfBounds
	ArgumentPositionOutOfBounds
)

func (c ErrorCode) String() string {
	if s, ok := map[ErrorCode]string{
		UnknownOpcode:               "unknown opcode",
		ProgramPositionOutOfBounds:  "program position out of bounds",
		ModifyPositionOutOfBounds:   "modify position out of bounds",
		ArgumentPositionOutOfBounds: "argument position out of bounds",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
