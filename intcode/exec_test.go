package intcode

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	src := []int64{1, 0, 0, 0, 99}
	p := New(src)
	src[0] = 42
	if g, w := p.Mem(), []int64{1, 0, 0, 0, 99}; !memEq(g, w) {
		t.Errorf("Mem() = %v, want %v", g, w)
	}
	if g := p.Len(); g != 5 {
		t.Errorf("Len() = %d, want 5", g)
	}

	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}

func TestRun(t *testing.T) {
	for _, c := range []struct {
		mem, want []int64
	}{
		{
			[]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50},
			[]int64{3500, 9, 10, 70, 2, 3, 11, 0, 99, 30, 40, 50},
		},
		{[]int64{1, 0, 0, 0, 99}, []int64{2, 0, 0, 0, 99}},
		{[]int64{2, 3, 0, 3, 99}, []int64{2, 3, 0, 6, 99}},
		{[]int64{2, 4, 4, 5, 99, 0}, []int64{2, 4, 4, 5, 99, 9801}},
		{[]int64{1, 1, 1, 4, 99, 5, 6, 0, 99}, []int64{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		// Trailing cells past the last whole instruction are never decoded.
		{[]int64{1, 0, 0, 0, 7}, []int64{2, 0, 0, 0, 7}},
		{[]int64{1, 0, 0, 0, 1, 0, 0}, []int64{2, 0, 0, 0, 1, 0, 0}},
		// Writing to address Len() is accepted and not observable.
		{[]int64{1, 0, 0, 4}, []int64{1, 0, 0, 4}},
	} {
		t.Run(fmt.Sprint(c.mem), func(t *testing.T) {
			p := New(c.mem)
			if err := p.Run(); err != nil {
				t.Fatalf("Run() returned error %v", err)
			}
			if !p.Equal(New(c.want)) {
				t.Errorf("memory is\n\t%v\nwant\n\t%v", p, New(c.want))
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	for _, c := range []struct {
		mem []int64
		err error
	}{
		{[]int64{3, 0, 0, 0, 99}, Error{Code: UnknownOpcode, Op: 3, Pos: 0}},
		{[]int64{1, 0, 0, 0, 4, 0, 0, 0}, Error{Code: UnknownOpcode, Op: 4, Pos: 4}},
		{[]int64{1, 0, 0, 9, 99}, Error{Code: ModifyPositionOutOfBounds, Addr: 9}},
		{[]int64{2, 0, 7, 0, 99}, Error{Code: ArgumentPositionOutOfBounds, Pos: 2, Addr: 7}},
		{[]int64{2, -1, 0, 0, 99}, Error{Code: ArgumentPositionOutOfBounds, Pos: 1, Addr: -1}},
		// An operand may not refer to the past-end cell.
		{[]int64{1, 5, 0, 0, 99}, Error{Code: ArgumentPositionOutOfBounds, Pos: 1, Addr: 5}},
	} {
		t.Run(fmt.Sprint(c.mem), func(t *testing.T) {
			if err := New(c.mem).Run(); err != c.err {
				t.Fatalf("got error %v, want %v", err, c.err)
			}
		})
	}
}

func TestStep(t *testing.T) {
	c := newStepTestCase
	for i, c := range []*stepTestCase{
		c(1, 2, 2, 0).want(4, 2, 2, 0),
		c(2, 1, 0, 3).want(2, 1, 0, 2),
		c(99).want(99).stop(),
		c(99, 1, 2, 3).want(99, 1, 2, 3).stop(),
		c(3, 5, 10, 2).error(Error{Code: UnknownOpcode, Op: 3, Pos: 0}),
		c(1, 5, 10, -1).error(Error{Code: ModifyPositionOutOfBounds, Addr: -1}),
		c(1, 5, 10, 10).error(Error{Code: ModifyPositionOutOfBounds, Addr: 10}),
		c(1, 5, 10, 10).at(10).error(Error{Code: ProgramPositionOutOfBounds, Pos: 10}),
		c(1, 5, 10, 10).at(-4).error(Error{Code: ProgramPositionOutOfBounds, Pos: -4}),
		c(1, 25, 3, 0, 5, 6, 7, 8).error(Error{Code: ArgumentPositionOutOfBounds, Pos: 1, Addr: 25}),

		// Decoding at exactly Len() reads the zero past-end cell.
		c(1, 0, 0, 0).at(4).error(Error{Code: UnknownOpcode, Op: 0, Pos: 4}),
		// An instruction whose destination cell lies one past the end
		// sees the zero past-end cell as its destination.
		c(1, 0, 0, 0, 1, 0, 0).at(4).want(2, 0, 0, 0, 1, 0, 0),
		// A destination cell two past the end cannot be read.
		c(99, 0, 0, 0, 1, 0).at(4).error(Error{Code: ProgramPositionOutOfBounds, Pos: 7}),
		// A write to Len() is discarded.
		c(1, 0, 0, 4).want(1, 0, 0, 4),

		c(1, 4, 5, 0, math.MaxInt64, 1).want(math.MinInt64, 4, 5, 0, math.MaxInt64, 1),
		c(2, 4, 5, 0, math.MaxInt64, 2).want(-2, 4, 5, 0, math.MaxInt64, 2),
	} {
		t.Run(fmt.Sprintf("%v_%d", c.p, i), func(t *testing.T) {
			a, err := c.p.Step(c.pos)
			if err != c.err {
				t.Fatalf("got error %v, want %v", err, c.err)
			}
			if err != nil {
				return
			}
			if a != c.action {
				t.Errorf("action is %v, want %v", a, c.action)
			}
			if !c.p.Equal(c.w) {
				t.Errorf("memory is\n\t%v\nwant\n\t%v", c.p, c.w)
			}
		})
	}
}

func TestReadOperand(t *testing.T) {
	p := New([]int64{1, 2, 3, 4, 5, 6, 7, 8})
	if v, err := p.ReadOperand(1); err != nil || v != 3 {
		t.Errorf("ReadOperand(1) = %d, %v, want 3, nil", v, err)
	}
	p = New([]int64{1, 25, 3, 4, 5, 6, 7, 8})
	want := Error{Code: ArgumentPositionOutOfBounds, Pos: 1, Addr: 25}
	if _, err := p.ReadOperand(1); err != want {
		t.Errorf("ReadOperand(1) error = %v, want %v", err, want)
	}
	want = Error{Code: ProgramPositionOutOfBounds, Pos: 9}
	if _, err := p.ReadOperand(9); err != want {
		t.Errorf("ReadOperand(9) error = %v, want %v", err, want)
	}
}

func TestReadCell(t *testing.T) {
	p := New([]int64{7, 8, 9})
	for pos, want := range []int64{7, 8, 9, 0} {
		if v, err := p.ReadCell(pos); err != nil || v != want {
			t.Errorf("ReadCell(%d) = %d, %v, want %d, nil", pos, v, err, want)
		}
	}
	want := Error{Code: ProgramPositionOutOfBounds, Pos: 4}
	if _, err := p.ReadCell(4); err != want {
		t.Errorf("ReadCell(4) error = %v, want %v", err, want)
	}
}

func TestWritePastEnd(t *testing.T) {
	// The ADD at 0 stores 99 at address Len().
	p := New([]int64{1, 5, 6, 8, 99, 0, 99, 0})
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if v, err := p.ReadCell(8); err != nil || v != 0 {
		t.Errorf("ReadCell(8) = %d, %v, want 0, nil", v, err)
	}
	want := Error{Code: UnknownOpcode, Op: 0, Pos: 8}
	for _, q := range []*Program{p, p.Clone(), New(p.Mem())} {
		if _, err := q.Step(8); err != want {
			t.Errorf("Step(8) on %v: got error %v, want %v", q, err, want)
		}
	}
}

func TestRunWithParameters(t *testing.T) {
	p := New([]int64{1, 0, 0, 0, 99})
	v, err := p.RunWithParameters(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 103 {
		t.Errorf("RunWithParameters(4, 1) = %d, want 103", v)
	}

	// Cells 1 and 2 are overwritten regardless of their prior values.
	src := []int64{1, 100, 200, 0, 99, 10, 20}
	v, err = New(src).RunWithParameters(5, 6)
	if err != nil {
		t.Fatal(err)
	}
	if v != 30 {
		t.Errorf("RunWithParameters(5, 6) = %d, want 30", v)
	}

	for _, mem := range [][]int64{{99}, {1, 0, 0, 0}} {
		want := Error{Code: ProgramPositionOutOfBounds, Pos: len(mem)}
		p := New(mem)
		if _, err := p.RunWithParameters(1, 1); err != want {
			t.Errorf("RunWithParameters on %v: got error %v, want %v", mem, err, want)
		}
		if !p.Equal(New(mem)) {
			t.Errorf("RunWithParameters on %v modified memory: %v", mem, p)
		}
	}
}

func TestDeterministicClones(t *testing.T) {
	base := New([]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50})
	a, b := base.Clone(), base.Clone()
	va, erra := a.RunWithParameters(9, 10)
	vb, errb := b.RunWithParameters(9, 10)
	if va != vb || erra != errb {
		t.Errorf("clones disagree: %d, %v and %d, %v", va, erra, vb, errb)
	}
	if !a.Equal(b) {
		t.Errorf("clone memories differ:\n\t%v\n\t%v", a, b)
	}
	if want := New([]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}); !base.Equal(want) {
		t.Errorf("base program modified: %v", base)
	}
}

func TestErrorAs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New([]int64{5, 0, 0, 0, 99}).Run())
	var e Error
	if !errors.As(err, &e) {
		t.Fatalf("errors.As(%v) failed", err)
	}
	if e.Code != UnknownOpcode || e.Op != 5 {
		t.Errorf("got %#v", e)
	}
	if g, w := e.Error(), "unknown opcode 5 at position 0"; g != w {
		t.Errorf("Error() = %q, want %q", g, w)
	}
}

func TestExecTrace(t *testing.T) {
	var lines []string
	p := New([]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50})
	err := p.Exec(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"0000 ADD [9]=30 [10]=40 -> 3",
		"0004 MUL [3]=70 [11]=50 -> 0",
		"0008 HLT",
	}
	if len(lines) != len(want) {
		t.Fatalf("got trace %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("trace line %d is %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestDisasm(t *testing.T) {
	p := New([]int64{1, 9, 10, 3, 1, 0, 12, 0, 7, 30, 40, 1, 2, 0})
	for _, c := range []struct {
		pos  int
		want string
	}{
		{0, "0000 ADD [9]=30 [10]=40 -> 3"},
		{4, "0004 ADD [0]=1 [12]=2 -> 0"},
		{8, "0008 op(7)"},
		{14, "0014 op(0)"},
		{15, "0015 ???"},
	} {
		if got := p.Disasm(c.pos); got != c.want {
			t.Errorf("Disasm(%d) = %q, want %q", c.pos, got, c.want)
		}
	}

	// Cells past the end of memory render as "?".
	p = New([]int64{99, 0, 0, 0, 1, 0})
	if got, want := p.Disasm(4), "0004 ADD [0]=99 [0]=99 -> ?"; got != want {
		t.Errorf("Disasm(4) = %q, want %q", got, want)
	}
	p = New([]int64{99, 0, 0, 0, 2, 25})
	if got, want := p.Disasm(4), "0004 MUL [25] [0]=99 -> ?"; got != want {
		t.Errorf("Disasm(4) = %q, want %q", got, want)
	}
}

type stepTestCase struct {
	p, w   *Program
	pos    int
	action Action
	err    error
}

func newStepTestCase(mem ...int64) *stepTestCase {
	return &stepTestCase{p: New(mem), w: New(mem), action: Proceed}
}

func (c *stepTestCase) want(mem ...int64) *stepTestCase {
	c.w = New(mem)
	return c
}

func (c *stepTestCase) at(pos int) *stepTestCase {
	c.pos = pos
	return c
}

func (c *stepTestCase) stop() *stepTestCase {
	c.action = Stop
	return c
}

func (c *stepTestCase) error(err error) *stepTestCase {
	c.err = err
	return c
}

func memEq(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
