// Package intcode provides an implementation of an Intcode machine, called
// Program, that executes positional-mode add, multiply and halt instructions
// over a memory of signed 64-bit cells.
package intcode

import (
	"fmt"
	"strings"
)

// Program is an Intcode machine together with the memory it owns.
// Memory holds both code and data and is addressed positionally from zero.
type Program struct {
	// mem has one extra trailing cell beyond the observable memory. It
	// always holds 0; reads at exactly Len() land there.
	mem []int64
	n   int
}

// New returns a Program loaded with a copy of mem.
// It panics if mem is empty.
func New(mem []int64) *Program {
	if len(mem) == 0 {
		panic("intcode: empty program")
	}
	p := &Program{mem: make([]int64, len(mem)+1), n: len(mem)}
	copy(p.mem, mem)
	return p
}

// Len returns the number of cells of observable memory.
func (p *Program) Len() int { return p.n }

// Mem returns a copy of the program's memory.
func (p *Program) Mem() []int64 {
	m := make([]int64, p.n)
	copy(m, p.mem)
	return m
}

// Clone returns an independent copy of p.
func (p *Program) Clone() *Program {
	c := &Program{mem: make([]int64, len(p.mem)), n: p.n}
	copy(c.mem, p.mem)
	return c
}

// Equal reports whether p and q hold the same observable memory.
func (p *Program) Equal(q *Program) bool {
	if p.n != q.n {
		return false
	}
	for i := 0; i < p.n; i++ {
		if p.mem[i] != q.mem[i] {
			return false
		}
	}
	return true
}

// ReadCell returns the value stored at pos.
// Note that the bound is pos > Len(), not pos >= Len(): reading at exactly
// Len() yields the zero past-end cell, which fails as an unknown opcode if
// it is ever decoded.
func (p *Program) ReadCell(pos int) (int64, error) {
	if pos < 0 || pos > p.n {
		return 0, Error{Code: ProgramPositionOutOfBounds, Pos: pos}
	}
	return p.mem[pos], nil
}

// ReadOperand treats the cell at pos as an address and returns the value
// stored at that address.
func (p *Program) ReadOperand(pos int) (int64, error) {
	addr, err := p.ReadCell(pos)
	if err != nil {
		return 0, err
	}
	if addr < 0 || addr >= int64(p.n) {
		return 0, Error{Code: ArgumentPositionOutOfBounds, Pos: pos, Addr: addr}
	}
	return p.mem[addr], nil
}

// WriteCell stores v at addr. The caller must have checked that addr lies
// within [0, Len()]. A write to Len() is discarded.
func (p *Program) WriteCell(addr, v int64) {
	if addr == int64(p.n) {
		return
	}
	p.mem[addr] = v
}

// SetParameters stores noun and verb in cells 1 and 2.
// Programs of four cells or fewer cannot hold an instruction followed by
// anything else and are rejected.
func (p *Program) SetParameters(noun, verb int64) error {
	if p.n <= Width {
		return Error{Code: ProgramPositionOutOfBounds, Pos: p.n}
	}
	p.mem[1] = noun
	p.mem[2] = verb
	return nil
}

// RunWithParameters sets the noun and verb, runs the program to completion
// and returns the final value of cell 0.
func (p *Program) RunWithParameters(noun, verb int64) (int64, error) {
	if err := p.SetParameters(noun, verb); err != nil {
		return 0, err
	}
	if err := p.Run(); err != nil {
		return 0, err
	}
	return p.mem[0], nil
}

func (p *Program) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range p.mem[:p.n] {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(']')
	return b.String()
}
