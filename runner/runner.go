// Package runner drives an Intcode program, either straight to completion
// or step by step under the control of a debugger.
package runner

import (
	"errors"

	"github.com/nf/intcode/intcode"
)

// ErrExited is returned by Run when a debug session ends before the
// program halted.
var ErrExited = errors.New("exited before program halted")

// StateKind describes why a StateFunc was called.
type StateKind int

const (
	ClearState StateKind = iota // running; any previous state is stale
	PauseState
	BreakState
	HaltState
	ErrorState
)

func (k StateKind) String() string {
	switch k {
	case PauseState:
		return "pause"
	case BreakState:
		return "break"
	case HaltState:
		return "halt"
	case ErrorState:
		return "error"
	}
	return "clear"
}

// StateFunc is called by a debug Runner whenever execution stops or
// resumes. p must not be retained or modified; pc is the position of the
// next instruction and err is set for ErrorState.
type StateFunc func(p *intcode.Program, pc int, k StateKind, err error)

// Runner runs Intcode programs with a fixed noun and verb.
type Runner struct {
	debug      bool
	noun, verb int64
	state      StateFunc

	cmd      chan command
	swap     chan []int64
	swapDone chan bool
}

type command struct {
	name string
	pos  int
}

// New returns a Runner that sets cells 1 and 2 to noun and verb before
// running. If debug is true, Run starts paused and is controlled through
// Debug and Swap, and state is called as execution stops and resumes.
func New(debug bool, noun, verb int64, state StateFunc) *Runner {
	if state == nil {
		state = func(*intcode.Program, int, StateKind, error) {}
	}
	return &Runner{
		debug:    debug,
		noun:     noun,
		verb:     verb,
		state:    state,
		cmd:      make(chan command),
		swap:     make(chan []int64),
		swapDone: make(chan bool),
	}
}

// Debug sends a command to a running debug session:
//
//	s, step      execute one instruction
//	c, continue  run until halt, error or breakpoint
//	p, pause     stop running
//	b, break     break before executing the instruction at pos (pos < 0 clears)
//	r, reset     reload the program
//	exit         end the session
func (r *Runner) Debug(cmd string, pos int) {
	if !r.debug {
		panic("Debug called while not running in debug mode")
	}
	r.cmd <- command{name: cmd, pos: pos}
}

// Swap replaces the program of a running debug session with mem. The new
// program starts paused and keeps the current breakpoint.
func (r *Runner) Swap(mem []int64) {
	if !r.debug {
		panic("Swap called while not running in debug mode")
	}
	r.swap <- mem
	<-r.swapDone
}

// Run runs mem to completion and returns the final value of cell 0.
// In debug mode it returns when the session receives the exit command.
func (r *Runner) Run(mem []int64) (int64, error) {
	if !r.debug {
		return intcode.New(mem).RunWithParameters(r.noun, r.verb)
	}

	s := r.load(mem, -1)
	for {
		var c command
		if s.running {
			select {
			case c = <-r.cmd:
			case m := <-r.swap:
				s = r.load(m, s.brk)
				r.swapDone <- true
				continue
			default:
				r.step(s)
				continue
			}
		} else {
			select {
			case c = <-r.cmd:
			case m := <-r.swap:
				s = r.load(m, s.brk)
				r.swapDone <- true
				continue
			}
		}
		if c.name == "exit" {
			return s.result()
		}
		s = r.handle(s, c)
	}
}

type session struct {
	mem     []int64 // as loaded, for reset
	p       *intcode.Program
	pc      int
	brk     int
	running bool
	done    bool
	err     error
}

func (s *session) result() (int64, error) {
	switch {
	case s.err != nil:
		return 0, s.err
	case !s.done:
		return 0, ErrExited
	}
	v, _ := s.p.ReadCell(0)
	return v, nil
}

func (r *Runner) load(mem []int64, brk int) *session {
	s := &session{mem: mem, p: intcode.New(mem), brk: brk}
	if err := s.p.SetParameters(r.noun, r.verb); err != nil {
		s.done, s.err = true, err
		r.state(s.p, s.pc, ErrorState, err)
		return s
	}
	r.state(s.p, s.pc, PauseState, nil)
	return s
}

func (r *Runner) handle(s *session, c command) *session {
	switch c.name {
	case "s", "step":
		if !s.done {
			s.running = false
			r.step(s)
			if !s.done {
				r.state(s.p, s.pc, PauseState, nil)
			}
		}
	case "c", "continue":
		if !s.done {
			s.running = true
			r.state(s.p, s.pc, ClearState, nil)
		}
	case "p", "pause":
		if s.running {
			s.running = false
			r.state(s.p, s.pc, PauseState, nil)
		}
	case "b", "break":
		s.brk = c.pos
	case "r", "reset":
		s = r.load(s.mem, s.brk)
	}
	return s
}

// step executes the instruction at s.pc and reports any resulting stop.
func (r *Runner) step(s *session) {
	if s.pc >= s.p.Bound() {
		s.running, s.done = false, true
		r.state(s.p, s.pc, HaltState, nil)
		return
	}
	a, err := s.p.Step(s.pc)
	switch {
	case err != nil:
		s.running, s.done, s.err = false, true, err
		r.state(s.p, s.pc, ErrorState, err)
	case a == intcode.Stop:
		s.running, s.done = false, true
		r.state(s.p, s.pc, HaltState, nil)
	default:
		s.pc += intcode.Width
		if s.running && s.pc == s.brk {
			s.running = false
			r.state(s.p, s.pc, BreakState, nil)
		}
	}
}
