package intcode

import "strconv"

// Op represents an Intcode opcode.
type Op int64

const (
	ADD Op = 1
	MUL Op = 2
	HLT Op = 99
)

// Width is the number of cells occupied by a single instruction.
const Width = 4

// Known reports whether the opcode is part of the instruction set.
func (o Op) Known() bool {
	switch o {
	case ADD, MUL, HLT:
		return true
	}
	return false
}

func (o Op) String() string {
	switch o {
	case ADD:
		return "ADD"
	case MUL:
		return "MUL"
	case HLT:
		return "HLT"
	}
	return "op(" + strconv.FormatInt(int64(o), 10) + ")"
}

// Action tells the run loop what to do after a step.
type Action byte

const (
	Proceed Action = iota
	Stop
)

func (a Action) String() string {
	if a == Stop {
		return "stop"
	}
	return "proceed"
}
