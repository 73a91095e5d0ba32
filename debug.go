package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/runner"
)

var debugCommands = []string{
	"step", "continue", "pause", "break", "reset", "exit",
}

type debugView struct {
	r *runner.Runner

	log   *tview.TextView
	mem   *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu  sync.Mutex
	brk int // -1 if unset
}

func newDebugView() *debugView {
	d := &debugView{
		log: tview.NewTextView().
			SetMaxLines(1000),
		mem: tview.NewTextView().
			SetWrap(false).
			SetDynamicColors(true),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
		brk: -1,
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.mem.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.mem, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range debugCommands {
			if strings.HasPrefix(c, t) {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		cmd, pos, err := parseCommand(cmd)
		if err != nil {
			log.Print(err)
			return
		}
		switch cmd {
		case "exit":
			d.app.Stop()
		case "b", "break":
			d.r.Debug(cmd, pos)
			d.setBreak(pos)
			if pos < 0 {
				log.Print("cleared break")
			} else {
				log.Printf("set break %.4d", pos)
			}
		default:
			d.r.Debug(cmd, pos)
		}
	})
	return d
}

func (d *debugView) Run() error { return d.app.Run() }

// parseCommand splits a line typed into the debugger into a command name and
// position. The position of a break without an argument is -1, which clears
// the breakpoint.
func parseCommand(s string) (cmd string, pos int, err error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return "", 0, fmt.Errorf("empty command")
	}
	cmd = f[0]
	switch cmd {
	case "b", "break":
		if len(f) == 1 {
			return cmd, -1, nil
		}
		if len(f) > 2 {
			return "", 0, fmt.Errorf("%s: too many arguments", cmd)
		}
		pos, err := strconv.Atoi(f[1])
		if err != nil || pos < 0 || pos%intcode.Width != 0 {
			return "", 0, fmt.Errorf("invalid position %q", f[1])
		}
		return cmd, pos, nil
	case "s", "step", "c", "continue", "p", "pause", "r", "reset", "exit":
		if len(f) > 1 {
			return "", 0, fmt.Errorf("%s takes no argument", cmd)
		}
		return cmd, 0, nil
	}
	return "", 0, fmt.Errorf("unknown command %q", cmd)
}

func (d *debugView) setBreak(pos int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brk = pos
}

func (d *debugView) breakPos() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brk
}

// StateFunc is a runner.StateFunc that renders the machine state.
func (d *debugView) StateFunc(p *intcode.Program, pc int, k runner.StateKind, err error) {
	var (
		mem   = memContent(p, pc, d.breakPos())
		state = stateMsg(p, pc, k, err)
	)
	d.app.QueueUpdateDraw(func() {
		switch k {
		case runner.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case runner.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case runner.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case runner.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkGreen)
		case runner.ErrorState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.mem.SetText(mem)
		d.state.SetText(state)
	})
}

func stateMsg(p *intcode.Program, pc int, k runner.StateKind, err error) string {
	kind := "       "
	switch k {
	case runner.BreakState:
		kind = "[break]"
	case runner.PauseState:
		kind = "[pause]"
	case runner.HaltState:
		kind = "[halt] "
	case runner.ErrorState:
		kind = "[ERROR]"
	}
	cell0, _ := p.ReadCell(0)
	msg := fmt.Sprintf("%s %s\ncell 0: %d", kind, p.Disasm(pc), cell0)
	if err != nil {
		msg += "\n" + err.Error()
	}
	return msg
}

// memContent renders memory one instruction per line, marking the program
// counter and the breakpoint.
func memContent(p *intcode.Program, pc, brk int) string {
	var (
		b   strings.Builder
		mem = p.Mem()
	)
	for i := 0; i < len(mem); i += intcode.Width {
		switch {
		case i == pc:
			b.WriteString("[yellow]>")
		case i == brk:
			b.WriteString("[red]*")
		default:
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%.4d:", i)
		for j := i; j < i+intcode.Width && j < len(mem); j++ {
			fmt.Fprintf(&b, " %d", mem[j])
		}
		if i == pc || i == brk {
			b.WriteString("[-]")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
