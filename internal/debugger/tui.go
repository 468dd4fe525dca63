package debugger

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"regvm/internal/regfile"
	"regvm/internal/vm"
	"regvm/internal/word"
)

// TUI is the tview-based terminal front end over a Driver. Panel layout and
// color-tag styling are adapted from the teacher's debugger/tui.go, cut down
// to the four panels this driver has: Registers, Program, RAM, History.
type TUI struct {
	driver *Driver

	app          *tview.Application
	registerView *tview.TextView
	programView  *tview.TextView
	ramView      *tview.TextView
	historyView  *tview.TextView

	tickInterval time.Duration
	ramPerLine   int
	progBefore   int
	progAfter    int
}

// NewTUI builds the panel layout and key bindings around driver.
func NewTUI(driver *Driver, tickIntervalMS, ramBytesPerLine, programBefore, programAfter int) *TUI {
	t := &TUI{
		driver:       driver,
		app:          tview.NewApplication(),
		tickInterval: time.Duration(tickIntervalMS) * time.Millisecond,
		ramPerLine:   ramBytesPerLine,
		progBefore:   programBefore,
		progAfter:    programAfter,
	}
	t.build()
	return t
}

func (t *TUI) build() {
	t.registerView = tview.NewTextView().SetDynamicColors(true)
	t.registerView.SetBorder(true).SetTitle(" Registers ")

	t.programView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.programView.SetBorder(true).SetTitle(" Program ")

	t.ramView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.ramView.SetBorder(true).SetTitle(" RAM ")

	t.historyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.historyView.SetBorder(true).SetTitle(" History (q=quit r=reset space=step enter=auto) ")

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.registerView, RegisterPanelRows, 0, false).
		AddItem(t.ramView, 0, 1, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.programView, 0, 2, false).
		AddItem(t.historyView, HistoryPanelRows, 0, false)

	root := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 0, 1, false).
		AddItem(right, 0, 2, false)

	t.app.SetRoot(root, true)

	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			t.app.Stop()
			return nil
		case 'r', 'R':
			if err := t.driver.Reset(); err != nil {
				t.driver.History.Add(StyleFault, err.Error())
			}
			t.refresh()
			return nil
		case ' ':
			t.driver.Step()
			t.refresh()
			return nil
		}
		if event.Key() == tcell.KeyEnter {
			t.driver.ToggleAuto()
			t.refresh()
			return nil
		}
		return event
	})
}

// Run draws once and enters the render loop, driving auto-run frames off a
// ticker at the configured interval (the bounded-poll requirement of §4.G,
// reinterpreted for tview's event-driven model — see SPEC_FULL.md §4.G).
func (t *TUI) Run() error {
	t.refresh()

	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				t.app.QueueUpdateDraw(func() {
					t.driver.Tick()
					t.refresh()
				})
			case <-stop:
				return
			}
		}
	}()
	defer close(stop)

	return t.app.Run()
}

func (t *TUI) refresh() {
	t.refreshRegisters()
	t.refreshRAM()
	t.refreshProgram()
	t.refreshHistory()
}

func (t *TUI) refreshRegisters() {
	lines := t.driver.VM.ShowRegs()
	if len(lines) != regfile.Count {
		t.registerView.SetText("CORRUPTED")
		return
	}

	written, read := map[int]bool{}, map[int]bool{}
	if t.driver.NextInstruction != nil {
		w, r := vm.TargetRegs(*t.driver.NextInstruction)
		for _, idx := range w {
			written[idx] = true
		}
		for _, idx := range r {
			read[idx] = true
		}
	}

	var sb strings.Builder
	for i, line := range lines {
		switch {
		case written[i]:
			fmt.Fprintf(&sb, "[black:yellow]%s[-:-]\n", line)
		case read[i]:
			fmt.Fprintf(&sb, "[black:aqua]%s[-:-]\n", line)
		default:
			fmt.Fprintf(&sb, "%s\n", line)
		}
	}
	t.registerView.SetText(sb.String())
}

func (t *TUI) refreshRAM() {
	ram := t.driver.VM.RAM()

	var targets []vm.RAMTarget
	if t.driver.NextInstruction != nil {
		targets = t.driver.VM.TargetRAM(*t.driver.NextInstruction)
	}
	written, read := make(map[int]bool), make(map[int]bool)
	for _, target := range targets {
		marks := read
		if target.Write {
			marks = written
		}
		start := int(target.AddrValue)
		for o := 0; o < word.Size; o++ {
			if start+o >= 0 && start+o < len(ram) {
				marks[start+o] = true
			}
		}
	}

	var sb strings.Builder
	for i, b := range ram {
		if i%t.ramPerLine == 0 {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%04X: ", i)
		}
		switch {
		case written[i]:
			fmt.Fprintf(&sb, "[black:yellow]%02x[-:-] ", b)
		case read[i]:
			fmt.Fprintf(&sb, "[black:aqua]%02x[-:-] ", b)
		default:
			fmt.Fprintf(&sb, "%02x ", b)
		}
	}
	t.ramView.SetText(sb.String())
}

func (t *TUI) refreshProgram() {
	pc := t.driver.VM.PC()
	lines := t.driver.VM.ShowProgram()

	centerIdx := 0
	for i, l := range lines {
		if l.Addr == pc {
			centerIdx = i
			break
		}
	}
	start := centerIdx - t.progBefore
	if start < 0 {
		start = 0
	}
	end := centerIdx + t.progAfter
	if end > len(lines) {
		end = len(lines)
	}

	targetAddr, hasTarget := t.driver.PendingTargetAddr()

	var sb strings.Builder
	for _, l := range lines[start:end] {
		marker := "  "
		if l.Addr == pc {
			marker = "->"
		}
		text := fmt.Sprintf("%s %04X: %s", marker, uint64(l.Addr), l.Instruction.String())
		switch {
		case l.Addr == pc:
			fmt.Fprintf(&sb, "[black:yellow]%s[-:-]\n", text)
		case hasTarget && l.Addr == targetAddr:
			fmt.Fprintf(&sb, "[black:aqua]%s[-:-]\n", text)
		default:
			fmt.Fprintf(&sb, "%s\n", text)
		}
	}
	t.programView.SetText(sb.String())
}

func (t *TUI) refreshHistory() {
	var sb strings.Builder
	for _, e := range t.driver.History.Entries() {
		switch e.Style {
		case StyleStderr:
			fmt.Fprintf(&sb, "[yellow]%s[-]\n", e.Text)
		case StyleExit:
			fmt.Fprintf(&sb, "[green]%s[-]\n", e.Text)
		case StyleFault:
			fmt.Fprintf(&sb, "[red]%s[-]\n", e.Text)
		default:
			fmt.Fprintf(&sb, "%s\n", e.Text)
		}
	}
	t.historyView.SetText(sb.String())
	t.historyView.ScrollToEnd()
}
