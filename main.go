package main

import (
	"flag"
	"fmt"
	"os"

	"regvm/internal/config"
	"regvm/internal/debugger"
	"regvm/internal/loader"
	"regvm/internal/runner"
	"regvm/internal/tools"
	"regvm/internal/vm"
)

func main() {
	var (
		file       = flag.String("file", "", "program to run (required)")
		debugMode  = flag.Bool("debug", false, "launch the interactive debugger instead of running non-interactively")
		configPath = flag.String("config", "", "path to a TOML config file (default: built-in defaults)")
		disasm     = flag.Bool("disasm", false, "disassemble the program and exit")
		lint       = flag.Bool("lint", false, "lint the program and exit")
		xref       = flag.Bool("xref", false, "print the jump-target cross-reference and exit")
	)
	flag.StringVar(file, "f", "", "shorthand for -file")
	flag.BoolVar(debugMode, "d", false, "shorthand for -debug")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: regvm -file PATH [-debug] [-config PATH] [-disasm | -lint | -xref]")
		os.Exit(1)
	}

	toolModes := 0
	for _, on := range []bool{*disasm, *lint, *xref} {
		if on {
			toolModes++
		}
	}
	if toolModes > 0 && *debugMode {
		fmt.Fprintln(os.Stderr, "error: -debug cannot be combined with -disasm, -lint, or -xref")
		os.Exit(1)
	}
	if toolModes > 1 {
		fmt.Fprintln(os.Stderr, "error: -disasm, -lint, and -xref are mutually exclusive")
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	program, err := loader.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *disasm:
		fmt.Println(tools.DisassembleString(padToRAM(program)))
		return
	case *lint:
		for _, issue := range tools.Lint(padToRAM(program)) {
			fmt.Println(issue.String())
		}
		return
	case *xref:
		refs := tools.CrossReference(padToRAM(program))
		for target, sources := range refs {
			fmt.Printf("0x%04X referenced from:\n", uint64(target))
			for _, src := range sources {
				fmt.Printf("  0x%04X\n", uint64(src))
			}
		}
		return
	}

	if *debugMode {
		newVM := func() *vm.VM { return newMachine(cfg, cfg.Debugger.RAMFill) }
		driver, err := debugger.NewDriver(newVM, program, cfg.Debugger.HistorySize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		tui := debugger.NewTUI(driver, cfg.Debugger.TickIntervalMS,
			cfg.Display.RAMBytesPerLine, cfg.Display.ProgramContextBefore, cfg.Display.ProgramContextAfter)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	machine := newMachine(cfg, cfg.VM.RAMFill)
	if _, err := machine.Load(program); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(runner.Run(machine, os.Stdout, os.Stderr))
}

// newMachine constructs a VM with the given RAM fill mode and wires in
// statistics/register-trace collection when enabled in config — both are
// surfaced on DUMP, so turning them on has no effect unless the program
// being run also executes DUMP.
func newMachine(cfg *config.Config, ramFill string) *vm.VM {
	machine := vm.New(vm.ParseFillMode(ramFill))
	if cfg.VM.EnableStats {
		machine.EnableStatistics()
	}
	if cfg.VM.EnableRegisterTrace {
		machine.EnableRegisterTrace()
	}
	return machine
}

// padToRAM pads program up to vm.RAMLen so tools.Scan's bounds checks behave
// the same as they would against a loaded VM's RAM.
func padToRAM(program []byte) []byte {
	if len(program) >= vm.RAMLen {
		return program
	}
	padded := make([]byte, vm.RAMLen)
	copy(padded, program)
	return padded
}
