// Package maincmd implements the Luminous command-line driver: argument
// parsing and command dispatch, modeled directly on the teacher's
// mainer-based Cmd/Parser/buildCmds pattern.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"github.com/andyyu8588/Luminous/internal/config"
)

const binName = "luminous"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<command>] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<command>] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the Luminous scripting language.

The <command> can be one of:
       run                        Compile and execute a script. Default
                                  command when <path> is given.
       repl                       Start an interactive read-eval-print loop.
                                  Default command when no <path> is given.
       disassemble                Compile a script and print its bytecode
                                  disassembly instead of running it.
       tokenize                   Execute the scanner phase only and print
                                  the resulting token sequence.

Valid flag options are:
       -h --help                  Show this help and exit.
       -v --version               Print version and exit.
       --trace-exec               Trace each executed instruction.
       --dump-chunks              Print bytecode disassembly before running.
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	TraceExec  bool `flag:"trace-exec"`
	DumpChunks bool `flag:"dump-chunks"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error

	// cfg layers in LUMINOUS_* env vars and an optional luminous.yaml
	// project file, loaded once in Main (internal/config.Load). CLI flags
	// and cfg are combined: effectiveTraceExec and effectiveDumpChunks OR
	// the two sources together (either one enables the option), and
	// stackMax comes from cfg.StackMax alone since there is no CLI flag
	// for it.
	cfg *config.Config
}

// effectiveTraceExec reports whether execution tracing is enabled by
// either the --trace-exec flag or LUMINOUS_TRACE_EXEC/luminous.yaml.
func (c *Cmd) effectiveTraceExec() bool {
	return c.TraceExec || (c.cfg != nil && c.cfg.TraceExec)
}

// effectiveDumpChunks reports whether a chunk dump is enabled by either
// the --dump-chunks flag or LUMINOUS_DUMP_CHUNKS/luminous.yaml.
func (c *Cmd) effectiveDumpChunks() bool {
	return c.DumpChunks || (c.cfg != nil && c.cfg.DumpChunks)
}

// stackMax returns the configured VM frame limit (LUMINOUS_STACK_MAX or
// luminous.yaml's stackMax), or 0 to let vm.New fall back to
// compiler.MaxFrames.
func (c *Cmd) stackMax() int {
	if c.cfg == nil {
		return 0
	}
	return c.cfg.StackMax
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

// Validate resolves the command to run, defaulting to repl (no remaining
// args) or run (a single path argument), per spec.md §6's CLI grammar
// `<interpreter> [path]`.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	commands := buildCmds(c)

	cmdName := ""
	rest := c.args
	if len(c.args) > 0 {
		if _, ok := commands[strings.ToLower(c.args[0])]; ok {
			cmdName = strings.ToLower(c.args[0])
			rest = c.args[1:]
		}
	}
	if cmdName == "" {
		if len(rest) == 0 {
			cmdName = "repl"
		} else {
			cmdName = "run"
		}
	}

	fn := commands[cmdName]
	if fn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	if (cmdName == "tokenize" || cmdName == "disassemble" || cmdName == "run") && len(rest) == 0 {
		return fmt.Errorf("%s: a file path is required", cmdName)
	}

	c.args = rest
	c.cmdFn = fn
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	if c.cmdFn == nil {
		fmt.Fprintln(stdio.Stderr, errors.New("no command resolved"))
		return mainer.Failure
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.Failure
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.Failure
	}
	c.cfg = cfg

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args); err != nil {
		// each command takes care of printing its own errors
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds mirrors the teacher's reflection-based dispatch table: any
// exported method shaped like func(*Cmd, context.Context, mainer.Stdio,
// []string) error becomes a command keyed by its lower-cased name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
