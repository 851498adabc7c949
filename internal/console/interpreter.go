package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// DefaultPrompt is shown before each line when the console is interactive.
const DefaultPrompt = "(hbnb) "

// Housekeeping commands.
const (
	cmdQuit  = "quit"
	cmdEOF   = "EOF"
	cmdHelp  = "help"
	cmdReset = "reset"
)

// clearScreen is the ANSI sequence that homes the cursor and clears the
// terminal.
const clearScreen = "\033[H\033[2J"

// operation binds an operation name to its argument requirements and
// handler.
type operation struct {
	req  Requirements
	run  func(in *Interpreter, cmd Command) error
	help string
}

var operations = map[string]operation{
	OpCreate: {
		req:  Requirements{},
		run:  (*Interpreter).doCreate,
		help: "Creates a new instance of <class>, saves it, and prints its id.",
	},
	OpShow: {
		req:  Requirements{ID: true},
		run:  (*Interpreter).doShow,
		help: "Prints the string representation of <class> <id>.",
	},
	OpAll: {
		req:  Requirements{TypeOptional: true},
		run:  (*Interpreter).doAll,
		help: "Prints every instance, or every instance of [class].",
	},
	OpCount: {
		req:  Requirements{AllowAll: true},
		run:  (*Interpreter).doCount,
		help: "Prints the number of instances of <class>, or of every class with \"all\".",
	},
	OpUpdate: {
		req:  Requirements{ID: true, AttrName: true, AttrValue: true},
		run:  (*Interpreter).doUpdate,
		help: "Sets one attribute on <class> <id>: update <class> <id> <name> <value> | {json}.",
	},
	OpDestroy: {
		req:  Requirements{ID: true},
		run:  (*Interpreter).doDestroy,
		help: "Deletes <class> <id> and saves the change.",
	},
}

var housekeepingHelp = map[string]string{
	cmdQuit:  "Quit command to exit the program.",
	cmdEOF:   "EOF signal to exit the program.",
	cmdHelp:  "List available commands with \"help\" or detailed help with \"help <command>\".",
	cmdReset: "Clears the console screen.",
}

// Interpreter reads command lines, validates them, and applies them to a
// store. It is not safe for concurrent use.
type Interpreter struct {
	store  *storage.Store
	out    io.Writer
	logger *zap.Logger
	prompt string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets where command output and diagnostics are written.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithLogger sets the logger for storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithPrompt sets the prompt printed before each line read by Run.
func WithPrompt(p string) Option {
	return func(in *Interpreter) { in.prompt = p }
}

// New returns an interpreter over store writing to stdout with no prompt.
func New(store *storage.Store, opts ...Option) *Interpreter {
	in := &Interpreter{
		store:  store,
		out:    os.Stdout,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run reads lines from r until quit or end of input. End of input prints
// a single newline.
func (in *Interpreter) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if in.prompt != "" {
			fmt.Fprint(in.out, in.prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			in.println("")
			return nil
		}
		if in.Execute(scanner.Text()) {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the console should
// stop.
func (in *Interpreter) Execute(line string) (stop bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	inv, matched, err := ParseMethodCall(line)
	if matched {
		if err != nil {
			in.report(err)
			return false
		}
		in.dispatch(inv)
		return false
	}

	inv = ParseKeyword(line)
	switch inv.Op {
	case cmdQuit:
		return true
	case cmdEOF:
		in.println("")
		return true
	case cmdHelp:
		in.help(inv.Args)
		return false
	case cmdReset:
		fmt.Fprint(in.out, clearScreen)
		return false
	}
	if _, ok := operations[inv.Op]; !ok {
		in.println(unknownSyntax(line))
		return false
	}
	in.dispatch(inv)
	return false
}

// dispatch validates the invocation's arguments and runs its handler.
// Validation completes before any mutation.
func (in *Interpreter) dispatch(inv Invocation) {
	op, ok := operations[inv.Op]
	if !ok {
		in.report(types.ErrUnrecognizedOperation)
		return
	}
	cmd, err := Validate(inv.Args, op.req)
	if err != nil {
		in.report(err)
		return
	}
	if err := op.run(in, cmd); err != nil {
		in.report(err)
	}
}

// report prints the diagnostic for a command error, or logs anything else.
func (in *Interpreter) report(err error) {
	if msg := Diagnostic(err); msg != "" {
		in.println(msg)
		return
	}
	in.logger.Error("command failed", zap.Error(err))
}

func (in *Interpreter) println(s string) {
	fmt.Fprintln(in.out, s)
}

func (in *Interpreter) doCreate(cmd Command) error {
	e, err := in.store.Create(cmd.Kind)
	in.println(e.ID())
	return err
}

func (in *Interpreter) doShow(cmd Command) error {
	e, err := in.store.Lookup(cmd.Kind, cmd.ID)
	if err != nil {
		return err
	}
	in.println(e.String())
	return nil
}

func (in *Interpreter) doAll(cmd Command) error {
	var items []string
	for _, e := range in.store.All() {
		if cmd.Kind == "" || e.Kind() == cmd.Kind {
			items = append(items, `"`+e.String()+`"`)
		}
	}
	in.println("[" + strings.Join(items, ", ") + "]")
	return nil
}

func (in *Interpreter) doCount(cmd Command) error {
	in.println(strconv.Itoa(in.store.Count(cmd.Kind)))
	return nil
}

func (in *Interpreter) doUpdate(cmd Command) error {
	e, err := in.store.Lookup(cmd.Kind, cmd.ID)
	if err != nil {
		return err
	}
	if err := e.Set(cmd.AttrName, types.StringValue(cmd.AttrValue)); err != nil {
		if !errors.Is(err, types.ErrImmutableField) {
			return err
		}
		in.logger.Debug("ignored update of reserved field", zap.String("field", cmd.AttrName))
	}
	return e.Save()
}

func (in *Interpreter) doDestroy(cmd Command) error {
	return in.store.Delete(cmd.Kind, cmd.ID)
}

// help lists the commands, or describes one.
func (in *Interpreter) help(topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		names := make([]string, 0, len(operations)+len(housekeepingHelp))
		for name := range operations {
			names = append(names, name)
		}
		for name := range housekeepingHelp {
			names = append(names, name)
		}
		sort.Strings(names)
		in.println("")
		in.println("Documented commands (type help <topic>):")
		in.println(strings.Repeat("=", 40))
		in.println(strings.Join(names, "  "))
		in.println("")
		return
	}
	if op, ok := operations[topic]; ok {
		in.println(op.help)
		return
	}
	if text, ok := housekeepingHelp[topic]; ok {
		in.println(text)
		return
	}
	in.println("*** No help on " + topic)
}
