package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"stable/builtins"
	"stable/dispatch"
	"stable/object"
	"stable/trace"
	"stable/typespec"
)

func main() {
	specPath := flag.String("specs", "", "YAML type specification file to load")
	dumpType := flag.String("dump", "", "Dump a type (name, kind, bases, MRO, members)")
	listTypes := flag.Bool("list", false, "List loaded types")
	evalExpr := flag.String("eval", "", "Evaluate an expression (e.g. \"1 + 2.5\")")

	traceEnabled := flag.Bool("trace", false, "Enable construction/resolution tracing")
	traceFilter := flag.String("trace-filter", "", "Trace filter pattern (glob, e.g. 'add' or 'my_*')")

	flag.Parse()

	var filters []string
	if *traceFilter != "" {
		filters = strings.Split(*traceFilter, ",")
	}
	trace.Init(*traceEnabled, filters, os.Stderr)
	if trace.IsEnabled() {
		log.Printf("Tracing enabled (%d filters)", len(filters))
	}

	factory := object.NewFactory()
	types, err := builtins.Register(factory)
	if err != nil {
		log.Fatalf("Failed to register built-in types: %v", err)
	}

	// Specification files refer to native classes by these names.
	classes := typespec.NewClassIndex()
	classes.Register("int64", builtins.ClassInt64)
	classes.Register("bigint", builtins.ClassBigInt)
	classes.Register("float64", builtins.ClassFloat64)
	classes.Register("string", builtins.ClassString)
	classes.Register("bool", builtins.ClassBool)

	if *specPath != "" {
		file, err := typespec.LoadFile(*specPath)
		if err != nil {
			log.Fatalf("Failed to load specifications: %v", err)
		}
		if err := file.Define(factory, classes); err != nil {
			log.Fatalf("Failed to build specified types: %v", err)
		}
		log.Printf("Loaded %d type specifications from %s", len(file.Types), *specPath)
	}

	ev := newEvaluator(factory, types)

	if *listTypes {
		for _, name := range []string{"object", "type", "int", "float", "str", "bool"} {
			t, _ := factory.Lookup(name)
			fmt.Printf("%-12s %s\n", name, describe(t))
		}
		return
	}

	if *dumpType != "" {
		t, ok := factory.Lookup(*dumpType)
		if !ok {
			log.Fatalf("No such type: %s", *dumpType)
		}
		dump(t)
		return
	}

	if *evalExpr != "" {
		ev.evalLine(*evalExpr)
		return
	}

	// No one-shot flag: read expressions from stdin, with a prompt when
	// talking to a person.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		ev.evalLine(line)
	}
}

// dump prints everything the type system knows about one type.
func dump(t *object.Type) {
	fmt.Printf("name:  %s\n", t.Name())
	fmt.Printf("kind:  %s\n", t.Kind())
	fmt.Printf("bases: %s\n", typeNames(t.Bases()))
	fmt.Printf("mro:   %s\n", typeNames(t.MRO()))
	fmt.Printf("members: %s\n", strings.Join(t.Members(), ", "))
	for _, r := range t.Representations() {
		fmt.Printf("representation %d: %v\n", r.Index(), r.Class())
	}
}

func describe(t *object.Type) string {
	if t == nil {
		return "(missing)"
	}
	return fmt.Sprintf("%-12s bases=%s", t.Kind(), typeNames(t.Bases()))
}

func typeNames(ts []*object.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// evaluator evaluates "LIT OP LIT" and "OP LIT" lines through persistent
// call sites, so repeated operators exercise the per-site caches the way a
// compiled program would.
type evaluator struct {
	factory *object.Factory
	types   *builtins.Types
	eng     *dispatch.Engine
	binary  map[string]*dispatch.BinarySite
	unary   map[string]*dispatch.UnarySite
	repr    *dispatch.UnarySite
}

var binaryOps = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "div", "<": "lt",
	"&": "and", "|": "or",
}

var unaryOps = map[string]string{
	"-": "neg", "!": "not", "repr": "repr",
}

func newEvaluator(factory *object.Factory, types *builtins.Types) *evaluator {
	eng := dispatch.New(factory.Registry())
	return &evaluator{
		factory: factory,
		types:   types,
		eng:     eng,
		binary:  make(map[string]*dispatch.BinarySite),
		unary:   make(map[string]*dispatch.UnarySite),
		repr:    eng.UnarySite("repr"),
	}
}

func (ev *evaluator) evalLine(line string) {
	fields := strings.Fields(line)
	var result any
	var err error

	switch {
	case len(fields) == 3:
		op, ok := binaryOps[fields[1]]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown operator: %s\n", fields[1])
			return
		}
		var left, right any
		if left, err = ev.literal(fields[0]); err == nil {
			if right, err = ev.literal(fields[2]); err == nil {
				site := ev.binarySite(op)
				result, err = site.Invoke(left, right)
			}
		}
	case len(fields) == 2:
		op, ok := unaryOps[fields[0]]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown operator: %s\n", fields[0])
			return
		}
		var v any
		if v, err = ev.literal(fields[1]); err == nil {
			site := ev.unarySite(op)
			result, err = site.Invoke(v)
		}
	case len(fields) == 1:
		result, err = ev.literal(fields[0])
	default:
		fmt.Fprintln(os.Stderr, "expected: LIT, OP LIT, or LIT OP LIT")
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	printed, err := ev.repr.Invoke(result)
	if err != nil {
		printed = fmt.Sprintf("%v", result)
	}
	fmt.Println(printed)
}

func (ev *evaluator) binarySite(op string) *dispatch.BinarySite {
	site, ok := ev.binary[op]
	if !ok {
		site = ev.eng.BinarySite(op)
		ev.binary[op] = site
	}
	return site
}

func (ev *evaluator) unarySite(op string) *dispatch.UnarySite {
	site, ok := ev.unary[op]
	if !ok {
		site = ev.eng.UnarySite(op)
		ev.unary[op] = site
	}
	return site
}

// literal parses one operand: integer (small or big), float, quoted
// string, boolean, or the name of a loaded type.
func (ev *evaluator) literal(tok string) (any, error) {
	if tok == "true" {
		return true, nil
	}
	if tok == "false" {
		return false, nil
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n, nil
	}
	if z, ok := new(big.Int).SetString(tok, 10); ok {
		return builtins.MakeInt(z), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, nil
	}
	if strings.HasPrefix(tok, "\"") || strings.HasPrefix(tok, "'") {
		s, err := strconv.Unquote(strings.ReplaceAll(tok, "'", "\""))
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s", tok)
		}
		return s, nil
	}
	if t, ok := ev.factory.Lookup(tok); ok {
		return t, nil
	}
	return nil, fmt.Errorf("cannot parse literal %q", tok)
}
