// Command ead (Exists-A-Decomposition) is a thin driver over the CAD
// engine: parse a textual polynomial, isolate the real roots of a
// univariate one, or decide satisfiability of a conjunction of sign
// constraints and print a witness point. It never logs from a library
// package — only this driver reports fatal errors and renders output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ead/ead/cad"
	"github.com/ead/ead/expr"
	"github.com/ead/ead/mvpoly"
	"github.com/ead/ead/ran"
)

func usage() {
	fmt.Println(`usage: ead <parse|roots|sat> [options]

Subcommands:
  parse    Parse a polynomial expression and print it back.
           Flags:
             -vars <names>   comma-separated variable order (required)
           Args:
             <expression>

  roots    Isolate the real roots of a univariate polynomial.
           Flags:
             -var <name>     variable name (default "x")
           Args:
             <expression>

  sat      Decide satisfiability of a conjunction of sign constraints
           and print a witness point if one exists.
           Flags:
             -vars <names>                comma-separated variable order (required)
             -timeout <duration>          cancel the search after this long (default: none)
             -prefer-nonroot-samples      settings.prefer_nonroot_samples
             -lowdeg-first                settings.lowdeg_first
             -realrootcount-heuristic     settings.realrootcount_heuristic
             -isolation <default|simple>  settings.isolation_strategy (default "default")
           Args:
             <constraint> [<constraint> ...]
             each constraint is "<expression><op>0" with op one of = < >

Exit codes: 0 success, 1 malformed input, 2 cancelled/timeout, 3 internal invariant violation.`)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "parse":
		os.Exit(runParse(os.Args[2:]))
	case "roots":
		os.Exit(runRoots(os.Args[2:]))
	case "sat":
		os.Exit(runSat(os.Args[2:]))
	default:
		usage()
	}
}

func variableOrder(names string) (expr.VariableOrder, error) {
	fields := strings.Split(names, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return expr.NewVariableOrder(fields...)
}

// exitCode maps an error to the driver's exit code per spec.md §6: a
// typed *cad.EngineError carries its own Kind, anything else (a parse
// or flag-validation error) is malformed input.
func exitCode(err error) int {
	var ee *cad.EngineError
	if errors.As(err, &ee) {
		switch ee.Kind {
		case cad.Cancelled:
			return 2
		case cad.InvariantViolation:
			return 3
		default:
			return 1
		}
	}
	return 1
}

func runParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	vars := fs.String("vars", "", "comma-separated variable order")
	fs.Parse(args)
	if *vars == "" || fs.NArg() != 1 {
		log.Println("parse: -vars and exactly one expression argument are required")
		return 1
	}
	order, err := variableOrder(*vars)
	if err != nil {
		log.Printf("parse: %v", err)
		return 1
	}
	p, err := expr.Parse(fs.Arg(0), order)
	if err != nil {
		log.Printf("parse: %v", err)
		return 1
	}
	out, err := expr.Print(p, order)
	if err != nil {
		log.Printf("parse: %v", err)
		return 1
	}
	fmt.Println(out)
	return 0
}

func runRoots(args []string) int {
	fs := flag.NewFlagSet("roots", flag.ExitOnError)
	varName := fs.String("var", "x", "variable name")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Println("roots: exactly one expression argument is required")
		return 1
	}
	order, err := expr.NewVariableOrder(*varName)
	if err != nil {
		log.Printf("roots: %v", err)
		return 1
	}
	p, err := expr.Parse(fs.Arg(0), order)
	if err != nil {
		log.Printf("roots: %v", err)
		return 1
	}
	up, err := mvpoly.ToUnivar(p)
	if err != nil {
		log.Printf("roots: %v", err)
		return 1
	}
	roots, err := ran.Isolate(up)
	if err != nil {
		log.Printf("roots: %v", err)
		return 1
	}
	if len(roots) == 0 {
		fmt.Println("no real roots")
		return 0
	}
	for _, r := range roots {
		fmt.Println(r.String())
	}
	return 0
}

// parseConstraint splits s on its first top-level "=", "<", or ">"
// into a left-hand expression and a required sign, per the driver's
// "<expression><op>0" convention — none of "=<>" appear anywhere in
// package expr's grammar, so the first occurrence is always the
// comparison operator.
func parseConstraint(s string, order expr.VariableOrder) (cad.Constraint, error) {
	idx := strings.IndexAny(s, "=<>")
	if idx < 0 {
		return cad.Constraint{}, fmt.Errorf("constraint %q has no =, <, or > comparison", s)
	}
	lhs := strings.TrimSpace(s[:idx])
	op := s[idx]
	rhs := strings.TrimSpace(s[idx+1:])
	if rhs != "0" {
		return cad.Constraint{}, fmt.Errorf("constraint %q: right-hand side must be 0", s)
	}
	poly, err := expr.Parse(lhs, order)
	if err != nil {
		return cad.Constraint{}, fmt.Errorf("constraint %q: %w", s, err)
	}
	var sign int
	switch op {
	case '=':
		sign = 0
	case '<':
		sign = -1
	case '>':
		sign = 1
	}
	return cad.Constraint{Poly: poly, Sign: sign}, nil
}

func runSat(args []string) int {
	fs := flag.NewFlagSet("sat", flag.ExitOnError)
	vars := fs.String("vars", "", "comma-separated variable order")
	timeout := fs.Duration("timeout", 0, "cancel the search after this long (0 = no timeout)")
	preferNonroot := fs.Bool("prefer-nonroot-samples", false, "settings.prefer_nonroot_samples")
	lowdegFirst := fs.Bool("lowdeg-first", false, "settings.lowdeg_first")
	realrootHeuristic := fs.Bool("realrootcount-heuristic", false, "settings.realrootcount_heuristic")
	isolation := fs.String("isolation", "default", "isolation strategy: default|simple")
	fs.Parse(args)

	if *vars == "" || fs.NArg() == 0 {
		log.Println("sat: -vars and at least one constraint argument are required")
		return 1
	}
	order, err := variableOrder(*vars)
	if err != nil {
		log.Printf("sat: %v", err)
		return 1
	}

	var strategy cad.IsolationStrategy
	switch *isolation {
	case "default":
		strategy = cad.Default
	case "simple":
		strategy = cad.Simple
	default:
		log.Printf("sat: unknown -isolation %q", *isolation)
		return 1
	}

	constraints := make([]cad.Constraint, fs.NArg())
	for i := 0; i < fs.NArg(); i++ {
		c, err := parseConstraint(fs.Arg(i), order)
		if err != nil {
			log.Printf("sat: %v", err)
			return 1
		}
		constraints[i] = c
	}

	polys := make([]mvpoly.MPoly, len(constraints))
	for i, c := range constraints {
		polys[i] = c.Poly
	}

	settings, err := cad.NewSettings(
		cad.WithPreferNonrootSamples(*preferNonroot),
		cad.WithLowdegFirst(*lowdegFirst),
		cad.WithRealrootcountHeuristic(*realrootHeuristic),
		cad.WithIsolationStrategy(strategy),
	)
	if err != nil {
		log.Printf("sat: %v", err)
		return 1
	}

	engine, err := cad.NewEngine(polys, order.Len(), settings)
	if err != nil {
		log.Printf("sat: %v", err)
		return exitCode(err)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	result, err := engine.Check(ctx, constraints)
	if err != nil {
		log.Printf("sat: %v", err)
		return exitCode(err)
	}

	if result.Outcome == cad.Unsat {
		fmt.Println("unsat")
		return 0
	}
	fmt.Println("sat")
	for i, v := range result.Point {
		name, _ := order.Name(i + 1)
		fmt.Printf("%s = %s\n", name, v.String())
	}
	return 0
}

