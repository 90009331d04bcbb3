package cad

import (
	"context"
	"math/big"
	"sort"

	"github.com/ead/ead/mvpoly"
	"github.com/ead/ead/ran"
)

// Outcome reports whether Check found a satisfying point.
type Outcome int

const (
	Unsat Outcome = iota
	Sat
)

func (o Outcome) String() string {
	if o == Sat {
		return "Sat"
	}
	return "Unsat"
}

// Constraint is a single sign condition on a polynomial: Sign must be
// -1, 0, or +1, matching the sign the polynomial must take at the
// witness point.
type Constraint struct {
	Poly mvpoly.MPoly
	Sign int
}

// Result is Check's outcome: a witness point when Outcome is Sat.
type Result struct {
	Outcome Outcome
	Point   []ran.RAN
}

type nodeState int

const (
	Unvisited nodeState = iota
	Expanding
	PartiallyExplored
	FullyExplored
)

func (s nodeState) String() string {
	switch s {
	case Unvisited:
		return "Unvisited"
	case Expanding:
		return "Expanding"
	case PartiallyExplored:
		return "PartiallyExplored"
	case FullyExplored:
		return "FullyExplored"
	default:
		return "Unknown"
	}
}

// node is one entry in the sample tree: depth d holds a candidate
// value for x_d, reached by the path of samples from the root.
type node struct {
	depth    int
	sample   ran.RAN
	state    nodeState
	children []*node
}

// Engine holds an elimination tower over a fixed variable order and
// drives constraint-guided DFS sample search over it (spec.md §4.G).
// Sample-tree ownership is exclusive to one Engine and the type is not
// safe for concurrent use, matching the single-threaded cooperative
// model spec.md §5 describes.
type Engine struct {
	polys    []mvpoly.MPoly
	n        int
	tower    EliminationTower
	settings Settings
	root     *node
}

// NewEngine constructs an engine over nvars variables with the given
// base polynomial set (each of native arity 1..nvars) and settings.
func NewEngine(polys []mvpoly.MPoly, nvars int, settings Settings) (*Engine, error) {
	if nvars < 1 {
		return nil, malformedf("NewEngine requires nvars >= 1, got %d", nvars)
	}
	if len(polys) == 0 {
		return nil, malformedf("NewEngine requires a non-empty polynomial set")
	}
	for i, p := range polys {
		if p.NVars() < 1 || p.NVars() > nvars {
			return nil, malformedf("NewEngine polynomial %d has arity %d, want 1..%d", i, p.NVars(), nvars)
		}
		if p.IsZero() {
			return nil, malformedf("NewEngine polynomial %d is the zero polynomial", i)
		}
	}
	tower, err := Project(polys, nvars)
	if err != nil {
		return nil, err
	}
	return &Engine{
		polys:    append([]mvpoly.MPoly{}, polys...),
		n:        nvars,
		tower:    tower,
		settings: settings,
		root:     &node{depth: 0, state: Unvisited},
	}, nil
}

// EliminationSets returns the current elimination tower, ES[0..n-1].
func (e *Engine) EliminationSets() EliminationTower { return e.tower }

// IsComplete reports whether the last Check call's search fully
// explored the sample tree (every node in it is FullyExplored).
func (e *Engine) IsComplete() bool {
	return isSubtreeComplete(e.root)
}

func isSubtreeComplete(nd *node) bool {
	if nd.state != FullyExplored {
		return false
	}
	for _, c := range nd.children {
		if !isSubtreeComplete(c) {
			return false
		}
	}
	return true
}

// Samples returns every distinct sample value currently held anywhere
// in the sample tree, depth-first, root to leaves.
func (e *Engine) Samples() []ran.RAN {
	var out []ran.RAN
	var walk func(nd *node)
	walk = func(nd *node) {
		if nd.depth > 0 {
			out = append(out, nd.sample)
		}
		for _, c := range nd.children {
			walk(c)
		}
	}
	walk(e.root)
	return out
}

// AddPolynomial incorporates p (native arity 1..n) into the base set,
// recomputes the elimination tower, and resets the sample tree.
// Project's level-k tower entry depends only on polynomials of native
// arity <= k+1 (ES[k-1] is derived from ES[k] plus any arity-k members
// directly), so adding a polynomial of native arity m only changes
// tower[0..m-1]. invalidateBelow resets every node at depth < m and
// drops its subtree; the root sits at depth 0 and consumes tower[0],
// so every call resets the root and discards the whole sample tree,
// which the next Check rebuilds (see DESIGN.md).
func (e *Engine) AddPolynomial(p mvpoly.MPoly) error {
	if p.NVars() < 1 || p.NVars() > e.n {
		return malformedf("AddPolynomial: polynomial has arity %d, want 1..%d", p.NVars(), e.n)
	}
	if p.IsZero() {
		return malformedf("AddPolynomial: zero polynomial")
	}
	merged := append(append([]mvpoly.MPoly{}, e.polys...), p)
	tower, err := Project(merged, e.n)
	if err != nil {
		return err
	}
	e.polys = merged
	e.tower = tower
	invalidateBelow(e.root, p.NVars())
	return nil
}

func invalidateBelow(nd *node, m int) {
	if nd.depth < m {
		nd.children = nil
		nd.state = Unvisited
		return
	}
	for _, c := range nd.children {
		invalidateBelow(c, m)
	}
}

// projectionFor applies groebner_preprocess (spec.md §4.F, scoped per
// DESIGN.md's "groebner_preprocess scope" decision to the sub-ideal
// generated by this call's equality constraints only) and returns the
// tower Check should search with. When the setting is off, or no
// constraint in this call is an equality, it returns e.tower unchanged
// without mutating the engine's persisted tower or sample tree.
func (e *Engine) projectionFor(constraints []Constraint) (EliminationTower, error) {
	if !e.settings.GroebnerPreprocess || e.settings.Groebner == nil {
		return e.tower, nil
	}
	var eqPolys []mvpoly.MPoly
	eqKeys := map[string]bool{}
	for _, c := range constraints {
		if c.Sign == 0 {
			eqPolys = append(eqPolys, c.Poly)
			eqKeys[c.Poly.String()] = true
		}
	}
	if len(eqPolys) == 0 {
		return e.tower, nil
	}
	reducedEq, err := e.settings.Groebner.Reduce(eqPolys, Lex)
	if err != nil {
		return nil, invariantf("groebner preprocessing: %v", err)
	}
	combined := make([]mvpoly.MPoly, 0, len(e.polys)+len(reducedEq))
	for _, p := range e.polys {
		if !eqKeys[p.String()] {
			combined = append(combined, p)
		}
	}
	combined = append(combined, reducedEq...)
	return Project(combined, e.n)
}

// Check searches for a full sample point satisfying every constraint,
// reusing and lazily extending the engine's sample tree (spec.md
// §4.G). ctx is polled cooperatively at each node expansion and before
// each candidate is tried; on cancellation Check returns an
// EngineError of Kind Cancelled and leaves the tree's in-progress
// nodes PartiallyExplored, resumable by a later Check call.
func (e *Engine) Check(ctx context.Context, constraints []Constraint) (Result, error) {
	if len(constraints) == 0 {
		return Result{}, malformedf("Check requires at least one constraint")
	}
	for i, c := range constraints {
		if c.Poly.NVars() < 1 || c.Poly.NVars() > e.n {
			return Result{}, malformedf("constraint %d has arity %d, want 1..%d", i, c.Poly.NVars(), e.n)
		}
		if c.Sign < -1 || c.Sign > 1 {
			return Result{}, malformedf("constraint %d has invalid sign %d", i, c.Sign)
		}
	}
	tower, err := e.projectionFor(constraints)
	if err != nil {
		return Result{}, err
	}
	point, ok, err := e.search(ctx, e.root, nil, tower, constraints)
	if err != nil {
		return Result{}, err
	}
	if ok {
		return Result{Outcome: Sat, Point: point}, nil
	}
	return Result{Outcome: Unsat}, nil
}

func (e *Engine) search(ctx context.Context, nd *node, partial []ran.RAN, tower EliminationTower, constraints []Constraint) ([]ran.RAN, bool, error) {
	if err := ctx.Err(); err != nil {
		if nd.state == Unvisited || nd.state == Expanding {
			nd.state = PartiallyExplored
		}
		return nil, false, cancelled(err)
	}
	if nd.state == FullyExplored {
		return nil, false, nil
	}
	nd.state = Expanding

	candidates, err := e.candidatesAt(tower[nd.depth], partial)
	if err != nil {
		return nil, false, err
	}

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			nd.state = PartiallyExplored
			return nil, false, cancelled(err)
		}
		if nd.depth+1 == e.n {
			point := append(append([]ran.RAN{}, partial...), cand)
			sat, err := evalConstraints(point, constraints)
			if err != nil {
				return nil, false, err
			}
			if sat {
				return point, true, nil
			}
			continue
		}
		child := e.childFor(nd, cand)
		newPartial := append(append([]ran.RAN{}, partial...), cand)
		point, ok, err := e.search(ctx, child, newPartial, tower, constraints)
		if err != nil {
			nd.state = PartiallyExplored
			return nil, false, err
		}
		if ok {
			return point, true, nil
		}
	}
	nd.state = FullyExplored
	return nil, false, nil
}

func (e *Engine) childFor(nd *node, cand ran.RAN) *node {
	for _, c := range nd.children {
		cmp, err := ran.Compare(c.sample, cand)
		if err == nil && cmp == 0 {
			return c
		}
	}
	child := &node{depth: nd.depth + 1, sample: cand, state: Unvisited}
	nd.children = append(nd.children, child)
	return child
}

func evalConstraints(point []ran.RAN, constraints []Constraint) (bool, error) {
	for _, c := range constraints {
		v, err := ran.EvalMPolyAt(c.Poly, point[:c.Poly.NVars()])
		if err != nil {
			return false, invariantf("constraint evaluation: %v", err)
		}
		if v.Sign() != c.Sign {
			return false, nil
		}
	}
	return true, nil
}

// candidatesAt gathers, dedups, and orders the candidate samples for
// the variable at depth len(partial)+1: every real root of every
// polynomial in level (substituted at partial), plus one representative
// rational point in each open gap between consecutive roots and in the
// two unbounded gaps (spec.md §4.G step 2-3).
func (e *Engine) candidatesAt(level []mvpoly.MPoly, partial []ran.RAN) ([]ran.RAN, error) {
	ordered := append([]mvpoly.MPoly{}, level...)
	if e.settings.LowdegFirst {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].DegreeTop() < ordered[j].DegreeTop()
		})
	}

	// realrootcount_heuristic (spec.md §4.F): a polynomial contributing
	// zero real roots under the partial sample already contributes
	// nothing to the candidate set below, with or without the flag —
	// this kernel does not additionally short-circuit sibling
	// polynomials or mark the node dead early from that fact alone,
	// since doing so soundly requires tracing a zero-root elimination
	// polynomial back to a specific active constraint's required sign,
	// which only holds in general at the top elimination level. The
	// flag is accepted and validated but has no further effect here;
	// see DESIGN.md.
	var roots []ran.RAN
	for _, p := range ordered {
		rs, err := candidateSamplesAt(p, partial)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			roots = appendDistinct(roots, r)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool {
		cmp, _ := ran.Compare(roots[i], roots[j])
		return cmp < 0
	})

	return e.buildCandidates(roots), nil
}

func appendDistinct(roots []ran.RAN, r ran.RAN) []ran.RAN {
	for _, existing := range roots {
		cmp, err := ran.Compare(existing, r)
		if err == nil && cmp == 0 {
			return roots
		}
	}
	return append(roots, r)
}

// buildCandidates turns a sorted, deduplicated root list into the
// ordered candidate list spec.md §4.G step 2-3 describes: each root,
// plus a rational point in every open gap (including the two
// unbounded ones), ordered non-root-first when prefer_nonroot_samples
// is set. The unbounded gaps use "1 + the largest root magnitude seen"
// as a stand-in for a true Cauchy bound: any point strictly beyond
// every root works equally well as a representative sample of the
// unbounded cell, so a tight bound buys nothing here.
func (e *Engine) buildCandidates(roots []ran.RAN) []ran.RAN {
	if len(roots) == 0 {
		return []ran.RAN{ran.FromRat(big.NewRat(0, 1))}
	}
	eps := big.NewRat(1, 1000)
	margin := unboundedMargin(roots)

	gaps := make([]ran.RAN, 0, len(roots)+1)
	firstApprox := ran.Approximate(roots[0], eps)
	gaps = append(gaps, ran.FromRat(new(big.Rat).Sub(firstApprox, margin)))
	for i := 0; i+1 < len(roots); i++ {
		a := ran.Approximate(roots[i], eps)
		b := ran.Approximate(roots[i+1], eps)
		mid := new(big.Rat).Quo(new(big.Rat).Add(a, b), big.NewRat(2, 1))
		gaps = append(gaps, ran.FromRat(mid))
	}
	lastApprox := ran.Approximate(roots[len(roots)-1], eps)
	gaps = append(gaps, ran.FromRat(new(big.Rat).Add(lastApprox, margin)))

	if e.settings.PreferNonrootSamples {
		out := make([]ran.RAN, 0, len(gaps)+len(roots))
		out = append(out, gaps...)
		out = append(out, roots...)
		return out
	}
	out := make([]ran.RAN, 0, len(gaps)+len(roots))
	for i, r := range roots {
		out = append(out, gaps[i], r)
	}
	out = append(out, gaps[len(gaps)-1])
	return out
}

func unboundedMargin(roots []ran.RAN) *big.Rat {
	eps := big.NewRat(1, 1000)
	margin := big.NewRat(1, 1)
	for _, r := range roots {
		a := ran.Approximate(r, eps)
		abs := new(big.Rat).Abs(a)
		if abs.Cmp(margin) > 0 {
			margin = abs
		}
	}
	return new(big.Rat).Add(margin, big.NewRat(1, 1))
}
