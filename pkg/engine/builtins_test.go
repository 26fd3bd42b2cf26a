package engine

import (
	"testing"

	"github.com/brianjo/beanmachine/pkg/graph"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(bernoulli :p 0.5)`,
			expect: `(bernoulli "__kw_p" 0.5)`,
		},
		{
			name:   "multiple keywords",
			input:  `(normal :mean 0 :stddev 1)`,
			expect: `(normal "__kw_mean" 0 "__kw_stddev" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def coin-bias (beta 2 2))`,
			expect: `(def coin_bias (beta 2 2))`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(normal -1 2)`,
			expect: `(normal -1 2)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:std-dev`,
			expect: `"__kw_std-dev"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Evaluation helpers
// ---------------------------------------------------------------------------

// mustEvaluate compiles source and fails the test on any error.
func mustEvaluate(t *testing.T, source string) *graph.Graph {
	t.Helper()
	eng := NewEngine()
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	return g
}

// mustFailEvaluate compiles source and expects non-fatal eval errors.
func mustFailEvaluate(t *testing.T, source string) []EvalError {
	t.Helper()
	eng := NewEngine()
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil graph")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	return evalErrs
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func TestConstBuiltin(t *testing.T) {
	g := mustEvaluate(t, "(const 1.5)")
	if g.Len() != 1 {
		t.Fatalf("expected 1 node, got %d", g.Len())
	}

	n := g.Node(0)
	if n.Op != graph.Constant {
		t.Errorf("node op = %s, want constant", n.Op)
	}
	cd, ok := n.Data.(graph.ConstantData)
	if !ok {
		t.Fatalf("expected ConstantData, got %T", n.Data)
	}
	if cd.Value != 1.5 {
		t.Errorf("constant value = %v, want 1.5", cd.Value)
	}
}

func TestLiteralsLiftToConstants(t *testing.T) {
	g := mustEvaluate(t, "(add 1 2)")
	if g.Len() != 3 {
		t.Fatalf("expected 3 nodes (two lifted constants + add), got %d", g.Len())
	}

	sum := g.Node(2)
	if sum.Op != graph.Add {
		t.Fatalf("node 2 op = %s, want add", sum.Op)
	}
	parents := sum.Parents()
	if len(parents) != 2 || parents[0] != 0 || parents[1] != 1 {
		t.Errorf("add parents = %v, want [0 1]", parents)
	}
	for i, want := range []float64{1, 2} {
		cd, ok := g.Node(graph.NodeID(i)).Data.(graph.ConstantData)
		if !ok || cd.Value != want {
			t.Errorf("node %d = %#v, want constant %v", i, g.Node(graph.NodeID(i)).Data, want)
		}
	}
}

func TestCoinFlipModel(t *testing.T) {
	source := `
; fairness prior and one observed flip
(def coin-bias (beta 2 2))
(def coin (sample coin-bias))
(observe (bernoulli coin) 1)
(query coin)
`
	g := mustEvaluate(t, source)

	// 2 lifted constants + beta + sample + bernoulli + lifted constant +
	// observe + query = 8 nodes
	if g.Len() != 8 {
		t.Fatalf("expected 8 nodes, got %d", g.Len())
	}
	if g.NumQueries() != 1 {
		t.Fatalf("expected 1 query, got %d", g.NumQueries())
	}

	q, ok := g.Query(0)
	if !ok {
		t.Fatal("query 0 not found")
	}
	parents := q.Parents()
	if len(parents) != 1 {
		t.Fatalf("query has %d parents, want 1", len(parents))
	}
	if sampled := g.Node(parents[0]); sampled.Op != graph.Sample {
		t.Errorf("query parent op = %s, want sample", sampled.Op)
	}
}

func TestKeywordArguments(t *testing.T) {
	g := mustEvaluate(t, "(sample (normal :mean 0 :stddev 1))")
	if g.Len() != 4 {
		t.Fatalf("expected 4 nodes, got %d", g.Len())
	}

	dist := g.Node(2)
	if dist.Op != graph.Normal {
		t.Fatalf("node 2 op = %s, want normal", dist.Op)
	}
	parents := dist.Parents()
	if len(parents) != 2 || parents[0] != 0 || parents[1] != 1 {
		t.Errorf("normal parents = %v, want [0 1]", parents)
	}
}

func TestMixedPositionalAndKeyword(t *testing.T) {
	g := mustEvaluate(t, "(sample (normal 0 :stddev 2))")

	dist := g.Node(2)
	if dist.Op != graph.Normal {
		t.Fatalf("node 2 op = %s, want normal", dist.Op)
	}
	mean := g.Node(dist.Parents()[0]).Data.(graph.ConstantData)
	stddev := g.Node(dist.Parents()[1]).Data.(graph.ConstantData)
	if mean.Value != 0 || stddev.Value != 2 {
		t.Errorf("normal(%v, %v), want normal(0, 2)", mean.Value, stddev.Value)
	}
}

func TestVariableReference(t *testing.T) {
	source := `
(def d (normal 0 1))
(def x (sample d))
(query x)
`
	g := mustEvaluate(t, source)
	if g.Len() != 5 {
		t.Fatalf("expected 5 nodes, got %d", g.Len())
	}

	q, ok := g.Query(0)
	if !ok {
		t.Fatal("query 0 not found")
	}
	if sampled := g.Node(q.Parents()[0]); sampled.Op != graph.Sample {
		t.Errorf("query parent op = %s, want sample", sampled.Op)
	}
}

func TestQueryIndicesFollowSourceOrder(t *testing.T) {
	source := `
(def a (sample (beta 2 2)))
(def b (sample (bernoulli a)))
(query a)
(query b)
`
	g := mustEvaluate(t, source)
	if g.NumQueries() != 2 {
		t.Fatalf("expected 2 queries, got %d", g.NumQueries())
	}

	q0, _ := g.Query(0)
	q1, _ := g.Query(1)
	a := g.Node(q0.Parents()[0])
	b := g.Node(q1.Parents()[0])
	if a.Op != graph.Sample || b.Op != graph.Sample {
		t.Fatalf("query parents are %s and %s, want samples", a.Op, b.Op)
	}
	// a was sampled from the beta, which precedes the bernoulli draw.
	if a.Seq >= b.Seq {
		t.Errorf("query 0 parent (%d) should precede query 1 parent (%d)", int(a.Seq), int(b.Seq))
	}
}

func TestMulBuiltin(t *testing.T) {
	g := mustEvaluate(t, "(query (mul (const 3) 4))")

	prod := g.Node(2)
	if prod.Op != graph.Multiply {
		t.Fatalf("node 2 op = %s, want multiply", prod.Op)
	}
	if prod.Type != graph.Real {
		t.Errorf("multiply type = %s, want real", prod.Type)
	}
}

func TestBuiltinArgumentErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"sample with no arguments", "(sample)"},
		{"observe missing value", "(observe (bernoulli 0.5))"},
		{"const with a string", `(const "nope")`},
		{"add with one argument", "(add 1)"},
		{"normal missing stddev", "(normal 0)"},
		{"bernoulli with extra positional", "(bernoulli 0.5 0.6)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			errs := mustFailEvaluate(t, c.source)
			if errs[0].Message == "" {
				t.Error("eval error message should not be empty")
			}
		})
	}
}

func TestCommentsAreIgnored(t *testing.T) {
	source := `
;; a model with comments
(query (const 1)) ; trailing comment
`
	g := mustEvaluate(t, source)
	if g.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", g.Len())
	}
}
