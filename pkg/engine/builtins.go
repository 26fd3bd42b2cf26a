package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/brianjo/beanmachine/pkg/graph"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms model source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: coin-bias -> coin_bias
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Node handles
// ---------------------------------------------------------------------------

// sexpNode wraps a graph.NodeID so builtins can pass node references
// through the zygomys environment.
type sexpNode struct {
	id graph.NodeID
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(node %d)", int(n.id))
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value is kept as a flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// nodeArg resolves a builtin argument to a node id: node handles pass
// through unchanged, numeric literals are lifted into fresh constant
// nodes.
func nodeArg(f *graph.Factory, s zygo.Sexp) (graph.NodeID, error) {
	switch v := s.(type) {
	case *sexpNode:
		return v.id, nil
	case *zygo.SexpInt:
		return f.AddConstant(float64(v.Val)), nil
	case *zygo.SexpFloat:
		return f.AddConstant(v.Val), nil
	}
	return 0, fmt.Errorf("expected node or number, got %T (%s)", s, s.SexpString(nil))
}

// distParent resolves one distribution parameter, by keyword name if
// given and by positional index otherwise, and lifts it into the graph.
func distParent(f *graph.Factory, form string, pa kwArgs, pos int, name string) (graph.NodeID, error) {
	v, ok := pa.kw[name]
	if !ok {
		if pos >= len(pa.positional) {
			return 0, fmt.Errorf("%s: missing %s", form, name)
		}
		v = pa.positional[pos]
	}
	id, err := nodeArg(f, v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", form, name, err)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the model DSL builtins into a zygomys
// environment. The builtins append nodes to the provided factory; the
// engine builds and validates the factory once evaluation finishes.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, f *graph.Factory) {

	// -----------------------------------------------------------------------
	// (const 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("const", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("const requires exactly 1 argument, got %d", len(args))
		}
		v, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("const: %w", err)
		}
		return &sexpNode{id: f.AddConstant(v)}, nil
	})

	// -----------------------------------------------------------------------
	// (add x y): arguments are node references or numeric literals
	// -----------------------------------------------------------------------
	env.AddFunction("add", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("add requires exactly 2 arguments, got %d", len(args))
		}
		a, err := nodeArg(f, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add: %w", err)
		}
		b, err := nodeArg(f, args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add: %w", err)
		}
		id, err := f.AddOperator(graph.Add, []graph.NodeID{a, b})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add: %w", err)
		}
		return &sexpNode{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (mul x y)
	// -----------------------------------------------------------------------
	env.AddFunction("mul", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("mul requires exactly 2 arguments, got %d", len(args))
		}
		a, err := nodeArg(f, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mul: %w", err)
		}
		b, err := nodeArg(f, args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mul: %w", err)
		}
		id, err := f.AddOperator(graph.Multiply, []graph.NodeID{a, b})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mul: %w", err)
		}
		return &sexpNode{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (normal 0 1)  or  (normal :mean 0 :stddev 1)
	// -----------------------------------------------------------------------
	env.AddFunction("normal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 2 {
			return zygo.SexpNull, fmt.Errorf("normal takes 2 parameters, got %d positional", len(pa.positional))
		}
		mean, err := distParent(f, "normal", pa, 0, "mean")
		if err != nil {
			return zygo.SexpNull, err
		}
		stddev, err := distParent(f, "normal", pa, 1, "stddev")
		if err != nil {
			return zygo.SexpNull, err
		}
		id, err := f.AddOperator(graph.Normal, []graph.NodeID{mean, stddev})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("normal: %w", err)
		}
		return &sexpNode{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (beta 2 2)  or  (beta :alpha 2 :beta 2)
	// -----------------------------------------------------------------------
	env.AddFunction("beta", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 2 {
			return zygo.SexpNull, fmt.Errorf("beta takes 2 parameters, got %d positional", len(pa.positional))
		}
		alpha, err := distParent(f, "beta", pa, 0, "alpha")
		if err != nil {
			return zygo.SexpNull, err
		}
		beta, err := distParent(f, "beta", pa, 1, "beta")
		if err != nil {
			return zygo.SexpNull, err
		}
		id, err := f.AddOperator(graph.Beta, []graph.NodeID{alpha, beta})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("beta: %w", err)
		}
		return &sexpNode{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (bernoulli 0.5)  or  (bernoulli :p 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("bernoulli", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 1 {
			return zygo.SexpNull, fmt.Errorf("bernoulli takes 1 parameter, got %d positional", len(pa.positional))
		}
		p, err := distParent(f, "bernoulli", pa, 0, "p")
		if err != nil {
			return zygo.SexpNull, err
		}
		id, err := f.AddOperator(graph.Bernoulli, []graph.NodeID{p})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bernoulli: %w", err)
		}
		return &sexpNode{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (sample d)
	// -----------------------------------------------------------------------
	env.AddFunction("sample", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sample requires exactly 1 argument, got %d", len(args))
		}
		d, err := nodeArg(f, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sample: %w", err)
		}
		id, err := f.AddOperator(graph.Sample, []graph.NodeID{d})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sample: %w", err)
		}
		return &sexpNode{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (observe d 0.5): bind an observed value to a distribution
	// -----------------------------------------------------------------------
	env.AddFunction("observe", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("observe requires a distribution and a value, got %d arguments", len(args))
		}
		d, err := nodeArg(f, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("observe: distribution: %w", err)
		}
		v, err := nodeArg(f, args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("observe: value: %w", err)
		}
		id, err := f.AddOperator(graph.Observe, []graph.NodeID{d, v})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("observe: %w", err)
		}
		return &sexpNode{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (query x): mark a value for extraction; indices are assigned in
	// source order
	// -----------------------------------------------------------------------
	env.AddFunction("query", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("query requires exactly 1 argument, got %d", len(args))
		}
		p, err := nodeArg(f, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("query: %w", err)
		}
		id, err := f.AddQuery(p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("query: %w", err)
		}
		return &sexpNode{id: id}, nil
	})
}
