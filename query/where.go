// where.go - WHERE-expression mini-language
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/wilhasse/go-sqlitefile/record"
)

// Expr is a filter: a conjunction of simple column/literal comparisons.
type Expr struct {
	conds []Cond
}

// Cond is one `column op literal` comparison.
type Cond struct {
	Column string
	Op     string // =, !=, <, <=, >, >=
	Lit    record.Value
}

// And builds a filter from explicit conditions (used by the SQL front end).
func And(conds ...Cond) *Expr {
	if len(conds) == 0 {
		return nil
	}
	return &Expr{conds: conds}
}

// whereAST is the participle grammar: term ( AND term )*.
type whereAST struct {
	First *termAST   `parser:"@@"`
	Rest  []*termAST `parser:"( \"AND\" @@ )*"`
}

type termAST struct {
	Column string     `parser:"@Ident"`
	Op     string     `parser:"@Op"`
	Value  literalAST `parser:"@@"`
}

type literalAST struct {
	Str   *string `parser:"  @String"`
	Float *string `parser:"| @Float"`
	Int   *string `parser:"| @Int"`
	Null  bool    `parser:"| @\"NULL\""`
}

var whereLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Float", Pattern: `[-+]?\d+\.\d*(?:[eE][-+]?\d+)?`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Op", Pattern: `<>|!=|<=|>=|=|<|>`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var whereParser = participle.MustBuild[whereAST](
	participle.Lexer(whereLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

// ParseWhere parses a filter expression such as
//
//	color = 'Yellow' AND weight >= 140
func ParseWhere(s string) (*Expr, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	ast, err := whereParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	terms := append([]*termAST{ast.First}, ast.Rest...)
	conds := make([]Cond, 0, len(terms))
	for _, t := range terms {
		lit, err := t.Value.value()
		if err != nil {
			return nil, err
		}
		conds = append(conds, Cond{Column: t.Column, Op: normalizeOp(t.Op), Lit: lit})
	}
	return &Expr{conds: conds}, nil
}

func (l literalAST) value() (record.Value, error) {
	switch {
	case l.Str != nil:
		s := *l.Str
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
		return record.Text(s), nil
	case l.Float != nil:
		f, err := strconv.ParseFloat(*l.Float, 64)
		if err != nil {
			return record.Null(), fmt.Errorf("bad number %q: %w", *l.Float, err)
		}
		return record.Float(f), nil
	case l.Int != nil:
		n, err := strconv.ParseInt(*l.Int, 10, 64)
		if err != nil {
			return record.Null(), fmt.Errorf("bad number %q: %w", *l.Int, err)
		}
		return record.Integer(n), nil
	}
	return record.Null(), nil
}

func normalizeOp(op string) string {
	if op == "<>" {
		return "!="
	}
	return op
}

// Columns returns the column names the filter references.
func (e *Expr) Columns() []string {
	out := make([]string, len(e.conds))
	for i, c := range e.conds {
		out[i] = c.Column
	}
	return out
}

// Eval applies the filter to a row; resolve maps a column name to its
// value. Every condition must hold.
func (e *Expr) Eval(resolve func(name string) (record.Value, bool)) (bool, error) {
	if e == nil {
		return true, nil
	}
	for _, c := range e.conds {
		v, ok := resolve(c.Column)
		if !ok {
			return false, fmt.Errorf("no such column: %s", c.Column)
		}
		if !c.matches(v) {
			return false, nil
		}
	}
	return true, nil
}

// matches compares a row value against the condition's literal. NULL
// literals act as IS / IS NOT; otherwise a NULL row value matches nothing.
func (c Cond) matches(v record.Value) bool {
	if c.Lit.IsNull() {
		switch c.Op {
		case "=":
			return v.IsNull()
		case "!=":
			return !v.IsNull()
		}
		return false
	}
	if v.IsNull() {
		return false
	}
	cmp, comparable := compare(v, c.Lit)
	if !comparable {
		return c.Op == "!="
	}
	switch c.Op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// compare orders two non-NULL values when they share a comparable class:
// numbers against numbers, text against text, blobs against blobs.
func compare(a, b record.Value) (int, bool) {
	if isNumeric(a) && isNumeric(b) {
		if a.Type == record.TypeInteger && b.Type == record.TypeInteger {
			return compareInt(a.Int, b.Int), true
		}
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	if a.Type == record.TypeText && b.Type == record.TypeText {
		return strings.Compare(a.Text, b.Text), true
	}
	if a.Type == record.TypeBlob && b.Type == record.TypeBlob {
		return strings.Compare(string(a.Blob), string(b.Blob)), true
	}
	return 0, false
}

func isNumeric(v record.Value) bool {
	return v.Type == record.TypeInteger || v.Type == record.TypeFloat
}

func asFloat(v record.Value) float64 {
	if v.Type == record.TypeInteger {
		return float64(v.Int)
	}
	return v.Float
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
