// sql.go - Lowering of SELECT statements onto the executor
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/wilhasse/go-sqlitefile/record"
)

// ExecSQL runs a SELECT statement of the supported subset: a column list,
// `*`, or COUNT(*); a single FROM table; an optional WHERE conjunction of
// simple comparisons; an optional LIMIT. Anything else is rejected.
func (e *Executor) ExecSQL(stmt string) (*Result, error) {
	parsed, err := sqlparser.Parse(stmt)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}
	sel, ok := parsed.(*sqlparser.Select)
	if !ok {
		return nil, fmt.Errorf("only SELECT statements are supported")
	}

	table, err := selectTable(sel)
	if err != nil {
		return nil, err
	}
	where, err := lowerWhere(sel.Where)
	if err != nil {
		return nil, err
	}
	limit, err := lowerLimit(sel.Limit)
	if err != nil {
		return nil, err
	}

	cols, countStar, err := lowerProjection(sel.SelectExprs)
	if err != nil {
		return nil, err
	}
	if countStar {
		// A LIMIT applies to the single aggregate row, never to the rows
		// being counted.
		var n int64
		if where == nil {
			n, err = e.Count(table)
			if err != nil {
				return nil, err
			}
		} else {
			res, err := e.Select(table, nil, where, 0)
			if err != nil {
				return nil, err
			}
			n = int64(len(res.Rows))
		}
		return &Result{Columns: []string{"count(*)"}, Rows: [][]record.Value{{record.Integer(n)}}}, nil
	}

	return e.Select(table, cols, where, limit)
}

func selectTable(sel *sqlparser.Select) (string, error) {
	if len(sel.From) != 1 {
		return "", fmt.Errorf("exactly one FROM table is supported")
	}
	aliased, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", fmt.Errorf("joins are not supported")
	}
	name, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return "", fmt.Errorf("subqueries are not supported")
	}
	return name.Name.String(), nil
}

func lowerProjection(exprs sqlparser.SelectExprs) ([]string, bool, error) {
	var cols []string
	for _, se := range exprs {
		switch expr := se.(type) {
		case *sqlparser.StarExpr:
			return nil, false, nil
		case *sqlparser.AliasedExpr:
			switch inner := expr.Expr.(type) {
			case *sqlparser.ColName:
				cols = append(cols, inner.Name.String())
			case *sqlparser.FuncExpr:
				if strings.EqualFold(inner.Name.String(), "count") {
					return nil, true, nil
				}
				return nil, false, fmt.Errorf("unsupported function: %s", inner.Name.String())
			default:
				return nil, false, fmt.Errorf("unsupported select expression: %s", sqlparser.String(expr))
			}
		default:
			return nil, false, fmt.Errorf("unsupported select expression: %s", sqlparser.String(se))
		}
	}
	return cols, false, nil
}

// lowerWhere flattens a WHERE tree of AND-joined comparisons into filter
// conditions.
func lowerWhere(w *sqlparser.Where) (*Expr, error) {
	if w == nil || w.Expr == nil {
		return nil, nil
	}
	conds, err := lowerCond(w.Expr)
	if err != nil {
		return nil, err
	}
	return And(conds...), nil
}

func lowerCond(expr sqlparser.Expr) ([]Cond, error) {
	switch node := expr.(type) {
	case *sqlparser.AndExpr:
		left, err := lowerCond(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := lowerCond(node.Right)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case *sqlparser.ParenExpr:
		return lowerCond(node.Expr)
	case *sqlparser.ComparisonExpr:
		col, ok := node.Left.(*sqlparser.ColName)
		if !ok {
			return nil, fmt.Errorf("unsupported comparison: %s", sqlparser.String(node))
		}
		lit, err := lowerLiteral(node.Right)
		if err != nil {
			return nil, err
		}
		op := node.Operator
		if op == sqlparser.NullSafeEqualStr {
			op = "="
		}
		switch op {
		case "=", "!=", "<>", "<", "<=", ">", ">=":
			return []Cond{{Column: col.Name.String(), Op: normalizeOp(op), Lit: lit}}, nil
		}
		return nil, fmt.Errorf("unsupported operator: %s", node.Operator)
	case *sqlparser.IsExpr:
		col, ok := node.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, fmt.Errorf("unsupported IS expression: %s", sqlparser.String(node))
		}
		switch node.Operator {
		case sqlparser.IsNullStr:
			return []Cond{{Column: col.Name.String(), Op: "=", Lit: record.Null()}}, nil
		case sqlparser.IsNotNullStr:
			return []Cond{{Column: col.Name.String(), Op: "!=", Lit: record.Null()}}, nil
		}
		return nil, fmt.Errorf("unsupported IS operator: %s", node.Operator)
	}
	return nil, fmt.Errorf("unsupported WHERE clause: %s", sqlparser.String(expr))
}

func lowerLiteral(expr sqlparser.Expr) (record.Value, error) {
	switch node := expr.(type) {
	case *sqlparser.SQLVal:
		switch node.Type {
		case sqlparser.StrVal:
			return record.Text(string(node.Val)), nil
		case sqlparser.IntVal:
			n, err := strconv.ParseInt(string(node.Val), 10, 64)
			if err != nil {
				return record.Null(), fmt.Errorf("bad integer %q: %w", node.Val, err)
			}
			return record.Integer(n), nil
		case sqlparser.FloatVal:
			f, err := strconv.ParseFloat(string(node.Val), 64)
			if err != nil {
				return record.Null(), fmt.Errorf("bad float %q: %w", node.Val, err)
			}
			return record.Float(f), nil
		}
		return record.Null(), fmt.Errorf("unsupported literal: %s", sqlparser.String(node))
	case *sqlparser.NullVal:
		return record.Null(), nil
	}
	return record.Null(), fmt.Errorf("unsupported literal: %s", sqlparser.String(expr))
}

func lowerLimit(l *sqlparser.Limit) (int, error) {
	if l == nil || l.Rowcount == nil {
		return 0, nil
	}
	val, ok := l.Rowcount.(*sqlparser.SQLVal)
	if !ok || val.Type != sqlparser.IntVal {
		return 0, fmt.Errorf("unsupported LIMIT: %s", sqlparser.String(l))
	}
	n, err := strconv.Atoi(string(val.Val))
	if err != nil {
		return 0, err
	}
	return n, nil
}
