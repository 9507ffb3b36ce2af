package expression

import (
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"mercator-hq/fileformat/pkg/record"
)

const (
	// Binding is the name the current record is exposed under.
	Binding = "instance"

	// Prefix marks a record attribute reference: "$name" reads attribute name.
	Prefix = "$"
)

var (
	// ErrAttributeNotFound indicates an expression references an attribute the
	// record, or a record nested in it, does not expose.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrCallNotAllowed indicates an expression calls something other than len.
	ErrCallNotAllowed = errors.New("call not allowed")
)

// allowedCall is the only function expressions may call.
const allowedCall = "len"

// attributeRef matches "$name" references.
var attributeRef = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// PanicError carries a panic recovered while running an expression.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("expression panicked: %v", e.Value)
}

// Evaluator evaluates restricted field expressions against records.
//
// The language is expr (github.com/expr-lang/expr) with every builtin disabled
// except len: literals, arithmetic, comparisons, boolean logic, member and
// index access, and len(). Any other call, including methods of attribute
// values, is rejected at compile time. Expressions cannot assign, import,
// loop over statements or reach anything outside the bound record.
//
// Member access on nested records is checked before evaluation: reading a
// key a nested record does not have fails with ErrAttributeNotFound instead
// of yielding nil.
//
// Compiled programs are cached by expression text. An Evaluator is safe for
// concurrent use.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*compiled
}

// compiled is a cached program with the constant attribute paths it reads
// from the bound record.
type compiled struct {
	program *vm.Program
	paths   [][]any
}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{
		programs: make(map[string]*compiled),
	}
}

// Rewrite replaces every "$name" reference with an access on the bound record
// and returns the rewritten expression together with the referenced names.
func Rewrite(expression string) (string, []string) {
	matches := attributeRef.FindAllStringSubmatch(expression, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return attributeRef.ReplaceAllString(expression, Binding+".${1}"), names
}

// Evaluate evaluates expression against r. An empty expression yields the
// empty string without evaluation. The result is a string, bool, int,
// float64, nil, or a collection taken from the record.
func (e *Evaluator) Evaluate(expression string, r record.Record) (result any, err error) {
	if strings.TrimSpace(expression) == "" {
		return "", nil
	}

	rewritten, names := Rewrite(expression)

	instance := make(map[string]any, len(names))
	for _, name := range names {
		v, ok := r.Get(name)
		if !ok {
			if name != "id" {
				return nil, fmt.Errorf("%w: %q", ErrAttributeNotFound, name)
			}
			v = r.ID()
		}
		instance[name] = record.Value(v)
	}

	program, err := e.compile(rewritten)
	if err != nil {
		return nil, err
	}
	for _, path := range program.paths {
		if err := checkPath(instance, path); err != nil {
			return nil, err
		}
	}

	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()

	return expr.Run(program.program, map[string]any{Binding: instance})
}

// Check compiles expression without running it, reporting syntax errors and
// calls to functions outside the allowed set.
func (e *Evaluator) Check(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return nil
	}
	rewritten, _ := Rewrite(expression)
	_, err := e.compile(rewritten)
	return err
}

func (e *Evaluator) compile(code string) (*compiled, error) {
	e.mu.RLock()
	c, ok := e.programs[code]
	e.mu.RUnlock()
	if ok {
		return c, nil
	}

	tree, err := parser.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}
	inspect := &inspector{}
	ast.Walk(&tree.Node, inspect)
	if inspect.err != nil {
		return nil, inspect.err
	}

	program, err := expr.Compile(code,
		expr.Env(map[string]any{Binding: map[string]any{}}),
		expr.DisableAllBuiltins(),
		expr.EnableBuiltin("len"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	c = &compiled{program: program, paths: inspect.paths}

	e.mu.Lock()
	e.programs[code] = c
	e.mu.Unlock()

	return c, nil
}

// inspector rejects calls other than len and collects the constant member
// paths below the record binding, e.g. ["party", "vat_code"] for
// instance.party.vat_code and ["fields", 0, "name"] for instance.fields[0].name.
type inspector struct {
	paths [][]any
	seen  map[string]bool
	err   error
}

// Visit implements ast.Visitor.
func (v *inspector) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.BuiltinNode:
		if n.Name != allowedCall {
			v.err = fmt.Errorf("%w: %s()", ErrCallNotAllowed, n.Name)
		}
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); !ok || id.Value != allowedCall {
			v.err = fmt.Errorf("%w: %s", ErrCallNotAllowed, calleeName(n.Callee))
		}
	case *ast.MemberNode:
		if member, ok := n.Property.(*ast.StringNode); ok && n.Method {
			v.err = fmt.Errorf("%w: method %s", ErrCallNotAllowed, member.Value)
			return
		}
		if path, ok := memberPath(n); ok && len(path) > 1 {
			key := joinPath(path)
			if v.seen == nil {
				v.seen = make(map[string]bool)
			}
			if !v.seen[key] {
				v.seen[key] = true
				v.paths = append(v.paths, path)
			}
		}
	}
}

// memberPath returns the properties of a member chain rooted at the record
// binding when every property is a constant string or integer.
func memberPath(n *ast.MemberNode) ([]any, bool) {
	var path []any
	var node ast.Node = n
	for {
		switch t := node.(type) {
		case *ast.MemberNode:
			switch p := t.Property.(type) {
			case *ast.StringNode:
				path = append([]any{p.Value}, path...)
			case *ast.IntegerNode:
				path = append([]any{p.Value}, path...)
			default:
				return nil, false
			}
			node = t.Node
		case *ast.ChainNode:
			node = t.Node
		case *ast.IdentifierNode:
			return path, t.Value == Binding
		default:
			return nil, false
		}
	}
}

func calleeName(n ast.Node) string {
	switch t := n.(type) {
	case *ast.IdentifierNode:
		return t.Value
	case *ast.MemberNode:
		if p, ok := t.Property.(*ast.StringNode); ok {
			return p.Value
		}
	}
	return n.String()
}

// checkPath walks path through the bound attributes and fails on a key that
// a nested record lacks. Walking stops at nil values, out of range indexes
// and values that are neither records nor collections; the evaluator
// reports those itself.
func checkPath(instance map[string]any, path []any) error {
	var current any = instance
	for i, step := range path {
		switch t := current.(type) {
		case map[string]any:
			name, ok := step.(string)
			if !ok {
				return nil
			}
			v, ok := t[name]
			if !ok {
				if i == 0 {
					return nil
				}
				return fmt.Errorf("%w: %q", ErrAttributeNotFound, joinPath(path[:i+1]))
			}
			current = v
		case []any:
			idx, ok := step.(int)
			if !ok || idx < 0 || idx >= len(t) {
				return nil
			}
			current = t[idx]
		default:
			return nil
		}
	}
	return nil
}

func joinPath(path []any) string {
	var b strings.Builder
	for i, step := range path {
		switch s := step.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s)
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		}
	}
	return b.String()
}
