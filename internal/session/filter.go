package session

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter selects records with a boolean expression.
//
// The environment exposes `index` (the identity), `record` (the decoded value)
// and, when the record is an object, each top-level key as a variable:
//
//	status == "failed" && len(tags) > 0
//	index >= 100 && record.score < 0.5
type Filter struct {
	src  string
	prog *vm.Program
}

// CompileFilter parses src. An empty src matches everything.
func CompileFilter(src string) (*Filter, error) {
	if src == "" {
		return nil, nil
	}
	prog, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", src, err)
	}
	return &Filter{src: src, prog: prog}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.src
}

// Match evaluates the filter against one record. A nil filter matches.
func (f *Filter) Match(id Identity, v json.RawMessage) (bool, error) {
	if f == nil {
		return true, nil
	}
	var decoded any
	if err := json.Unmarshal(v, &decoded); err != nil {
		return false, err
	}
	env := map[string]any{}
	if obj, ok := decoded.(map[string]any); ok {
		for k, val := range obj {
			env[k] = val
		}
	}
	env["index"] = int(id)
	env["record"] = decoded
	out, err := expr.Run(f.prog, env)
	if err != nil {
		return false, fmt.Errorf("filter %q on record %d: %w", f.src, id, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q must evaluate to a boolean, got %T", f.src, out)
	}
	return b, nil
}

// FilterPreviews keeps the entries matched by f.
func FilterPreviews(entries []SelectionEntry, f *Filter) ([]SelectionEntry, error) {
	if f == nil {
		return entries, nil
	}
	out := entries[:0:0]
	for _, e := range entries {
		ok, err := f.Match(e.Identity, e.Value)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}
