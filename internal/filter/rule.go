// Package filter turns raw request values into typed, resolved filter values
// according to per-field constraint declarations.
//
// A declaration is either a pipe grammar ("type:int|nullable"), an ordered
// list of rules, or a direct transform. Rules are applied in declaration
// order; the resolved values are collected into an ordered Output.
package filter

import "strings"

// TransformFunc is a callable constraint argument.
type TransformFunc func(value any) any

type argKind uint8

const (
	argFlag argKind = iota
	argText
	argList
	argFunc
	argKeyedFunc
)

// Arg is the argument of a rule: a flag, unparsed text, a token list or a
// transform. Text is split into tokens by the rule that consumes it.
type Arg struct {
	kind argKind
	flag bool
	text string
	list []string
	fn   TransformFunc
}

func FlagArg(v bool) Arg           { return Arg{kind: argFlag, flag: v} }
func TextArg(s string) Arg         { return Arg{kind: argText, text: s} }
func ListArg(items ...string) Arg  { return Arg{kind: argList, list: items} }
func FuncArg(fn TransformFunc) Arg { return Arg{kind: argFunc, fn: fn} }

// AliasTo is the structured alias argument with a callable modifier:
// the transformed value is written under key.
func AliasTo(key string, fn TransformFunc) Arg {
	return Arg{kind: argKeyedFunc, list: []string{key}, fn: fn}
}

// Tokens returns the argument as a token list. Flags and funcs have none.
func (a Arg) Tokens() []string {
	switch a.kind {
	case argText:
		return splitNonEmpty(a.text, ",")
	case argList, argKeyedFunc:
		out := make([]string, 0, len(a.list))
		for _, s := range a.list {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// truthy mirrors how flag rules are read: "nullable:0" is off, "nullable" is on.
func (a Arg) truthy() bool {
	switch a.kind {
	case argFlag:
		return a.flag
	case argText:
		return a.text != "" && a.text != "0"
	case argList:
		return len(a.list) > 0
	}
	return a.fn != nil
}

// RuleKind tags the rules the engine knows about.
type RuleKind uint8

const (
	UnknownRule RuleKind = iota
	TypeRule
	AliasRule
	NullableRule
	ArrayRule
)

func (k RuleKind) String() string {
	switch k {
	case TypeRule:
		return "type"
	case AliasRule:
		return "alias"
	case NullableRule:
		return "nullable"
	case ArrayRule:
		return "array"
	}
	return "unknown"
}

// Rule is one named constraint of a field.
type Rule struct {
	Name string
	Arg  Arg
}

func (r Rule) Kind() RuleKind {
	switch strings.ToLower(r.Name) {
	case "type":
		return TypeRule
	case "alias":
		return AliasRule
	case "nullable":
		return NullableRule
	case "array":
		return ArrayRule
	}
	return UnknownRule
}

// Spec is a field declaration: Grammar, Rules or Direct. A nil Spec means
// the field has no constraints.
type Spec interface {
	isSpec()
}

// Grammar is the pipe-delimited form, e.g. "type:User,email|nullable".
type Grammar string

// Rules is the structured form; order is evaluation order.
type Rules []Rule

// Direct replaces the whole rule pipeline with a single transform.
type Direct TransformFunc

func (Grammar) isSpec() {}
func (Rules) isSpec()   {}
func (Direct) isSpec()  {}

// With sets a rule, replacing an existing rule of the same name in place.
func (rs Rules) With(name string, arg Arg) Rules {
	for i := range rs {
		if strings.EqualFold(rs[i].Name, name) {
			rs[i].Arg = arg
			return rs
		}
	}
	return append(rs, Rule{Name: name, Arg: arg})
}

func (rs Rules) find(kind RuleKind) (Arg, bool) {
	for _, r := range rs {
		if r.Kind() == kind {
			return r.Arg, true
		}
	}
	return Arg{}, false
}

func (rs Rules) flag(kind RuleKind) bool {
	arg, ok := rs.find(kind)
	return ok && arg.truthy()
}

func (rs Rules) nullable() bool { return rs.flag(NullableRule) }
func (rs Rules) isArray() bool  { return rs.flag(ArrayRule) }

// Field is one declared filterable field.
type Field struct {
	Name string
	Spec Spec
}
