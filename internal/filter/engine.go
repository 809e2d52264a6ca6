package filter

import (
	"context"
	"fmt"

	"ReqFilter/internal/logger"
	"ReqFilter/internal/store"
)

// outcome of one pipeline step
type outcome uint8

const (
	proceed outcome = iota // keep going with the (possibly replaced) value
	writeTo                // write value under key and stop
	drop                   // contribute nothing and stop
)

type step struct {
	value any
	next  outcome
	key   string
}

type ruleHandler func(ctx context.Context, value any, arg Arg, rules Rules) (step, error)

// Engine resolves declared fields against a ValueProvider.
type Engine struct {
	values     ValueProvider
	records    store.RecordStore
	transforms map[string]TransformFunc
	handlers   map[RuleKind]ruleHandler
}

type Option func(*Engine)

// WithTransform registers a named transform usable from grammar strings.
func WithTransform(name string, fn TransformFunc) Option {
	return func(e *Engine) { e.transforms[name] = fn }
}

// NewEngine builds an engine reading raw values from values and resolving
// record references through records (may be nil if no field uses them).
func NewEngine(values ValueProvider, records store.RecordStore, opts ...Option) *Engine {
	e := &Engine{
		values:     values,
		records:    records,
		transforms: DefaultTransforms(),
	}
	e.handlers = map[RuleKind]ruleHandler{
		TypeRule:  e.applyType,
		AliasRule: e.applyAlias,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve evaluates fields in order and returns the resolved values.
// With checkEmpty set, an input with no values at all yields an empty Output
// without evaluating any field. The first field error aborts the whole call.
func (e *Engine) Resolve(ctx context.Context, fields []Field, checkEmpty bool) (*Output, error) {
	out := newOutput()
	if checkEmpty && providerEmpty(e.values) {
		return out, nil
	}
	for _, f := range fields {
		if err := e.resolveField(ctx, f, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *Engine) rawValue(key string) any {
	if e.values == nil {
		return nil
	}
	return e.values.Get(key)
}

func (e *Engine) resolveField(ctx context.Context, f Field, out *Output) error {
	st := step{value: e.rawValue(f.Name)}

	var rules Rules
	switch spec := f.Spec.(type) {
	case nil:
	case Grammar:
		rules = ParseGrammar(string(spec))
	case Rules:
		rules = spec
	case Direct:
		if spec != nil {
			st.value = spec(st.value)
		}
	}

	for _, r := range rules {
		kind := r.Kind()
		h, ok := e.handlers[kind]
		if !ok {
			if kind == UnknownRule {
				logger.Debug("constraint_rule_ignored", map[string]any{"field": f.Name, "rule": r.Name})
			}
			continue
		}
		next, err := h(ctx, st.value, r.Arg, rules)
		if err != nil {
			return &FieldError{Field: f.Name, Rule: r.Name, Err: err}
		}
		st = next
		if st.next != proceed {
			break
		}
	}

	switch st.next {
	case writeTo:
		out.set(st.key, st.value)
	case drop:
	default:
		if isBlank(st.value) && !rules.nullable() {
			return nil
		}
		out.set(f.Name, st.value)
	}
	return nil
}

// callable returns the transform an argument refers to, either directly or
// by the name of a registered transform.
func (e *Engine) callable(arg Arg) (TransformFunc, bool) {
	switch arg.kind {
	case argFunc:
		return arg.fn, arg.fn != nil
	case argText, argList:
		if toks := arg.Tokens(); len(toks) == 1 {
			fn, ok := e.transforms[toks[0]]
			return fn, ok
		}
	}
	return nil, false
}

// applyType: transform, scalar coercion or record lookup.
func (e *Engine) applyType(ctx context.Context, v any, arg Arg, rules Rules) (step, error) {
	if fn, ok := e.callable(arg); ok {
		return step{value: fn(v)}, nil
	}
	tokens := arg.Tokens()
	if len(tokens) == 0 {
		return step{value: v}, nil
	}
	if IsScalarKind(tokens[0]) {
		return step{value: Coerce(v, tokens[0])}, nil
	}
	res, err := e.resolveModel(ctx, tokens, v, rules)
	if err != nil {
		return step{}, err
	}
	return step{value: res}, nil
}

// applyAlias writes the (transformed or looked up) value under another key.
// Argument: [outputKey, modifier, extra...] where modifier is a transform or
// a model id followed by lookup args.
func (e *Engine) applyAlias(ctx context.Context, v any, arg Arg, rules Rules) (step, error) {
	tokens := arg.Tokens()
	if arg.kind == argKeyedFunc {
		if len(tokens) == 0 || arg.fn == nil {
			return step{}, fmt.Errorf("%w: alias must contain at least 2 parameters", ErrInvalidConstraint)
		}
		return step{value: arg.fn(v), next: writeTo, key: tokens[0]}, nil
	}
	if len(tokens) < 2 {
		return step{}, fmt.Errorf("%w: alias must contain at least 2 parameters", ErrInvalidConstraint)
	}
	key, modifier := tokens[0], tokens[1]

	if fn, ok := e.transforms[modifier]; ok {
		return step{value: fn(v), next: writeTo, key: key}, nil
	}
	if isBlank(v) && !rules.nullable() {
		return step{value: v, next: drop}, nil
	}
	res, err := e.resolveModel(ctx, tokens[1:], v, rules)
	if err != nil {
		return step{}, err
	}
	return step{value: res, next: writeTo, key: key}, nil
}
