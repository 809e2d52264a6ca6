package filter

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"ReqFilter/internal/store"

	"github.com/google/go-cmp/cmp"
)

func usersFixture() *store.Memory {
	return store.NewMemory().
		Add("User",
			store.Record{"id": 5, "email": "ann@example.com", "team": "core"},
			store.Record{"id": 6, "email": "bob@example.com", "team": "core"},
			store.Record{"id": 7, "email": "eve@example.com", "team": "ops"},
		)
}

func resolve(t *testing.T, params Values, fields ...Field) *Output {
	t.Helper()
	out, err := NewEngine(params, usersFixture()).Resolve(context.Background(), fields, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return out
}

func TestResolve_TypeIntCoercesRawString(t *testing.T) {
	out := resolve(t, Values{"page": "7"}, Field{Name: "page", Spec: Grammar("type:int")})
	got, ok := out.Get("page")
	if !ok || got != 7 {
		t.Fatalf("page = %#v (present=%v), want int 7", got, ok)
	}
}

func TestResolve_NullableKeepsAbsentField(t *testing.T) {
	out := resolve(t, Values{}, Field{Name: "status", Spec: Grammar("nullable")})
	v, ok := out.Get("status")
	if !ok || v != nil {
		t.Fatalf("status = %#v (present=%v), want present nil", v, ok)
	}

	out = resolve(t, Values{}, Field{Name: "status", Spec: Grammar("type:int")})
	if out.Has("status") {
		t.Fatalf("status without nullable must be dropped, got %v", out.Keys())
	}
}

func TestResolve_PositionalFieldPassesThrough(t *testing.T) {
	out := resolve(t, Values{"q": "hello", "other": "x"}, Field{Name: "q"}, Field{Name: "missing"})
	if diff := cmp.Diff([]string{"q"}, out.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := out.Get("q"); v != "hello" {
		t.Fatalf("q = %#v", v)
	}
}

func TestResolve_AliasResolvesRecordUnderNewKey(t *testing.T) {
	out := resolve(t, Values{"owner": 5}, Field{Name: "owner", Spec: Grammar("alias:ownerId,User")})
	if out.Has("owner") {
		t.Fatalf("original key must not be written: %v", out.Keys())
	}
	v, ok := out.Get("ownerId")
	if !ok {
		t.Fatalf("ownerId missing: %v", out.Keys())
	}
	if diff := cmp.Diff(store.Record{"id": 5, "email": "ann@example.com", "team": "core"}, v); diff != "" {
		t.Fatalf("ownerId mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_AliasNotFoundAbortsEverything(t *testing.T) {
	fields := []Field{
		{Name: "q"},
		{Name: "owner", Spec: Grammar("alias:ownerId,User")},
	}
	out, err := NewEngine(Values{"q": "x", "owner": 99}, usersFixture()).Resolve(context.Background(), fields, false)
	if out != nil {
		t.Fatalf("no partial output expected, got %v", out.Keys())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "owner" || fe.Rule != "alias" {
		t.Fatalf("want FieldError for owner/alias, got %#v", err)
	}
}

func TestResolve_AliasArity(t *testing.T) {
	specs := []Spec{
		Grammar("alias:ownerId"),
		Grammar("alias:ownerId,"),
		Grammar("alias"),
		Rules{{Name: "alias", Arg: ListArg("ownerId")}},
	}
	for _, spec := range specs {
		_, err := NewEngine(Values{"owner": 5}, usersFixture()).
			Resolve(context.Background(), []Field{{Name: "owner", Spec: spec}}, false)
		if !errors.Is(err, ErrInvalidConstraint) {
			t.Errorf("%#v: err = %v, want ErrInvalidConstraint", spec, err)
		}
	}
}

func TestResolve_AliasBlankValue(t *testing.T) {
	out := resolve(t, Values{}, Field{Name: "owner", Spec: Grammar("alias:ownerId,User")})
	if out.Len() != 0 {
		t.Fatalf("blank alias without nullable must write nothing, got %v", out.Keys())
	}

	out = resolve(t, Values{}, Field{Name: "owner", Spec: Grammar("alias:ownerId,User|nullable")})
	if v, ok := out.Get("ownerId"); !ok || v != nil {
		t.Fatalf("nullable alias should write nil under ownerId, got %#v (present=%v)", v, ok)
	}
	if out.Has("owner") {
		t.Fatalf("original key must not be written")
	}
}

func TestResolve_AliasWithCallableModifier(t *testing.T) {
	upper := func(v any) any { return strings.ToUpper(v.(string)) }
	out := resolve(t, Values{"code": "ab"},
		Field{Name: "code", Spec: Rules{{Name: "alias", Arg: AliasTo("CODE", upper)}}},
	)
	if v, _ := out.Get("CODE"); v != "AB" {
		t.Fatalf("CODE = %#v", v)
	}

	out = resolve(t, Values{"slug": "Hello"}, Field{Name: "slug", Spec: Grammar("alias:slug_lc,lower")})
	if v, _ := out.Get("slug_lc"); v != "hello" {
		t.Fatalf("slug_lc = %#v", v)
	}
}

func TestResolve_TypeByFieldAndMultiple(t *testing.T) {
	out := resolve(t, Values{"author": "bob@example.com", "team": "core"},
		Field{Name: "author", Spec: Grammar("type:User,email")},
		Field{Name: "team", Spec: Grammar("type:User,team,multiple")},
	)
	author, _ := out.Get("author")
	if rec, ok := author.(store.Record); !ok || rec["id"] != 6 {
		t.Fatalf("author = %#v", author)
	}
	team, _ := out.Get("team")
	recs, ok := team.([]store.Record)
	if !ok || len(recs) != 2 {
		t.Fatalf("team = %#v, want 2 records", team)
	}
}

func TestResolve_MultipleWithoutMatchesIsEmptyList(t *testing.T) {
	out := resolve(t, Values{"team": "nobody"},
		Field{Name: "team", Spec: Grammar("type:User,team,multiple|nullable")},
	)
	v, _ := out.Get("team")
	if recs, ok := v.([]store.Record); !ok || len(recs) != 0 {
		t.Fatalf("team = %#v, want empty list", v)
	}
}

func TestResolve_ArrayFlagUsesSetLookup(t *testing.T) {
	out := resolve(t, Values{"ids": []any{"5", "7", "100"}},
		Field{Name: "ids", Spec: Rules{
			{Name: "type", Arg: ListArg("User")},
			{Name: "array", Arg: FlagArg(true)},
		}},
	)
	v, _ := out.Get("ids")
	recs, ok := v.([]store.Record)
	if !ok || len(recs) != 2 || recs[0]["id"] != 5 || recs[1]["id"] != 7 {
		t.Fatalf("ids = %#v", v)
	}
}

func TestResolve_DirectTransformSkipsRules(t *testing.T) {
	double := Direct(func(v any) any { return toInt(v) * 2 })
	out := resolve(t, Values{"n": "21"}, Field{Name: "n", Spec: double})
	if v, _ := out.Get("n"); v != 42 {
		t.Fatalf("n = %#v", v)
	}
}

func TestResolve_TypeCallableAndNamedTransform(t *testing.T) {
	out, err := NewEngine(Values{"a": "  x ", "b": "v"}, nil,
		WithTransform("twice", func(v any) any { return v.(string) + v.(string) }),
	).Resolve(context.Background(), []Field{
		{Name: "a", Spec: Grammar("type:trim")},
		{Name: "b", Spec: Grammar("type:twice")},
	}, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]any{"a": "x", "b": "vv"}
	if diff := cmp.Diff(want, out.Map()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_TransformNamedByListArg(t *testing.T) {
	out := resolve(t, Values{"q": "  Go "}, Field{Name: "q", Spec: Rules{
		{Name: "type", Arg: ListArg("trim")},
		{Name: "type", Arg: ListArg("", "lower")},
	}})
	if v, _ := out.Get("q"); v != "go" {
		t.Fatalf("q = %#v, want %q", v, "go")
	}
}

func TestResolve_HugeIntSaturates(t *testing.T) {
	out := resolve(t, Values{"page": "99999999999999999999", "off": "-1e30"},
		Field{Name: "page", Spec: Grammar("type:int")},
		Field{Name: "off", Spec: Grammar("type:int")},
	)
	want := map[string]any{"page": math.MaxInt, "off": math.MinInt}
	if diff := cmp.Diff(want, out.Map()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_LaterRuleReplacesEarlierAnyCase(t *testing.T) {
	out := resolve(t, Values{"who": "ann@example.com"}, Field{Name: "who", Spec: Grammar("type:int|TYPE:User,email")})
	v, _ := out.Get("who")
	if rec, ok := v.(store.Record); !ok || rec["id"] != 5 {
		t.Fatalf("who = %#v", v)
	}
}

func TestResolve_UnknownRulesIgnored(t *testing.T) {
	out := resolve(t, Values{"n": "3"}, Field{Name: "n", Spec: Grammar("required|min:2|type:int|legacy")})
	if v, _ := out.Get("n"); v != 3 {
		t.Fatalf("n = %#v", v)
	}
}

func TestResolve_RulesRunInDeclaredOrder(t *testing.T) {
	out := resolve(t, Values{"who": " 5 "}, Field{Name: "who", Spec: Rules{
		{Name: "type", Arg: TextArg("trim")},
		{Name: "alias", Arg: ListArg("owner", "User")},
	}})
	v, _ := out.Get("owner")
	if rec, ok := v.(store.Record); !ok || rec["id"] != 5 {
		t.Fatalf("owner = %#v", v)
	}
}

func TestResolve_ZeroAfterCoercionIsDropped(t *testing.T) {
	out := resolve(t, Values{"page": "abc"}, Field{Name: "page", Spec: Grammar("type:int")})
	if out.Has("page") {
		t.Fatalf("coerced zero without nullable must be dropped")
	}
	out = resolve(t, Values{"page": "abc"}, Field{Name: "page", Spec: Grammar("type:int|nullable")})
	if v, _ := out.Get("page"); v != 0 {
		t.Fatalf("page = %#v, want 0", v)
	}
}

func TestResolve_CheckEmptyShortCircuits(t *testing.T) {
	fields := []Field{{Name: "status", Spec: Grammar("nullable")}}

	out, err := NewEngine(Values{}, nil).Resolve(context.Background(), fields, true)
	if err != nil || out.Len() != 0 {
		t.Fatalf("checkEmpty on empty input: out=%v err=%v", out.Keys(), err)
	}
	out, err = NewEngine(Values{}, nil).Resolve(context.Background(), fields, false)
	if err != nil || !out.Has("status") {
		t.Fatalf("without checkEmpty nullable field expected: out=%v err=%v", out.Keys(), err)
	}
}

func TestResolve_OutputKeepsDeclarationOrder(t *testing.T) {
	out := resolve(t, Values{"c": "1", "a": "2", "b": "3"},
		Field{Name: "c"}, Field{Name: "a"}, Field{Name: "b"},
	)
	if diff := cmp.Diff([]string{"c", "a", "b"}, out.Keys()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ModelWithoutStoreFails(t *testing.T) {
	_, err := NewEngine(Values{"owner": 5}, nil).
		Resolve(context.Background(), []Field{{Name: "owner", Spec: Grammar("type:User")}}, false)
	if err == nil {
		t.Fatalf("expected error without a record store")
	}
}
