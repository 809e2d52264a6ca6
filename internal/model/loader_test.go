package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ReqFilter/internal/filter"
	"ReqFilter/internal/sortable"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const postsResource = `
default_sort: created_at desc
check_empty: true
filters:
  - q
  - status: "type:int|nullable"
  - owner: "alias:ownerId,User"
  - tags:
      type: [Tag, slug]
      array: true
  - title: ~
sortables:
  title: Title
  created_at: Created
  score: ~
`

func fixtureDirs(t *testing.T) (string, string) {
	t.Helper()
	models, resources := t.TempDir(), t.TempDir()
	writeFile(t, models, "User.yml", "table: users\ncolumns: id, email, team\n")
	writeFile(t, models, "tag.yml", "name: Tag\ntable: tags\nprimary_keys: [id]\n")
	writeFile(t, resources, "posts.yml", postsResource)
	return models, resources
}

func TestInitRegistry_LoadsInDeclarationOrder(t *testing.T) {
	models, resources := fixtureDirs(t)
	reg, err := InitRegistry(models, resources)
	if err != nil {
		t.Fatalf("InitRegistry: %v", err)
	}

	res, err := reg.Resource("posts")
	if err != nil {
		t.Fatalf("Resource: %v", err)
	}
	var names []string
	for _, f := range res.Filters {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"q", "status", "owner", "tags", "title"}, names); diff != "" {
		t.Fatalf("filter order (-want +got):\n%s", diff)
	}
	if res.Filters[0].Spec != nil || res.Filters[4].Spec != nil {
		t.Fatalf("positional and null entries must have no spec: %#v", res.Filters)
	}
	if g, ok := res.Filters[1].Spec.(filter.Grammar); !ok || g != "type:int|nullable" {
		t.Fatalf("status spec = %#v", res.Filters[1].Spec)
	}
	rules, ok := res.Filters[3].Spec.(filter.Rules)
	if !ok || len(rules) != 2 || rules[0].Kind() != filter.TypeRule || rules[1].Kind() != filter.ArrayRule {
		t.Fatalf("tags spec = %#v", res.Filters[3].Spec)
	}
	if diff := cmp.Diff([]string{"Tag", "slug"}, rules[0].Arg.Tokens()); diff != "" {
		t.Fatalf("tags type tokens (-want +got):\n%s", diff)
	}

	want := []sortable.Column{
		{Key: "title", Title: "Title"},
		{Key: "created_at", Title: "Created"},
		{Key: "score", Title: "score"},
	}
	if diff := cmp.Diff(want, res.Sortables); diff != "" {
		t.Fatalf("sortables (-want +got):\n%s", diff)
	}
	if !res.CheckEmpty || res.SortSpec().String() != "created_at desc" {
		t.Fatalf("resource options not applied: %#v", res)
	}

	table, err := reg.Lookup("User")
	if err != nil || table.Name != "users" || table.PrimaryKey != "id" || len(table.Columns) != 3 {
		t.Fatalf("Lookup(User) = %#v, %v", table, err)
	}
	if _, err := reg.Lookup("Tag"); err != nil {
		t.Fatalf("Lookup(Tag): %v", err)
	}
}

func TestInitRegistry_UnknownModelReference(t *testing.T) {
	models, resources := fixtureDirs(t)
	writeFile(t, resources, "comments.yml", "filters:\n  author: \"type:Author\"\n")

	_, err := InitRegistry(models, resources)
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestInitRegistry_RejectsUnknownKeys(t *testing.T) {
	models, resources := fixtureDirs(t)
	writeFile(t, models, "Bad.yml", "table: bad\nrelations: {}\n")

	if _, err := InitRegistry(models, resources); err == nil {
		t.Fatalf("expected validation error for unknown model key")
	}
}

func TestModelRefs_SkipsScalarsAndTransforms(t *testing.T) {
	f := filter.Field{Name: "x", Spec: filter.Grammar("type:int|alias:x_lc,lower|alias:owner,User,email")}
	got := modelRefs(f, filter.DefaultTransforms())
	if diff := cmp.Diff([]string{"User"}, got); diff != "" {
		t.Fatalf("refs (-want +got):\n%s", diff)
	}
}

func TestModelRefs_ScalarKindIsModelForAlias(t *testing.T) {
	f := filter.Field{Name: "n", Spec: filter.Grammar("alias:count,int")}
	got := modelRefs(f, filter.DefaultTransforms())
	if diff := cmp.Diff([]string{"int"}, got); diff != "" {
		t.Fatalf("refs (-want +got):\n%s", diff)
	}

	models, resources := fixtureDirs(t)
	writeFile(t, resources, "counters.yml", "filters:\n  n: \"alias:count,int\"\n")
	if _, err := InitRegistry(models, resources); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestRegistry_UnknownResource(t *testing.T) {
	if _, err := NewRegistry().Resource("nope"); !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("err = %v", err)
	}
}
