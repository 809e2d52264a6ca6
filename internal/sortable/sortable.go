// Package sortable tracks which of a fixed set of columns a request sorts by.
//
// A Spec is built once from the canonical columns and re-evaluated in place by
// every Sort call; it renders to an ORDER BY fragment such as "age desc, name asc".
package sortable

import (
	"errors"
	"slices"
	"strings"

	"ReqFilter/internal/logger"

	"github.com/Masterminds/squirrel"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultOrder is rendered when nothing is sorted.
const DefaultOrder = "id asc"

var ErrConflictingFilter = errors.New("sortable: only and except are mutually exclusive")

// Column is a canonical sortable column.
type Column struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`
}

// Order is one requested sort entry; Dir is raw user input.
type Order struct {
	Key string
	Dir string
}

// Field is the state of a column after Sort.
type Field struct {
	Key    string    `json:"key"`
	Title  string    `json:"title"`
	Dir    Direction `json:"dir"`
	Sorted bool      `json:"sorted"`
}

type Spec struct {
	// Default is rendered when no column is sorted.
	Default string

	fields []Field
	index  map[string]int
	active []string // sorted keys, request order
}

// New builds a spec with every column unsorted and ascending. A repeated key
// keeps its first position and takes the last title.
func New(cols []Column) *Spec {
	s := &Spec{
		Default: DefaultOrder,
		index:   make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if i, ok := s.index[c.Key]; ok {
			s.fields[i].Title = c.Title
			continue
		}
		s.index[c.Key] = len(s.fields)
		s.fields = append(s.fields, Field{Key: c.Key, Title: c.Title, Dir: Asc})
	}
	return s
}

// ParseDirection normalizes a raw direction ("  DESC " -> desc).
func ParseDirection(raw string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(raw)))
	if IsDirection(d) {
		return d, true
	}
	return "", false
}

func IsDirection(d Direction) bool {
	return d == Asc || d == Desc
}

// Sort re-evaluates the spec against a request. Every column is reset first;
// entries with an unknown key or an invalid direction are skipped.
func (s *Spec) Sort(req []Order) *Spec {
	s.active = s.active[:0]
	for i := range s.fields {
		s.fields[i].Sorted = false
		s.fields[i].Dir = Asc
	}
	for _, o := range req {
		i, ok := s.index[o.Key]
		if !ok {
			logger.Debug("sort_key_ignored", map[string]any{"key": o.Key})
			continue
		}
		dir, ok := ParseDirection(o.Dir)
		if !ok {
			logger.Debug("sort_direction_ignored", map[string]any{"key": o.Key, "dir": o.Dir})
			continue
		}
		f := &s.fields[i]
		if !f.Sorted {
			s.active = append(s.active, o.Key)
		}
		f.Sorted = true
		f.Dir = dir
	}
	return s
}

// Fields returns the merged view in canonical order.
func (s *Spec) Fields() []Field {
	return slices.Clone(s.fields)
}

// SortedBy returns the active fields in request order.
func (s *Spec) SortedBy() []Field {
	out := make([]Field, 0, len(s.active))
	for _, k := range s.active {
		out = append(out, s.fields[s.index[k]])
	}
	return out
}

func (s *Spec) DirectionOf(key string) Direction {
	if i, ok := s.index[key]; ok {
		return s.fields[i].Dir
	}
	return Asc
}

// TitleOf returns the title of key and whether key is canonical.
func (s *Spec) TitleOf(key string) (string, bool) {
	if i, ok := s.index[key]; ok {
		return s.fields[i].Title, true
	}
	return "", false
}

func (s *Spec) IsSorted(key string) bool {
	if i, ok := s.index[key]; ok {
		return s.fields[i].Sorted
	}
	return false
}

// Clone returns an independent copy, e.g. a pristine per-request spec.
func (s *Spec) Clone() *Spec {
	c := &Spec{
		Default: s.Default,
		fields:  slices.Clone(s.fields),
		index:   make(map[string]int, len(s.index)),
		active:  slices.Clone(s.active),
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	return c
}

// RenderOptions restricts rendering to a subset of keys. Only and Except
// cannot be combined.
type RenderOptions struct {
	Only   []string
	Except []string
}

func (o RenderOptions) keep(key string) bool {
	if len(o.Only) > 0 {
		return slices.Contains(o.Only, key)
	}
	return !slices.Contains(o.Except, key)
}

// Render joins the active "<key> <dir>" pairs with ", " in request order,
// falling back to Default.
func (s *Spec) Render(opts RenderOptions) (string, error) {
	if len(opts.Only) > 0 && len(opts.Except) > 0 {
		return "", ErrConflictingFilter
	}
	parts := make([]string, 0, len(s.active))
	for _, f := range s.SortedBy() {
		if opts.keep(f.Key) {
			parts = append(parts, f.Key+" "+string(f.Dir))
		}
	}
	if len(parts) == 0 {
		return s.Default, nil
	}
	return strings.Join(parts, ", "), nil
}

func (s *Spec) String() string {
	out, _ := s.Render(RenderOptions{})
	return out
}

// ApplyTo adds the ORDER BY of the spec to a squirrel select.
func (s *Spec) ApplyTo(sb squirrel.SelectBuilder) squirrel.SelectBuilder {
	active := s.SortedBy()
	if len(active) == 0 {
		if s.Default == "" {
			return sb
		}
		return sb.OrderBy(s.Default)
	}
	for _, f := range active {
		sb = sb.OrderBy(f.Key + " " + strings.ToUpper(string(f.Dir)))
	}
	return sb
}
