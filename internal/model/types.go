package model

import (
	"strings"

	"ReqFilter/internal/filter"
	"ReqFilter/internal/sortable"
	"ReqFilter/internal/store"

	"gopkg.in/yaml.v3"
)

// Model описывает таблицу, на которую ссылаются правила type/alias.
type Model struct {
	Name        string     `yaml:"name"`         // logical name, defaults to the file name
	Table       string     `yaml:"table"`        // SQL table
	PrimaryKeys StringList `yaml:"primary_keys"` // optional, e.g. ["id"]
	Columns     StringList `yaml:"columns"`      // fields allowed in lookups; empty = any identifier
}

// GetPrimaryKeys возвращает список полей первичного ключа для модели.
// Если не задано в конфиге, по умолчанию возвращает ["id"].
func (m *Model) GetPrimaryKeys() []string {
	if len(m.PrimaryKeys) > 0 {
		return m.PrimaryKeys
	}
	return []string{"id"}
}

func (m *Model) storeTable() store.Table {
	t := store.Table{Name: m.Table, Columns: m.Columns}
	if pks := m.GetPrimaryKeys(); len(pks) == 1 {
		t.PrimaryKey = pks[0]
	}
	return t
}

// Resource is a filterable, sortable listing: which request params it reads
// and which columns it can be ordered by.
type Resource struct {
	Name        string
	Filters     []filter.Field
	Sortables   []sortable.Column
	DefaultSort string
	CheckEmpty  bool
}

// SortSpec builds a fresh spec for one request.
func (r *Resource) SortSpec() *sortable.Spec {
	s := sortable.New(r.Sortables)
	if r.DefaultSort != "" {
		s.Default = r.DefaultSort
	}
	return s
}

// StringList accepts both a YAML sequence and a comma-separated scalar.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var out []string
		for _, item := range strings.Split(node.Value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*l = out
		return nil
	default:
		var out []string
		if err := node.Decode(&out); err != nil {
			return err
		}
		*l = out
		return nil
	}
}
