package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ReqFilter/internal/filter"
	"ReqFilter/internal/logger"
	"ReqFilter/internal/sortable"

	"gopkg.in/yaml.v3"
)

// readYAMLDir parses every *.yml in dir and hands the root mapping to fn.
func readYAMLDir(dir string, fn func(name, path string, root *yaml.Node) error) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("YAML parse error in %s: %w", path, err)
		}
		// YAML всегда [0] - документ, [1] - root mapping
		if len(doc.Content) == 0 {
			return fmt.Errorf("empty YAML in %s", path)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := fn(name, path, doc.Content[0]); err != nil {
			return err
		}
	}
	return nil
}

func LoadModelsFromDir(dir string) ([]*Model, error) {
	var out []*Model
	err := readYAMLDir(dir, func(name, path string, root *yaml.Node) error {
		if err := validateYAMLNode(root, "model"); err != nil {
			return fmt.Errorf("validation error in %s: %w", path, err)
		}
		var m Model
		if err := root.Decode(&m); err != nil {
			return fmt.Errorf("unmarshal error in %s: %w", path, err)
		}
		if m.Name == "" {
			m.Name = name
		}
		if m.Table == "" {
			return fmt.Errorf("model %s in %s: table is required", m.Name, path)
		}
		out = append(out, &m)
		logger.Info("model_loaded", map[string]any{"model": m.Name, "table": m.Table})
		return nil
	})
	return out, err
}

func LoadResourcesFromDir(dir string) ([]*Resource, error) {
	var out []*Resource
	err := readYAMLDir(dir, func(name, path string, root *yaml.Node) error {
		if err := validateYAMLNode(root, "resource"); err != nil {
			return fmt.Errorf("validation error in %s: %w", path, err)
		}
		res, err := DecodeResource(name, root)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, res)
		logger.Info("resource_loaded", map[string]any{
			"resource":  res.Name,
			"filters":   len(res.Filters),
			"sortables": len(res.Sortables),
		})
		return nil
	})
	return out, err
}

// DecodeResource reads a resource mapping. Filter and sortable order is the
// order of the YAML document.
func DecodeResource(name string, root *yaml.Node) (*Resource, error) {
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("resource %s: expected mapping", name)
	}
	res := &Resource{Name: name}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		var err error
		switch key {
		case "name":
			res.Name = val.Value
		case "default_sort":
			res.DefaultSort = val.Value
		case "check_empty":
			err = val.Decode(&res.CheckEmpty)
		case "filters":
			res.Filters, err = decodeFilters(val)
		case "sortables":
			res.Sortables, err = decodeSortables(val)
		}
		if err != nil {
			return nil, fmt.Errorf("resource %s, %s: %w", name, key, err)
		}
	}
	return res, nil
}

func decodeFilters(node *yaml.Node) ([]filter.Field, error) {
	var out []filter.Field
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				// позиционное поле: имя без ограничений
				out = append(out, filter.Field{Name: item.Value})
			case yaml.MappingNode:
				if len(item.Content) != 2 {
					return nil, fmt.Errorf("line %d: filter entry must have exactly one key", item.Line)
				}
				spec, err := decodeSpec(item.Content[1])
				if err != nil {
					return nil, err
				}
				out = append(out, filter.Field{Name: item.Content[0].Value, Spec: spec})
			default:
				return nil, fmt.Errorf("line %d: unexpected filter entry", item.Line)
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			spec, err := decodeSpec(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, filter.Field{Name: node.Content[i].Value, Spec: spec})
		}
	default:
		return nil, fmt.Errorf("line %d: filters must be a list or a mapping", node.Line)
	}
	return out, nil
}

func decodeSpec(node *yaml.Node) (filter.Spec, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return filter.Grammar(node.Value), nil
	case yaml.MappingNode:
		var rules filter.Rules
		for i := 0; i+1 < len(node.Content); i += 2 {
			arg, err := decodeArg(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			rules = rules.With(node.Content[i].Value, arg)
		}
		return rules, nil
	}
	return nil, fmt.Errorf("line %d: constraints must be a string or a mapping", node.Line)
}

func decodeArg(node *yaml.Node) (filter.Arg, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return filter.FlagArg(true), nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return filter.Arg{}, err
			}
			return filter.FlagArg(b), nil
		}
		return filter.TextArg(node.Value), nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return filter.Arg{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return filter.ListArg(items...), nil
	}
	return filter.Arg{}, fmt.Errorf("line %d: rule argument must be a scalar or a list", node.Line)
}

func decodeSortables(node *yaml.Node) ([]sortable.Column, error) {
	var out []sortable.Column
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, title := node.Content[i].Value, node.Content[i+1]
			col := sortable.Column{Key: key, Title: title.Value}
			if title.Tag == "!!null" {
				col.Title = key
			}
			out = append(out, col)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.MappingNode && len(item.Content) == 2 {
				out = append(out, sortable.Column{Key: item.Content[0].Value, Title: item.Content[1].Value})
				continue
			}
			out = append(out, sortable.Column{Key: item.Value, Title: item.Value})
		}
	default:
		return nil, fmt.Errorf("line %d: sortables must be a mapping or a list", node.Line)
	}
	return out, nil
}
