package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Разрешённые ключи для объектов
var allowedModelKeys = map[string]bool{
	"name":         true,
	"table":        true,
	"primary_keys": true,
	"columns":      true,
}

var allowedResourceKeys = map[string]bool{
	"name":         true,
	"filters":      true,
	"sortables":    true,
	"default_sort": true,
	"check_empty":  true,
}

func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, context); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "model":
			allowedKeys = allowedModelKeys
		case "resource":
			allowedKeys = allowedResourceKeys
		default:
			allowedKeys = nil // свободная форма: фильтры, правила, сортировки
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s (line %d)", key, context, keyNode.Line)
			}

			nextContext := ""
			switch {
			case context == "resource" && key == "filters":
				nextContext = "filters"
			case context == "resource" && key == "sortables":
				nextContext = "sortables"
			case context == "filters":
				nextContext = "constraints"
			case context == "constraints":
				nextContext = "rule-arg"
			}

			if context == "sortables" && valNode.Kind != yaml.ScalarNode {
				return fmt.Errorf("sortable '%s' must have a scalar title (line %d)", key, valNode.Line)
			}
			if context == "rule-arg" {
				return fmt.Errorf("rule argument cannot be a mapping (line %d)", keyNode.Line)
			}

			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := validateYAMLNode(item, context); err != nil {
				return err
			}
		}

	case yaml.ScalarNode:
		// скаляры не валидируем на ключи — они уже проверяются при разборе MappingNode
	}

	return nil
}
