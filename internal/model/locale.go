package model

import (
	"fmt"
	"os"
	"path/filepath"

	"ReqFilter/internal/logger"

	"gopkg.in/yaml.v3"
)

// LocaleNode универсальный узел словаря: либо значение, либо дети
type LocaleNode struct {
	Value    string
	Children map[string]*LocaleNode
}

// Dictionary is a locale file, keyed resource → section → key:
//
//	posts:
//	  sortables:
//	    created_at: Создано
type Dictionary map[string]*LocaleNode

// LoadLocale reads <dir>/<locale>.yml. A missing file is reported as an
// error wrapping fs.ErrNotExist.
func LoadLocale(dir, locale string) (Dictionary, error) {
	path := filepath.Join(dir, locale+".yml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal locale %s: %w", path, err)
	}
	return Dictionary(parseNodeMap(raw)), nil
}

// parseNodeMap рекурсивно строит словарь; числовые ключи YAML становятся строками
func parseNodeMap[K comparable](raw map[K]any) map[string]*LocaleNode {
	out := make(map[string]*LocaleNode, len(raw))
	for k, val := range raw {
		key := fmt.Sprint(k)
		switch v := val.(type) {
		case map[string]any:
			out[key] = &LocaleNode{Children: parseNodeMap(v)}
		case map[any]any:
			out[key] = &LocaleNode{Children: parseNodeMap(v)}
		case nil:
			out[key] = &LocaleNode{}
		default:
			out[key] = &LocaleNode{Value: fmt.Sprint(v)}
		}
	}
	return out
}

func (n *LocaleNode) Lookup(keys ...string) (string, bool) {
	cur := n
	for _, k := range keys {
		if cur == nil {
			return "", false
		}
		cur = cur.Children[k]
	}
	if cur == nil || cur.Value == "" {
		return "", false
	}
	return cur.Value, true
}

// Lookup ищет перевод по пути: resource → section → key.
func (d Dictionary) Lookup(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	return d[path[0]].Lookup(path[1:]...)
}

// Localize replaces sortable titles that have a translation under
// <resource>.sortables.<key> and returns how many were replaced.
func (r *Registry) Localize(dict Dictionary) int {
	n := 0
	for _, name := range r.ResourceNames() {
		res := r.resources[name]
		for i, col := range res.Sortables {
			if title, ok := dict.Lookup(name, "sortables", col.Key); ok {
				res.Sortables[i].Title = title
				n++
			}
		}
	}
	logger.Debug("locale_applied", map[string]any{"titles": n})
	return n
}
