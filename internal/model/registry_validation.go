package model

import (
	"fmt"

	"ReqFilter/internal/filter"
)

// ValidateResources проверяет, что все ссылки type/alias указывают на
// известные модели. Scalar kinds (type only) and default transform names are
// not model references.
func (r *Registry) ValidateResources() error {
	transforms := filter.DefaultTransforms()
	for _, resName := range r.ResourceNames() {
		res := r.resources[resName]
		for _, f := range res.Filters {
			for _, ref := range modelRefs(f, transforms) {
				if _, ok := r.models[ref]; !ok {
					return fmt.Errorf("resource %s, filter %q: %w: %s", resName, f.Name, ErrUnknownModel, ref)
				}
			}
		}
	}
	return nil
}

func modelRefs(f filter.Field, transforms map[string]filter.TransformFunc) []string {
	var rules filter.Rules
	switch spec := f.Spec.(type) {
	case filter.Grammar:
		rules = filter.ParseGrammar(string(spec))
	case filter.Rules:
		rules = spec
	default:
		return nil
	}

	var refs []string
	for _, rule := range rules {
		tokens := rule.Arg.Tokens()
		switch rule.Kind() {
		case filter.TypeRule:
			if len(tokens) == 0 || filter.IsScalarKind(tokens[0]) {
				continue
			}
			if _, ok := transforms[tokens[0]]; ok && len(tokens) == 1 {
				continue
			}
			refs = append(refs, tokens[0])
		case filter.AliasRule:
			// в alias:key,int "int" - имя модели, не скаляр
			if len(tokens) < 2 {
				continue
			}
			if _, ok := transforms[tokens[1]]; ok {
				continue
			}
			refs = append(refs, tokens[1])
		}
	}
	return refs
}
