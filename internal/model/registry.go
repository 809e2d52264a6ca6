package model

import (
	"errors"
	"fmt"
	"sort"

	"ReqFilter/internal/store"
)

var (
	ErrUnknownModel    = store.ErrUnknownModel
	ErrUnknownResource = errors.New("unknown resource")
)

// Registry holds the models and resources loaded at startup. It is read-only
// once InitRegistry returns.
type Registry struct {
	models    map[string]*Model
	resources map[string]*Resource
}

func NewRegistry() *Registry {
	return &Registry{
		models:    map[string]*Model{},
		resources: map[string]*Resource{},
	}
}

// InitRegistry loads models and resources and checks that every typed
// reference in a resource names a known model.
func InitRegistry(modelsDir, resourcesDir string) (*Registry, error) {
	r := NewRegistry()
	models, err := LoadModelsFromDir(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	for _, m := range models {
		r.AddModel(m)
	}
	resources, err := LoadResourcesFromDir(resourcesDir)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	for _, res := range resources {
		r.AddResource(res)
	}
	if err := r.ValidateResources(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return r, nil
}

func (r *Registry) AddModel(m *Model) *Registry {
	r.models[m.Name] = m
	return r
}

func (r *Registry) AddResource(res *Resource) *Registry {
	r.resources[res.Name] = res
	return r
}

func (r *Registry) Model(name string) (*Model, bool) {
	m, ok := r.models[name]
	return m, ok
}

// Lookup implements store.Catalog.
func (r *Registry) Lookup(name string) (store.Table, error) {
	m, ok := r.models[name]
	if !ok {
		return store.Table{}, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return m.storeTable(), nil
}

func (r *Registry) Resource(name string) (*Resource, error) {
	res, ok := r.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return res, nil
}

// ResourceNames returns resource names sorted.
func (r *Registry) ResourceNames() []string {
	names := make([]string, 0, len(r.resources))
	for n := range r.resources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
