package resolver

import (
	"context"
	"fmt"
	"net/url"

	"ReqFilter/internal/filter"
	"ReqFilter/internal/logger"
	"ReqFilter/internal/model"
	"ReqFilter/internal/sortable"
	"ReqFilter/internal/store"
)

// Query params that are never read as filters.
const (
	ResourceParam = "resource"
	SortParam     = "sort"
)

// Resolver ties a resource definition to request input.
type Resolver struct {
	registry *model.Registry
	records  store.RecordStore
	opts     []filter.Option
}

func New(registry *model.Registry, records store.RecordStore, opts ...filter.Option) *Resolver {
	return &Resolver{registry: registry, records: records, opts: opts}
}

// Resolve handles a JSON request body.
func (r *Resolver) Resolve(ctx context.Context, req FilterRequest) (*FilterResponse, error) {
	return r.resolve(ctx, req.Resource, filter.Values(req.Params), sortable.ParseOrders(req.Sorts...))
}

// ResolveQuery handles a query string: "sort" and "resource" are reserved,
// everything else is a raw filter value.
func (r *Resolver) ResolveQuery(ctx context.Context, resource string, q url.Values) (*FilterResponse, error) {
	params := filter.URLValues(q).Without(ResourceParam, SortParam)
	return r.resolve(ctx, resource, params, sortable.FromQuery(q, SortParam))
}

func (r *Resolver) resolve(ctx context.Context, resource string, values filter.ValueProvider, orders []sortable.Order) (*FilterResponse, error) {
	res, err := r.registry.Resource(resource)
	if err != nil {
		return nil, err
	}

	out, err := filter.NewEngine(values, r.records, r.opts...).Resolve(ctx, res.Filters, res.CheckEmpty)
	if err != nil {
		logger.Error("filter_resolve_error", map[string]any{
			"resource": resource,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("resolve filters: %w", err)
	}

	spec := res.SortSpec().Sort(orders)
	logger.Debug("resolved", map[string]any{
		"resource": resource,
		"filters":  out.Keys(),
		"sort":     spec.String(),
	})

	return &FilterResponse{
		Resource:  res.Name,
		Filters:   out,
		Sort:      spec.String(),
		Sortables: spec.Fields(),
	}, nil
}
