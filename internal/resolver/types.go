package resolver

import (
	"ReqFilter/internal/filter"
	"ReqFilter/internal/sortable"
)

type FilterRequest struct {
	Resource string         `json:"resource"`
	Params   map[string]any `json:"params"`
	Sorts    []string       `json:"sorts"` // ["age desc", "-name"]
}

type FilterResponse struct {
	Resource  string           `json:"resource"`
	Filters   *filter.Output   `json:"filters"`
	Sort      string           `json:"sort"`
	Sortables []sortable.Field `json:"sortables"`
}
