// Package filter selects products by a single query dimension.
package filter

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/fairyhunter13/product-catalog-manager/internal/model"
)

// Kind identifies the dimension a Filter matches on.
type Kind int

const (
	None Kind = iota
	Owner
	Developer
	ScrumMaster
	Methodology
)

type kindSpec struct {
	kind  Kind
	param string
	match func(p model.Product, v string) bool
}

// kinds is ordered by query precedence.
var kinds = []kindSpec{
	{Owner, "productOwner", func(p model.Product, v string) bool { return p.ProductOwner == v }},
	{Developer, "developerName", func(p model.Product, v string) bool { return p.HasDeveloper(v) }},
	{ScrumMaster, "scrumMaster", func(p model.Product, v string) bool { return p.ScrumMaster == v }},
	{Methodology, "methodology", func(p model.Product, v string) bool { return string(p.Methodology) == v }},
}

var byKind = func() map[Kind]kindSpec {
	m := make(map[Kind]kindSpec, len(kinds))
	for _, k := range kinds {
		m[k.kind] = k
	}
	return m
}()

// ErrUnknownField is returned by Parse for an unsupported parameter name.
var ErrUnknownField = errors.New("unknown filter field")

// NoMatchError reports that a filter selected no records.
type NoMatchError struct {
	Param string
}

func (e *NoMatchError) Error() string { return "no match for " + e.Param }

// Param returns the query parameter name of k, or "" for None.
func (k Kind) Param() string { return byKind[k].param }

// Params lists the supported query parameters in precedence order.
func Params() []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.param
	}
	return out
}

// Filter is a single optional predicate.
type Filter struct {
	Kind  Kind
	Value string
}

// FromQuery picks the first non-empty supported parameter of q. Other
// parameters are ignored; with none present the zero Filter is returned.
func FromQuery(q url.Values) Filter {
	for _, k := range kinds {
		if v := q.Get(k.param); v != "" {
			return Filter{Kind: k.kind, Value: v}
		}
	}
	return Filter{}
}

// Parse builds a Filter from a parameter name and value.
func Parse(param, value string) (Filter, error) {
	for _, k := range kinds {
		if k.param == param {
			return Filter{Kind: k.kind, Value: value}, nil
		}
	}
	return Filter{}, fmt.Errorf("%w: %q", ErrUnknownField, param)
}

// Apply returns the records matching f in their original order. The zero
// Filter returns records unchanged. An empty selection yields *NoMatchError.
func Apply(records []model.Product, f Filter) ([]model.Product, error) {
	spec, ok := byKind[f.Kind]
	if !ok {
		return records, nil
	}
	out := make([]model.Product, 0, len(records))
	for _, p := range records {
		if spec.match(p, f.Value) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, &NoMatchError{Param: spec.param}
	}
	return out, nil
}
