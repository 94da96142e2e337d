// Package routes holds the static table of API route groups and the
// collaborators that serve them.
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/stackit-qa/stackit-api/internal/validation"
)

// Module is a router collaborator: it owns every request under its group prefix.
// The router passed to RegisterRoutes already carries the prefix.
type Module interface {
	RegisterRoutes(r *mux.Router)
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(r *mux.Router)

// RegisterRoutes calls f(r).
func (f ModuleFunc) RegisterRoutes(r *mux.Router) { f(r) }

// Handler wraps a plain http.Handler as a Module serving the whole prefix.
func Handler(h http.Handler) Module {
	return ModuleFunc(func(r *mux.Router) {
		r.PathPrefix("").Handler(h)
	})
}

// Group is one row of the route table.
type Group struct {
	Key    string `validate:"required,alpha"`
	Prefix string `validate:"required,path_prefix"`
	Tag    string `validate:"required"`
	Module Module `validate:"required"`
}

// ReservedPaths are served by the composer itself; no group may claim them.
var ReservedPaths = []string{"/health", "/healthz", "/openapi.json", "/openapi.yaml"}

// ErrInvalidTable is returned by Validate for any route table defect.
var ErrInvalidTable = errors.New("invalid route table")

// Table is an ordered, immutable list of route groups.
type Table struct {
	groups []Group
}

// NewTable builds and validates a table.
func NewTable(groups ...Group) (*Table, error) {
	t := &Table{groups: append([]Group(nil), groups...)}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Groups returns a copy of the table rows in registration order.
func (t *Table) Groups() []Group {
	return append([]Group(nil), t.groups...)
}

// Lookup returns the group that owns path, if any.
func (t *Table) Lookup(path string) (Group, bool) {
	for _, g := range t.groups {
		if HasSegmentPrefix(path, g.Prefix) {
			return g, true
		}
	}
	return Group{}, false
}

// Validate checks every row and verifies that no prefix shadows another or a reserved path.
func (t *Table) Validate() error {
	var errs []error
	keys := make(map[string]bool, len(t.groups))

	for i, g := range t.groups {
		if err := validation.Validate.Struct(g); err != nil {
			errs = append(errs, fmt.Errorf("group %d (%q): %w", i, g.Prefix, err))
			continue
		}
		if keys[g.Key] {
			errs = append(errs, fmt.Errorf("group %d: duplicate key %q", i, g.Key))
		}
		keys[g.Key] = true

		for _, reserved := range ReservedPaths {
			if HasSegmentPrefix(reserved, g.Prefix) || HasSegmentPrefix(g.Prefix, reserved) {
				errs = append(errs, fmt.Errorf("group %q: prefix %q overlaps reserved path %q", g.Key, g.Prefix, reserved))
			}
		}

		for _, other := range t.groups[:i] {
			if HasSegmentPrefix(g.Prefix, other.Prefix) || HasSegmentPrefix(other.Prefix, g.Prefix) {
				errs = append(errs, fmt.Errorf("group %q: prefix %q overlaps %q", g.Key, g.Prefix, other.Prefix))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
	}
	return nil
}

// Mount registers every group on a segment-bounded subrouter of r. The
// middlewares run only for requests inside a group.
func (t *Table) Mount(r *mux.Router, middlewares ...mux.MiddlewareFunc) {
	for _, g := range t.groups {
		sub := r.PathPrefix(g.Prefix).MatcherFunc(segmentBoundary(g.Prefix)).Subrouter()
		sub.Use(middlewares...)
		g.Module.RegisterRoutes(sub)
	}
}

// HasSegmentPrefix reports whether path equals prefix or continues it with a
// "/". "/api/auth" prefixes "/api/auth/login" but not "/api/authors".
func HasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

func segmentBoundary(prefix string) mux.MatcherFunc {
	return func(r *http.Request, _ *mux.RouteMatch) bool {
		return HasSegmentPrefix(r.URL.Path, prefix)
	}
}
