package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stackit-qa/stackit-api/internal/config"
	"github.com/stackit-qa/stackit-api/internal/routes"
)

// GroupSpec is one fixed row of the route table, before a collaborator is bound.
type GroupSpec struct {
	Key    string
	Prefix string
	Tag    string
}

// Layout is the route table of the StackIt API in mount order.
var Layout = []GroupSpec{
	{Key: "auth", Prefix: "/api/auth", Tag: "Authentication"},
	{Key: "users", Prefix: "/api/users", Tag: "Users"},
	{Key: "questions", Prefix: "/api/questions", Tag: "Questions"},
	{Key: "answers", Prefix: "/api/answers", Tag: "Answers"},
	{Key: "comments", Prefix: "/api/comments", Tag: "Comments"},
}

// Bind attaches a collaborator to every row of Layout. modules is keyed by
// GroupSpec.Key; a missing entry leaves the module nil, which New rejects.
func Bind(modules map[string]routes.Module) []routes.Group {
	groups := make([]routes.Group, 0, len(Layout))
	for _, spec := range Layout {
		groups = append(groups, routes.Group{
			Key:    spec.Key,
			Prefix: spec.Prefix,
			Tag:    spec.Tag,
			Module: modules[spec.Key],
		})
	}
	return groups
}

// ProxyGroups binds every group to a reverse proxy towards its configured upstream.
func ProxyGroups(cfg *config.Config, log *zap.Logger, opts ...routes.ProxyOption) ([]routes.Group, error) {
	modules := make(map[string]routes.Module, len(Layout))
	for _, spec := range Layout {
		p, err := routes.NewProxy(spec.Key, cfg.Upstream(spec.Key), log, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStartup, err)
		}
		modules[spec.Key] = p
	}
	return Bind(modules), nil
}
