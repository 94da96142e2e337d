package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/stackit-qa/stackit-api/internal/routes"
)

// APIInfo is the application metadata published in the OpenAPI document.
type APIInfo struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// OpenAPIDocument is the subset of OpenAPI 3.1 the composer can describe on its
// own: its fixed endpoints plus one tagged path per delegated group.
type OpenAPIDocument struct {
	OpenAPI string              `json:"openapi" yaml:"openapi"`
	Info    APIInfo             `json:"info" yaml:"info"`
	Tags    []OpenAPITag        `json:"tags" yaml:"tags"`
	Paths   map[string]PathItem `json:"paths" yaml:"paths"`
}

// OpenAPITag groups operations belonging to one collaborator.
type OpenAPITag struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem holds the operations of a path, keyed by lower-case method.
type PathItem struct {
	Summary     string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Operations  map[string]Operation `json:"-" yaml:"-"`
}

// Operation is a single method on a path.
type Operation struct {
	Tags      []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary   string              `json:"summary" yaml:"summary"`
	Responses map[string]Response `json:"responses" yaml:"responses"`
}

// Response describes one response code.
type Response struct {
	Description string `json:"description" yaml:"description"`
}

// MarshalJSON flattens the operations next to the path-level fields.
func (p PathItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.flatten())
}

// MarshalYAML flattens the operations next to the path-level fields.
func (p PathItem) MarshalYAML() (any, error) {
	return p.flatten(), nil
}

func (p PathItem) flatten() map[string]any {
	out := make(map[string]any, len(p.Operations)+2)
	if p.Summary != "" {
		out["summary"] = p.Summary
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	for method, op := range p.Operations {
		out[method] = op
	}
	return out
}

var delegatedMethods = []string{"get", "post", "put", "patch", "delete"}

// BuildOpenAPI describes the composer's own endpoints and every route group.
func BuildOpenAPI(info APIInfo, groups []routes.Group) OpenAPIDocument {
	ok := map[string]Response{"200": {Description: "OK"}}
	doc := OpenAPIDocument{
		OpenAPI: "3.1.0",
		Info:    info,
		Tags:    make([]OpenAPITag, 0, len(groups)),
		Paths: map[string]PathItem{
			"/": {Operations: map[string]Operation{
				"get": {Summary: "Welcome message", Responses: ok},
			}},
			"/health": {Operations: map[string]Operation{
				"get": {Summary: "Liveness probe", Responses: ok},
			}},
			"/healthz": {Operations: map[string]Operation{
				"get": {Summary: "Readiness probe", Responses: map[string]Response{
					"200": {Description: "All checks passed"},
					"503": {Description: "A dependency is unavailable"},
				}},
			}},
		},
	}

	for _, g := range groups {
		doc.Tags = append(doc.Tags, OpenAPITag{
			Name:        g.Tag,
			Description: fmt.Sprintf("Endpoints under %s", g.Prefix),
		})
		ops := make(map[string]Operation, len(delegatedMethods))
		for _, m := range delegatedMethods {
			ops[m] = Operation{
				Tags:    []string{g.Tag},
				Summary: fmt.Sprintf("%s %s", strings.ToUpper(m), g.Prefix),
				Responses: map[string]Response{
					"default": {Description: "Response produced by the " + g.Key + " service"},
					"502":     {Description: "Upstream service unavailable"},
				},
			}
		}
		doc.Paths[g.Prefix] = PathItem{
			Summary:     g.Tag,
			Description: fmt.Sprintf("Every path under %s is handled by the %s service.", g.Prefix, g.Key),
			Operations:  ops,
		}
	}
	return doc
}

// OpenAPIHandler serves a pre-rendered OpenAPI document.
type OpenAPIHandler struct {
	jsonDoc []byte
	yamlDoc []byte
}

// NewOpenAPIHandler renders doc once in both formats.
func NewOpenAPIHandler(doc OpenAPIDocument) (*OpenAPIHandler, error) {
	jsonDoc, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render OpenAPI JSON: %w", err)
	}
	yamlDoc, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render OpenAPI YAML: %w", err)
	}
	return &OpenAPIHandler{jsonDoc: jsonDoc, yamlDoc: yamlDoc}, nil
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

// ServeYAML serves the document in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.yamlDoc)
}

// ServeJSON serves the document in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
