// Package openapi reads the generated swagger document and checks that a
// revision stays backward compatible with a base version.
package openapi

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var httpMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// Operation identifies a documented endpoint.
type Operation struct {
	Method string
	Path   string
}

func (o Operation) String() string {
	return strings.ToUpper(o.Method) + " " + o.Path
}

// Spec is the subset of a swagger document compatibility cares about:
// path -> method -> set of response codes.
type Spec struct {
	Paths map[string]map[string]map[string]struct{}
}

// CoreOperations are the endpoints clients of the events API depend on.
var CoreOperations = []Operation{
	{Method: "get", Path: "/users"},
	{Method: "post", Path: "/users"},
	{Method: "get", Path: "/users/{id}"},
	{Method: "put", Path: "/users/{id}"},
	{Method: "get", Path: "/events"},
	{Method: "post", Path: "/events"},
	{Method: "get", Path: "/events/{id}"},
	{Method: "put", Path: "/events/{id}"},
	{Method: "delete", Path: "/events/{id}"},
	{Method: "post", Path: "/events/{id}/image"},
}

type rawDocument struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

type rawOperation struct {
	Responses map[string]yaml.Node `yaml:"responses"`
}

// Load reads and parses a swagger.yaml file.
func Load(path string) (*Spec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse builds a Spec from swagger YAML (or JSON) bytes.
func Parse(raw []byte) (*Spec, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	spec := &Spec{Paths: make(map[string]map[string]map[string]struct{}, len(doc.Paths))}
	for path, item := range doc.Paths {
		ops := make(map[string]map[string]struct{})
		for key, node := range item {
			method := strings.ToLower(strings.TrimSpace(key))
			if _, ok := httpMethods[method]; !ok {
				continue
			}
			var op rawOperation
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("decode %s %s: %w", strings.ToUpper(method), path, err)
			}
			codes := make(map[string]struct{}, len(op.Responses))
			for code := range op.Responses {
				if c := strings.ToLower(strings.TrimSpace(code)); c != "" {
					codes[c] = struct{}{}
				}
			}
			ops[method] = codes
		}
		if len(ops) > 0 {
			spec.Paths[path] = ops
		}
	}
	return spec, nil
}

// Has reports whether the spec documents op.
func (s *Spec) Has(op Operation) bool {
	_, ok := s.Paths[op.Path][strings.ToLower(op.Method)]
	return ok
}

// Compare lists every path, operation or response code present in base but
// missing from revision. Additions are allowed.
func Compare(base, revision *Spec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, baseCodes := range baseOps {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, "removed operation: "+Operation{Method: method, Path: path}.String())
				continue
			}
			for code := range baseCodes {
				if _, ok := revCodes[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s",
						Operation{Method: method, Path: path}, strings.ToUpper(code)))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}

// MissingOperations returns the required operations spec does not document.
func MissingOperations(spec *Spec, required []Operation) []Operation {
	var missing []Operation
	for _, op := range required {
		if !spec.Has(op) {
			missing = append(missing, op)
		}
	}
	return missing
}
