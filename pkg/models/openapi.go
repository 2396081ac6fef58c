package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// OpenAPIDoc is the subset of an OpenAPI document needed to list operations.
type OpenAPIDoc struct {
	OpenAPI string                     `json:"openapi"`
	Swagger string                     `json:"swagger"`
	Info    OpenAPIInfo                `json:"info"`
	Paths   map[string]OpenAPIPathItem `json:"paths"`
}

type OpenAPIInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type OpenAPIMethod struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// OpenAPIPathItem holds the operations of one path keyed by lower-case
// method. Path-level keys such as parameters, servers or summary are
// dropped while decoding.
type OpenAPIPathItem map[string]OpenAPIMethod

func (p *OpenAPIPathItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	item := make(OpenAPIPathItem, len(raw))
	for key, body := range raw {
		method := strings.ToLower(key)
		if !httpMethods[method] {
			continue
		}
		var m OpenAPIMethod
		if err := json.Unmarshal(body, &m); err != nil {
			return fmt.Errorf("operation %s: %w", strings.ToUpper(method), err)
		}
		item[method] = m
	}
	*p = item
	return nil
}

// Operation is one flattened (method, path) entry of the document.
type Operation struct {
	Method  string
	Path    string
	Summary string
	Tags    []string
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

// Operations flattens Paths sorted by path then method.
func (d OpenAPIDoc) Operations() []Operation {
	var ops []Operation
	for path, methods := range d.Paths {
		for method, m := range methods {
			if !httpMethods[strings.ToLower(method)] {
				continue
			}
			summary := m.Summary
			if summary == "" {
				summary = firstLine(m.Description)
			}
			ops = append(ops, Operation{
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: summary,
				Tags:    m.Tags,
			})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

// Version returns whichever of openapi/swagger the document declares.
func (d OpenAPIDoc) Version() string {
	if d.OpenAPI != "" {
		return d.OpenAPI
	}
	return d.Swagger
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
