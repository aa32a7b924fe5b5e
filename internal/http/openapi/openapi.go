// Package openapi embeds the OpenAPI document of the catalog API.
package openapi

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML contains the embedded OpenAPI document.
//
//go:embed openapi.yaml
var YAML []byte

// Operations returns the documented operations as "METHOD /path" strings,
// sorted.
func Operations() ([]string, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(YAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	var ops []string
	for path, item := range doc.Paths {
		for method := range item {
			switch method {
			case "get", "put", "post", "delete", "patch":
				ops = append(ops, fmt.Sprintf("%s %s", strings.ToUpper(method), path))
			}
		}
	}
	sort.Strings(ops)
	return ops, nil
}

