// Package metadata builds and checks the JSON documents referenced by a
// media's metadata URI. Generated documents are minified with keys sorted
// so the same fields always hash to the same metadata digest.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"tuli_go/internal/domain"
)

// Version20210101 is the only schema currently published.
const Version20210101 = "tuli-20210101"

type field struct {
	name     string
	kind     string // JSON type name
	required bool
}

type schema struct {
	fields               []field
	additionalProperties bool
}

var schemas = map[string]schema{
	Version20210101: {
		fields: []field{
			{name: "description", kind: "string", required: true},
			{name: "mimeType", kind: "string", required: true},
			{name: "name", kind: "string", required: true},
			{name: "version", kind: "string", required: true},
		},
	},
}

// Versions lists the supported schema versions.
func Versions() []string {
	out := make([]string, 0, len(schemas))
	for v := range schemas {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Validate checks doc against the named schema.
func Validate(version string, doc map[string]any) error {
	s, ok := schemas[version]
	if !ok {
		return domain.Invariantf("version", "unsupported metadata schema version %q", version)
	}

	var problems []string
	known := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		known[f.name] = true
		v, present := doc[f.name]
		if !present {
			if f.required {
				problems = append(problems, fmt.Sprintf("requires property %q", f.name))
			}
			continue
		}
		if kind := jsonKind(v); kind != f.kind {
			problems = append(problems, fmt.Sprintf("%s is %s, want %s", f.name, kind, f.kind))
		}
	}
	if !s.additionalProperties {
		extra := make([]string, 0)
		for k := range doc {
			if !known[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			problems = append(problems, fmt.Sprintf("additional property %q is not allowed", k))
		}
	}
	if len(problems) > 0 {
		return domain.Invariantf("metadata", "metadata does not match %s: %s", version, strings.Join(problems, "; "))
	}
	return nil
}

// Generate validates doc and renders it as minified, key-sorted JSON.
func Generate(version string, doc map[string]any) (string, error) {
	if err := Validate(version, doc); err != nil {
		return "", err
	}
	return Minify(doc)
}

// Minify renders v with sorted keys, no insignificant whitespace and no
// HTML escaping.
func Minify(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Parse decodes a metadata document.
func Parse(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parse metadata: document is not an object")
	}
	return doc, nil
}

// Hash is the metadata digest that Generate's output commits to.
func Hash(minified string) [32]byte {
	return domain.SHA256FromBytes([]byte(minified))
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
