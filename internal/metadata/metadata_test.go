package metadata

import (
	"errors"
	"strings"
	"testing"

	"tuli_go/internal/domain"
)

func sample() map[string]any {
	return map[string]any{
		"version":     Version20210101,
		"name":        "blah blah",
		"description": "blah blah blah",
		"mimeType":    "text/plain",
	}
}

func TestGenerate_SortedAndMinified(t *testing.T) {
	got, err := Generate(Version20210101, sample())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := `{"description":"blah blah blah","mimeType":"text/plain","name":"blah blah","version":"tuli-20210101"}`
	if got != want {
		t.Errorf("Generate =\n%s\nwant\n%s", got, want)
	}

	again, _ := Generate(Version20210101, sample())
	if Hash(got) != Hash(again) {
		t.Error("same fields must hash identically")
	}
}

func TestGenerate_NoHTMLEscaping(t *testing.T) {
	doc := sample()
	doc["description"] = "<b>&</b>"
	got, err := Generate(Version20210101, doc)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(got, `"<b>&</b>"`) {
		t.Errorf("unexpected escaping: %s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		version string
		mutate  func(map[string]any)
		wantErr string
	}{
		{"valid", Version20210101, func(map[string]any) {}, ""},
		{"missing name", Version20210101, func(d map[string]any) { delete(d, "name") }, `requires property "name"`},
		{"wrong type", Version20210101, func(d map[string]any) { d["mimeType"] = 3.0 }, "mimeType is number, want string"},
		{"extra field", Version20210101, func(d map[string]any) { d["image"] = "x" }, `additional property "image"`},
		{"unknown version", "tuli-19990101", func(map[string]any) {}, "unsupported metadata schema version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sample()
			tt.mutate(doc)
			err := Validate(tt.version, doc)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
			if !errors.Is(err, domain.ErrInvariant) {
				t.Errorf("expected invariant error, got %T", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`{"name":"x"}`))
	if err != nil || doc["name"] != "x" {
		t.Fatalf("Parse = %v, %v", doc, err)
	}
	if _, err := Parse([]byte(`null`)); err == nil {
		t.Error("null document should fail")
	}
	if _, err := Parse([]byte(`[`)); err == nil {
		t.Error("malformed document should fail")
	}
}
