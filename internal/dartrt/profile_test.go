package dartrt_test

import (
	"os"
	"path/filepath"
	"testing"

	"dartlift/internal/dartrt"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dartlift.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
[runtime]
smi_tag_size = 1
compressed_pointers = true
word_size = 8

[thread]
stack_limit = 72
`)
	p, err := dartrt.LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Runtime.WordSize != 8 || !p.Runtime.CompressedPointers {
		t.Errorf("runtime config = %+v", p.Runtime)
	}
	if p.Thread["stack_limit"] != 72 {
		t.Errorf("thread override = %v", p.Thread)
	}
}

func TestLoadProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing runtime", "[thread]\nstack_limit = 72\n"},
		{"bad word size", "[runtime]\nsmi_tag_size = 1\nword_size = 3\n"},
		{"zero tag size", "[runtime]\nsmi_tag_size = 0\nword_size = 8\n"},
		{"negative offset", "[runtime]\nsmi_tag_size = 1\nword_size = 8\n[thread]\ntop = -8\n"},
		{"not toml", "runtime: yes\n  - nope\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, tt.content)
			if _, err := dartrt.LoadProfile(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDefaultProfile(t *testing.T) {
	p := dartrt.DefaultProfile()
	if p.Runtime.SmiTagSize != dartrt.SmiTagSize {
		t.Errorf("SmiTagSize = %d", p.Runtime.SmiTagSize)
	}
	if p.Thread == nil {
		t.Error("Thread map should be initialized")
	}
}
