package listcodec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sharext-labs/sharext/internal/extension"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"extensions.sharext.json", true},
		{"/tmp/team/frontend.sharext.json", true},
		{"sharext.json", true},
		{"", false},
		{"extensions.json", false},
		{"extensions.sharext.json.bak", false},
	}
	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if tt.ok && err != nil {
			t.Errorf("ValidatePath(%q) = %v, want nil", tt.path, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ValidatePath(%q) = %v, want ErrInvalidPath", tt.path, err)
		}
	}
}

func TestWriteFileInvalidPathTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "extensions.json")

	err := WriteFile(target, []extension.Record{{ID: "pub.a", Name: "A"}})
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("WriteFile error = %v, want ErrInvalidPath", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("directory has %d entries after rejected write, want 0", len(entries))
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName())
	records := []extension.Record{
		{ID: "pub.z", Name: "Zeta"},
		{ID: "pub.a", Name: "Alpha"},
	}

	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("found %d files, want only the list (temp file left behind?)", len(entries))
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out.Records) != 2 || out.Records[0].ID != "pub.a" {
		t.Errorf("unexpected records: %+v", out.Records)
	}
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", DefaultFileName())
	err := WriteFile(path, []extension.Record{{ID: "pub.a"}})
	if !errors.Is(err, ErrIO) {
		t.Errorf("WriteFile error = %v, want ErrIO", err)
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile(testPath("nonexistent.sharext.json"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("ReadFile error = %v, want ErrIO", err)
	}
}
