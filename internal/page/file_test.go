package page

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSource_Capture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.html")
	if err := os.WriteFile(path, []byte(`<html><body>saved page</body></html>`), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path, "digital.fidelity.com")
	p, err := src.Capture(context.Background())
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if p.Hostname != "digital.fidelity.com" {
		t.Errorf("hostname: got %q", p.Hostname)
	}
	if p.Main == "" {
		t.Error("expected main document content")
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.html"), "")
	if _, err := src.Capture(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
