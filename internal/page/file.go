package page

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads a saved positions page from disk. Inline srcdoc iframes in
// the file stand in for embedded frames.
type FileSource struct {
	Path     string
	Hostname string
}

// NewFileSource creates a source for a saved HTML file. The hostname is used
// for broker detection; leave it empty to get the default strategy order.
func NewFileSource(path, hostname string) *FileSource {
	return &FileSource{Path: path, Hostname: hostname}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Capture(_ context.Context) (*Page, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read page file: %w", err)
	}
	return &Page{Hostname: f.Hostname, Main: string(data)}, nil
}
