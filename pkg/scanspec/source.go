package scanspec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MaxDocumentSize bounds how many bytes Load reads from a source.
const MaxDocumentSize = 4 << 20

// Source opens machine documents by name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// extensions are tried in order when a document name has none.
var extensions = []string{".yaml", ".yml", ".json"}

func candidates(name string) []string {
	if path.Ext(name) != "" {
		return []string{name}
	}
	out := make([]string, len(extensions))
	for i, ext := range extensions {
		out[i] = name + ext
	}
	return out
}

// DirSource reads documents from a local directory.
type DirSource struct {
	root string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) (*DirSource, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: directory is required", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidConfig, dir)
	}
	return &DirSource{root: abs}, nil
}

// Open opens name relative to the root. A name without extension is looked
// up as .yaml, .yml and .json in that order.
func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err, "open")
	}
	for _, candidate := range candidates(name) {
		p, err := s.resolvePath(candidate)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToRead, err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// resolvePath keeps every resolved path inside the root.
func (s *DirSource) resolvePath(name string) (string, error) {
	abs := filepath.Join(s.root, filepath.Clean(name))
	if !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}
	return abs, nil
}

func contextError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
}

// ReadDocument reads the raw bytes of a named document.
func ReadDocument(ctx context.Context, src Source, name string) ([]byte, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToRead, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: %s", ErrDocumentTooLarge, name)
	}
	return data, nil
}

// Load reads, parses and compiles a named document.
func Load(ctx context.Context, src Source, name string, reg *Registry) (*Library, error) {
	data, err := ReadDocument(ctx, src, name)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	lib, err := doc.Compile(reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return lib, nil
}
