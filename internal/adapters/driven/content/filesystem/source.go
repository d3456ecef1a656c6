// Package filesystem serves content from a local mirror of the release and
// watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Ensure Source implements the content ports.
var (
	_ driven.ContentSource   = (*Source)(nil)
	_ driven.DirectoryLister = (*Source)(nil)
)

// Source reads paths relative to a root directory.
type Source struct {
	root string
}

// New creates a source rooted at root. A file:// prefix is accepted.
func New(root string) *Source {
	return &Source{root: filepath.Clean(strings.TrimPrefix(root, "file://"))}
}

// Root returns the root directory.
func (s *Source) Root() string {
	return s.root
}

// resolve joins p to the root, refusing paths that escape it.
func (s *Source) resolve(p string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(p))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &domain.FetchError{Path: p, Err: fmt.Errorf("%w: path escapes content root", domain.ErrInvalidInput)}
	}
	return full, nil
}

// Get reads the file at p.
func (s *Source) Get(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fsError(p, err)
	}
	return data, nil
}

// List returns the entries of directory p. Hidden entries are skipped.
func (s *Source) List(ctx context.Context, p string) ([]domain.ListingEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(full)
	if err != nil {
		return nil, fsError(p, err)
	}

	entries := make([]domain.ListingEntry, 0, len(dirEntries))
	for _, e := range dirEntries {
		if isHidden(e.Name()) {
			continue
		}
		kind := domain.ListingKindFile
		if e.IsDir() {
			kind = domain.ListingKindDir
		}
		entries = append(entries, domain.ListingEntry{Name: e.Name(), Kind: kind})
	}
	return entries, nil
}

func fsError(p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.FetchError{Path: p, Err: domain.ErrNotFound}
	}
	return &domain.FetchError{Path: p, Err: err}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
