// Package fs implements driven.DocumentSource over a directory tree on
// local disk, filtered by an extension allow-list, per spec.md §4.6/§6.
package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
)

// Source enumerates files under Root recursively, in a stable
// (lexicographic, depth-first) order, skipping any extension not present
// in Extensions (when Extensions is non-empty).
type Source struct {
	Root       string
	Extensions map[string]struct{} // e.g. {".txt": {}, ".md": {}}
}

// New creates a filesystem Source. An empty extensions set means "accept
// every regular file".
func New(root string, extensions []string) *Source {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[normalizeExt(ext)] = struct{}{}
	}
	return &Source{Root: root, Extensions: set}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Iterate implements driven.DocumentSource. It walks the tree with
// filepath.WalkDir, which already visits entries in lexicographic order
// within each directory, giving the stable enumeration order spec.md §4.6
// requires.
func (s *Source) Iterate(yield func(domain.Document, error) bool) error {
	return filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if !yield(domain.Document{}, err) {
				return filepath.SkipAll
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if len(s.Extensions) > 0 {
			if _, ok := s.Extensions[normalizeExt(filepath.Ext(path))]; !ok {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			if !yield(domain.Document{}, err) {
				return filepath.SkipAll
			}
			return nil
		}

		doc := domain.Document{
			Locator:   path,
			MTime:     info.ModTime().Unix(),
			Title:     d.Name(),
			Extension: strings.TrimPrefix(filepath.Ext(path), "."),
			Type:      domain.DocumentTypeFile,
			Size:      info.Size(),
			GetText: func() (string, error) {
				b, err := os.ReadFile(path)
				if err != nil {
					return "", err
				}
				return string(b), nil
			},
		}

		if !yield(doc, nil) {
			return filepath.SkipAll
		}
		return nil
	})
}

// sortedExtensions is exposed for tests/debugging only.
func (s *Source) sortedExtensions() []string {
	out := make([]string, 0, len(s.Extensions))
	for ext := range s.Extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
