// Package docstore provides the document-exploration backend for the
// react-docstore agent variant: a title-keyed store plus an Explorer holding
// the per-run "currently open document" state.
package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is a stored text document.
type Document struct {
	Title   string
	Content string
}

// Summary returns the first paragraph of the document.
func (d Document) Summary() string {
	for _, p := range paragraphs(d.Content) {
		return p
	}
	return ""
}

// Store finds documents by title.
type Store interface {
	// Search returns the document matching term, or a textual suggestion
	// ("Could not find ...") when no document matches.
	Search(ctx context.Context, term string) (*Document, string, error)
}

// InMemory is a Store backed by a map of documents keyed by normalized title.
type InMemory struct {
	docs   map[string]Document
	titles []string
}

// NewInMemory builds a store from the given documents.
func NewInMemory(docs ...Document) *InMemory {
	s := &InMemory{docs: make(map[string]Document, len(docs))}
	for _, d := range docs {
		key := normalize(d.Title)
		if _, ok := s.docs[key]; !ok {
			s.titles = append(s.titles, d.Title)
		}
		s.docs[key] = d
	}
	sort.Strings(s.titles)
	return s
}

// LoadDir builds a store from a directory of text files. The file name
// without extension becomes the document title.
func LoadDir(dir string) (*InMemory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read docstore dir: %w", err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".txt", ".md":
		default:
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}
		title := strings.TrimSuffix(name, filepath.Ext(name))
		docs = append(docs, Document{Title: title, Content: string(data)})
	}
	return NewInMemory(docs...), nil
}

// Search implements Store. Title matching is case-insensitive; misses return
// suggestion text listing similar titles.
func (s *InMemory) Search(ctx context.Context, term string) (*Document, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	if d, ok := s.docs[normalize(term)]; ok {
		return &d, "", nil
	}

	similar := s.similarTitles(term, 5)
	if len(similar) == 0 {
		return nil, fmt.Sprintf("Could not find [%s].", term), nil
	}
	return nil, fmt.Sprintf("Could not find [%s]. Similar: [%s]", term, strings.Join(similar, ", ")), nil
}

// similarTitles returns up to limit titles sharing a word or substring with term.
func (s *InMemory) similarTitles(term string, limit int) []string {
	needle := normalize(term)
	words := strings.Fields(needle)

	var out []string
	for _, title := range s.titles {
		key := normalize(title)
		match := strings.Contains(key, needle) || strings.Contains(needle, key)
		for _, w := range words {
			if match {
				break
			}
			match = strings.Contains(key, w)
		}
		if match {
			out = append(out, title)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func paragraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(content, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
