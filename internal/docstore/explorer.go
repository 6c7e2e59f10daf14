package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoSearch is returned by Lookup before any successful Search in the same
// exploration.
var ErrNoSearch = errors.New("cannot lookup without a successful search first")

// Explorer walks a document store one document at a time. It holds exactly
// one piece of mutable state, the currently open document plus the lookup
// cursor, and is scoped to a single agent run: allocate a fresh Explorer per
// run and do not share it across goroutines.
type Explorer struct {
	store Store

	doc         *Document
	lookupTerm  string
	lookupIndex int
}

// NewExplorer binds an explorer to a store with no document open.
func NewExplorer(store Store) *Explorer {
	return &Explorer{store: store}
}

// Search opens the document matching term and returns its summary, or the
// store's suggestion text when nothing matches. A miss closes any previously
// open document.
func (e *Explorer) Search(ctx context.Context, term string) (string, error) {
	doc, suggestion, err := e.store.Search(ctx, term)
	if err != nil {
		return "", err
	}

	e.lookupTerm = ""
	e.lookupIndex = 0
	if doc == nil {
		e.doc = nil
		return suggestion, nil
	}
	e.doc = doc
	return doc.Summary(), nil
}

// Lookup returns the next paragraph of the open document containing term.
// Repeating the same term advances through occurrences; a new term restarts
// from the first.
func (e *Explorer) Lookup(ctx context.Context, term string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.doc == nil {
		return "", ErrNoSearch
	}

	if !strings.EqualFold(term, e.lookupTerm) {
		e.lookupTerm = term
		e.lookupIndex = 0
	} else {
		e.lookupIndex++
	}

	var matches []string
	needle := strings.ToLower(term)
	for _, p := range paragraphs(e.doc.Content) {
		if strings.Contains(strings.ToLower(p), needle) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		return "No Results", nil
	}
	if e.lookupIndex >= len(matches) {
		return "No More Results", nil
	}
	return fmt.Sprintf("(Result %d/%d) %s", e.lookupIndex+1, len(matches), matches[e.lookupIndex]), nil
}
