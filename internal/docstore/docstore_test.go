package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemorySearchHit(t *testing.T) {
	store := NewInMemory(Document{
		Title:   "Ada Lovelace",
		Content: "Ada Lovelace was an English mathematician.\n\nShe worked on the Analytical Engine.",
	})

	doc, suggestion, err := store.Search(context.Background(), "ada lovelace")
	require.NoError(t, err)
	require.Empty(t, suggestion)
	require.Equal(t, "Ada Lovelace", doc.Title)
	require.Equal(t, "Ada Lovelace was an English mathematician.", doc.Summary())
}

func TestInMemorySearchMissListsSimilarTitles(t *testing.T) {
	store := NewInMemory(
		Document{Title: "Ada Lovelace", Content: "x"},
		Document{Title: "Ada County", Content: "x"},
	)

	doc, suggestion, err := store.Search(context.Background(), "Ada")
	require.NoError(t, err)
	require.Nil(t, doc)
	require.Equal(t, "Could not find [Ada]. Similar: [Ada County, Ada Lovelace]", suggestion)
}

func TestInMemorySearchMissNoSimilar(t *testing.T) {
	store := NewInMemory(Document{Title: "Ada Lovelace", Content: "x"})

	doc, suggestion, err := store.Search(context.Background(), "Zebra")
	require.NoError(t, err)
	require.Nil(t, doc)
	require.Equal(t, "Could not find [Zebra].", suggestion)
}

func TestLoadDirReadsTextFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Canada.txt"), []byte("Ottawa is the capital."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "France.md"), []byte("Paris is the capital."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.bin"), []byte{0x00}, 0o644))

	store, err := LoadDir(dir)
	require.NoError(t, err)

	doc, _, err := store.Search(context.Background(), "Canada")
	require.NoError(t, err)
	require.Equal(t, "Ottawa is the capital.", doc.Content)

	doc, _, err = store.Search(context.Background(), "France")
	require.NoError(t, err)
	require.NotNil(t, doc)

	doc, _, err = store.Search(context.Background(), "ignore")
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestDocumentSummaryIsFirstParagraph(t *testing.T) {
	d := Document{Content: "\n\nFirst paragraph.\n\nSecond paragraph."}
	require.Equal(t, "First paragraph.", d.Summary())

	require.Equal(t, "", Document{}.Summary())
}
