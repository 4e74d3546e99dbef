package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsJSON = `[
	{"dir": "new", "file": "new", "content": "# Writing scripts\n\nUse **arg**."},
	{"dir": "new", "file": "kenv-create", "title": "Environments", "content": "Kenvs group scripts."},
	{"dir": "new", "file": "snippets", "title": "Snippets", "content": "Expand text.", "discussion": "https://example.com/d/1"},
	{"dir": "other", "file": "new", "title": "Other", "content": "elsewhere"}
]`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(docsJSON), 0o644))

	store, err := Load(path, nil)
	require.NoError(t, err)
	require.Len(t, store.Docs(), 4)

	d, ok := store.Find("new", "new")
	require.True(t, ok)
	assert.Equal(t, "Writing scripts", d.Title)

	_, ok = store.Find("new", "missing")
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)
}

func TestAddPreview(t *testing.T) {
	store := New(mustDecode(t), nil)
	custom := func(context.Context, prompt.FocusedChoice) (string, error) { return "custom", nil }

	choices := store.AddPreview([]prompt.Choice{
		{Name: "New Script", Value: "new"},
		{Name: "Clone", Value: "kenv-clone"},
		{Name: "Kenv", Value: "kenv-create", Preview: custom},
	}, "new", "")

	require.Len(t, choices, 5)

	html, err := choices[0].Preview(context.Background(), prompt.FocusedChoice{})
	require.NoError(t, err)
	assert.Contains(t, html, `<div class="p-5 leading-loose prose dark:prose-dark">`)
	assert.Contains(t, html, "<strong>arg</strong>")

	assert.Nil(t, choices[1].Preview)

	html, err = choices[2].Preview(context.Background(), prompt.FocusedChoice{})
	require.NoError(t, err)
	assert.Equal(t, "custom", html)

	// kenv-create was skipped because its choice had a preview, so it is
	// listed again as a topic alongside snippets.
	assert.Equal(t, "Environments", choices[3].Name)
	assert.Equal(t, "Snippets", choices[4].Name)
	assert.Equal(t, "Discuss topic", choices[4].Description)
	assert.Equal(t, "snippets", choices[4].Value)
	require.NotNil(t, choices[4].Preview)
}

func TestAddPreviewUnmatchedKeepsDocs(t *testing.T) {
	store := New(mustDecode(t), nil)
	choices := store.AddPreview([]prompt.Choice{{Name: "x", Value: "x"}}, "new", "c")
	assert.Len(t, choices, 4)
}

func TestDiscussion(t *testing.T) {
	store := New(mustDecode(t), nil)

	url, err := store.Discussion("new", "snippets")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/d/1", url)

	_, err = store.Discussion("new", "new")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(docsJSON))
	}))
	defer srv.Close()

	store := New(nil, nil)
	require.NoError(t, store.Fetch(context.Background(), srv.URL))
	assert.Len(t, store.Docs(), 4)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(docsJSON))
	}))
	defer srv.Close()

	store := New(nil, nil)
	require.NoError(t, store.Fetch(context.Background(), srv.URL))
	assert.Equal(t, int32(2), hits.Load())
	assert.Len(t, store.Docs(), 4)
}

func TestFetchOpensBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := New(nil, nil)
	for i := 0; i < 3; i++ {
		assert.Error(t, store.Fetch(context.Background(), srv.URL))
	}
	seen := hits.Load()

	err := store.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, resilience.ErrOpen)
	assert.Equal(t, seen, hits.Load())
}

func TestNilStore(t *testing.T) {
	var store *Store
	assert.Empty(t, store.Docs())
	choices := store.AddPreview(prompt.Strings("a"), "new", "")
	assert.Len(t, choices, 1)
}

func mustDecode(t *testing.T) []Doc {
	t.Helper()
	docs, err := decode([]byte(docsJSON))
	require.NoError(t, err)
	return docs
}
