package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/domain"
)

func strptr(s string) *string { return &s }

func TestFileStore_SaveAndLoad_RoundTripsInOrder(t *testing.T) {
	// Arrange
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.SaveLinks("acme", []string{"a", "b"}))
	for _, i := range []int{10, 2, 0} {
		p := domain.Post{PostLink: filepath.Join("post", string(rune('a'+i))), PageName: "Acme", CommentData: []domain.Comment{}}
		require.NoError(t, store.SavePost("acme", i, p))
	}
	require.NoError(t, store.SavePost("beta", 0, domain.Post{PageName: "Beta"}))

	// Act
	datasets, err := store.LoadDatasets()

	// Assert
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "acme", datasets[0].Name)
	assert.Equal(t, "beta", datasets[1].Name)
	require.Len(t, datasets[0].Posts, 3, "post_links.json is not a post")
	assert.Equal(t, filepath.Join("post", "a"), datasets[0].Posts[0].PostLink)
	assert.Equal(t, filepath.Join("post", "c"), datasets[0].Posts[1].PostLink)
	assert.Equal(t, filepath.Join("post", "k"), datasets[0].Posts[2].PostLink)
}

func TestFileStore_SavePost_KeepsNullsAndReplyShape(t *testing.T) {
	// Arrange
	root := t.TempDir()
	store := NewFileStore(root)
	replies := []domain.Comment{{CommentText: strptr("yes")}}
	post := domain.Post{
		PostLink: "https://fb.com/acme/posts/1",
		CommentData: []domain.Comment{
			{CommentText: strptr("hi"), CommenterName: strptr("Ann"), Replies: &replies},
		},
	}

	// Act
	require.NoError(t, store.SavePost("acme", 0, post))

	// Assert
	raw, err := os.ReadFile(filepath.Join(root, "acme", "0.json"))
	require.NoError(t, err)
	doc := string(raw)
	assert.Contains(t, doc, `"post_text": null`)
	assert.Contains(t, doc, `"replies": [`)
	assert.Equal(t, 1, strings.Count(doc, `"replies"`), "replies never carry a replies key")
}

func TestFileStore_LoadDatasets_SkipsNonDatasets(t *testing.T) {
	// Arrange
	root := t.TempDir()
	store := NewFileStore(root)
	require.NoError(t, store.SavePost("acme", 0, domain.Post{}))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "acme", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "acme", "old_post_links.json"), []byte("[]"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "acme", "sub.json"), 0o755))

	// Act
	datasets, err := store.LoadDatasets()

	// Assert
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Len(t, datasets[0].Posts, 1)
}

func TestFileStore_LoadDatasets_MalformedPostAborts(t *testing.T) {
	// Arrange
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "acme"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "acme", "0.json"), []byte("{not json"), 0o644))

	// Act
	_, err := NewFileStore(root).LoadDatasets()

	// Assert
	assert.ErrorIs(t, err, domain.ErrMalformedPost)
}

func TestFileStore_LoadDatasets_Empty(t *testing.T) {
	_, err := NewFileStore(t.TempDir()).LoadDatasets()
	assert.ErrorIs(t, err, domain.ErrNoDatasets)
}

func TestFileStore_LoadDatasets_MissingRoot(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "missing")).LoadDatasets()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLessByIndex(t *testing.T) {
	assert.True(t, lessByIndex("2.json", "10.json"))
	assert.False(t, lessByIndex("10.json", "2.json"))
	assert.True(t, lessByIndex("9.json", "extra.json"))
	assert.True(t, lessByIndex("a.json", "b.json"))
	assert.True(t, lessByIndex("page_post_2.json", "page_post_10.json"))
}
