// Package storage keeps scraped posts as one JSON document per post under
// <data_dir>/<page>/ and reads them back as datasets.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pagepulse/internal/domain"
)

const linksFile = "post_links.json"

// FileStore reads and writes datasets below a root directory.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// SaveLinks writes the collected post links for a page.
func (fs *FileStore) SaveLinks(page string, links []string) error {
	if links == nil {
		links = []string{}
	}
	return fs.writeJSON(page, linksFile, links)
}

// SavePost writes the post scraped at position index of the link list.
func (fs *FileStore) SavePost(page string, index int, post domain.Post) error {
	return fs.writeJSON(page, strconv.Itoa(index)+".json", post)
}

// writeJSON writes through a temp file so an interrupted run never leaves a
// truncated document behind.
func (fs *FileStore) writeJSON(page, name string, v any) error {
	dir := filepath.Join(fs.root, page)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

// LoadDatasets reads every dataset directory, sorted by name. Posts keep
// the numeric order of their file names. Files whose name contains
// "post_links" are link lists, not posts, and are skipped.
func (fs *FileStore) LoadDatasets() ([]domain.Dataset, error) {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", fs.root, err)
	}

	var datasets []domain.Dataset
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		posts, err := fs.loadPosts(filepath.Join(fs.root, e.Name()))
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, domain.Dataset{Name: e.Name(), Posts: posts})
	}

	if len(datasets) == 0 {
		return nil, fmt.Errorf("%s: %w", fs.root, domain.ErrNoDatasets)
	}

	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Name < datasets[j].Name })
	return datasets, nil
}

func (fs *FileStore) loadPosts(dir string) ([]domain.Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.Contains(name, "post_links") {
			continue
		}
		if filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}

	sort.SliceStable(names, func(i, j int) bool { return lessByIndex(names[i], names[j]) })

	posts := make([]domain.Post, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		var p domain.Post
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrMalformedPost, err)
		}
		posts = append(posts, p)
	}

	return posts, nil
}

var trailingIndex = regexp.MustCompile(`(\d+)\.json$`)

// lessByIndex orders "2.json" before "10.json" and "page_post_2.json"
// before "page_post_10.json". Names without a numeric index sort after
// numbered ones, by name.
func lessByIndex(a, b string) bool {
	ai, aok := fileIndex(a)
	bi, bok := fileIndex(b)

	switch {
	case aok && bok && ai != bi:
		return ai < bi
	case aok && !bok:
		return true
	case !aok && bok:
		return false
	default:
		return a < b
	}
}

func fileIndex(name string) (int, bool) {
	m := trailingIndex.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
