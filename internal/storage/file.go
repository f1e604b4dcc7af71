package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CorruptStoreError reports a store file that exists but cannot be parsed
// into a post collection. It is a fatal startup condition: proceeding with
// an empty collection would silently discard whatever the file holds.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("store file %s is not a valid post collection: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// FileStore reads and writes the full post collection at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path. The file
// is not touched until Load or Save is called.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

// Load reads the whole collection. A missing file is bootstrapped as an
// empty collection rather than treated as an error; an unparseable file
// yields a CorruptStoreError.
func (f *FileStore) Load() ([]Post, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := f.Save(nil); err != nil {
				return nil, err
			}
			return []Post{}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, &CorruptStoreError{Path: f.path, Err: err}
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// Save replaces the persisted collection with posts. The data is written
// to a temp file in the store's directory and renamed over the real file,
// so readers either see the old collection or the new one, never a
// partial write.
func (f *FileStore) Save(posts []Post) error {
	if posts == nil {
		posts = []Post{}
	}

	data, err := json.MarshalIndent(posts, "", "    ")
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".posts-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp store file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
