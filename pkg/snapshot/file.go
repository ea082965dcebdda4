package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileStore stores snapshots in a local directory. Each object is written
// next to a ".meta.json" sidecar recording its content type.
type FileStore struct {
	dir string
}

type fileMeta struct {
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

// Put implements Store. The object is written to a temporary file and
// renamed into place.
func (s *FileStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	meta, err := json.Marshal(fileMeta{ContentType: contentType, Size: len(body), CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return os.WriteFile(path+".meta.json", meta, 0644)
}

// Get returns the body and content type stored under key.
func (s *FileStore) Get(key string) (body []byte, contentType string, err error) {
	if !validKey(key) {
		return nil, "", ErrInvalidKey
	}
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	body, err = os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var meta fileMeta
	if data, err := os.ReadFile(path + ".meta.json"); err == nil {
		if json.Unmarshal(data, &meta) == nil {
			contentType = meta.ContentType
		}
	}
	return body, contentType, nil
}
