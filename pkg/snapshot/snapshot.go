package snapshot

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"

	cerrors "github.com/carbyne-dev/carbyne/internal/errors"
	"github.com/carbyne-dev/carbyne/pkg/dom/htmldom"
)

// ContentTypeHTML is the content type of captured documents.
const ContentTypeHTML = "text/html; charset=utf-8"

// ErrInvalidKey is returned for keys that are empty or escape the store.
var ErrInvalidKey = errors.New("snapshot: invalid key")

// Store is the interface for snapshot storage backends.
type Store interface {
	// Put stores body under key, replacing any previous object.
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// Key returns a new key under prefix. Keys sort by creation time.
func Key(prefix string) string {
	return prefix + strings.ToLower(ulid.Make().String()) + ".html"
}

// Capture renders doc and stores it under a new key beneath prefix. doc must
// not be mutated concurrently; call Capture on the loop driving its tree.
func Capture(ctx context.Context, store Store, prefix string, doc *htmldom.Document) (string, error) {
	var buf bytes.Buffer
	if err := doc.Render(&buf, doc.Root()); err != nil {
		return "", cerrors.New(cerrors.CodeSnapshotWrite).WithDetail("render document").Wrap(err)
	}
	key := Key(prefix)
	if err := store.Put(ctx, key, ContentTypeHTML, buf.Bytes()); err != nil {
		return "", cerrors.New(cerrors.CodeSnapshotWrite).WithDetailf("put %s", key).Wrap(err)
	}
	return key, nil
}

// validKey rejects empty, absolute and parent-relative keys.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
