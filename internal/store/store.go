// Package store provides the blob storage used by batch jobs: a filesystem
// store on afero and an S3 store on aws-sdk-go-v2.
package store

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/vango-dev/urlkit/internal/config"
	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/pkg/routepath"
)

// ErrNotFound is wrapped by the error returned for a missing key.
var ErrNotFound = stderrors.New("store: object not found")

// Store reads and writes objects by slash-separated key.
type Store interface {
	// Get opens the object at key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put replaces the object at key with the contents of r.
	Put(ctx context.Context, key string, r io.Reader) error

	// Delete removes the object at key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Open returns the store selected by cfg.Storage.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Storage.Backend {
	case config.BackendS3:
		st, err = OpenS3(ctx, cfg.Storage)
	default:
		st, err = OpenDir(cfg.StoragePath())
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// cleanKey canonicalizes key and strips the leading slash. Keys that escape
// the root or contain backslashes are rejected.
func cleanKey(key string) (string, error) {
	if strings.ContainsAny(key, "?#") {
		return "", errors.New("U003").
			WithInput(key, strings.IndexAny(key, "?#")+1).
			WithDetail("object keys cannot contain '?' or '#'")
	}
	res, err := routepath.Canonicalize(key)
	if err != nil {
		return "", err
	}
	if res.Path == "/" {
		return "", errors.New("U003").WithDetail("empty object key")
	}
	return strings.TrimPrefix(res.Path, "/"), nil
}

func notFound(key string, err error) error {
	e := errors.New("U060").WithDetail("key " + key)
	if err != nil {
		return e.Wrap(stderrors.Join(ErrNotFound, err))
	}
	return e.Wrap(ErrNotFound)
}
