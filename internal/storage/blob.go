// Package storage holds uploaded lecture materials. Keys are
// "lectures/{moduleID}/{filename}".
package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
