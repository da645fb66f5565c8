package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned when the requested key is not in the bucket.
var ErrObjectNotFound = errors.New("object not found in storage")

// Asset is a cached binary object with its content type.
type Asset struct {
	ContentType string
	Data        []byte
}

// AssetCache stores proxied exercise animations so repeat requests skip the catalog.
type AssetCache interface {
	// Get returns ErrObjectNotFound on a cache miss.
	Get(ctx context.Context, key string) (*Asset, error)
	Put(ctx context.Context, key string, asset Asset) error
}
