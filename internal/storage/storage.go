package storage

import "context"

// ObjectArchive captures the minimal operations the import flow needs to
// keep raw uploaded files around for audit.
type ObjectArchive interface {
	Put(ctx context.Context, key string, contentType string, data []byte) error
}

// NoopArchive discards uploads; used when no archive is configured.
type NoopArchive struct{}

func (NoopArchive) Put(context.Context, string, string, []byte) error { return nil }
