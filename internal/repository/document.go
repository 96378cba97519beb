package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document or record does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRepository stores JSON documents grouped by collection.
type DocumentRepository interface {
	Init(ctx context.Context) error
	Put(ctx context.Context, collection, id string, body []byte) error
	Get(ctx context.Context, collection, id string) ([]byte, error)
	List(ctx context.Context, collection string) ([][]byte, error)
	Delete(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string) (int, error)
}
