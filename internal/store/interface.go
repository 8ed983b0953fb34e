package store

import (
	"bytes"
	"context"
	"errors"
	"io"

	"nightlies/internal/model"
)

var (
	ErrNotFound = errors.New("key not found")
)

// Value is the result of a lookup. Text is set for model.KindText reads,
// Body for model.KindStream reads; callers must close Body.
type Value struct {
	Text string
	Body io.ReadCloser
}

// Store is the read side of the artifact key-value store.
// Get returns an error wrapping ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string, kind model.Kind) (*Value, error)
	Close() error
}

// Publisher writes entries. Only the publish tooling uses it; the HTTP server never writes.
type Publisher interface {
	Put(ctx context.Context, key string, value []byte) error
}

// Backend is what every concrete store implements.
type Backend interface {
	Store
	Publisher
}

// valueOf decodes a fully materialized value according to kind.
func valueOf(data []byte, kind model.Kind) *Value {
	if kind == model.KindText {
		return &Value{Text: string(data)}
	}
	return &Value{Body: io.NopCloser(bytes.NewReader(data))}
}
