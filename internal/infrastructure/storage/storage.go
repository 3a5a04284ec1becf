// Package storage provides the slot-oriented key/value media the task store
// persists its collections into.
package storage

import (
	"context"
	"errors"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned by Get when a slot has never been written or was deleted.
var ErrNotFound = errors.New("storage: slot not found")

// Entry is a single slot write.
type Entry struct {
	Key   string
	Value []byte
}

// Backend is a durable medium holding named slots of opaque bytes.
// PutAll must apply every entry or none of them.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PutAll(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Put writes a single slot.
func Put(ctx context.Context, b Backend, key string, value []byte) error {
	return b.PutAll(ctx, Entry{Key: key, Value: value})
}
