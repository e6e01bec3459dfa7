// Package boltdb stores each collection as a bbolt bucket of JSON documents.
package boltdb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/studysphere/backend/core"
)

var (
	usersBucket       = []byte("users")       // by email
	assignmentsBucket = []byte("assignments") // by id
	submissionsBucket = []byte("submissions") // by id

	buckets = [][]byte{usersBucket, assignmentsBucket, submissionsBucket}
)

type DB struct {
	bolt *bbolt.DB
}

var _ core.Store = (*DB)(nil) // interface compliance check

// Open opens (creating if needed) the database file at path and its buckets.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, core.NewStoreError(err, "creating database directory")
		}
	}
	bdb, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, core.NewStoreError(err, "opening bolt database")
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "creating bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, core.NewStoreError(err, "initializing bolt database")
	}
	return &DB{bolt: bdb}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return core.NewStoreError(db.bolt.View(func(tx *bbolt.Tx) error { return nil }), "pinging bolt database")
}

func (db *DB) Close() error {
	return db.bolt.Close()
}

// get decodes the document stored under key. found is false when there is none.
func get[T any](b *bbolt.Bucket, key string) (doc T, found bool, err error) {
	data := b.Get([]byte(key))
	if data == nil {
		return doc, false, nil
	}
	if err = json.Unmarshal(data, &doc); err != nil {
		return doc, false, errors.Wrapf(err, "decoding %q", key)
	}
	return doc, true, nil
}

func put[T any](b *bbolt.Bucket, key string, doc T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return b.Put([]byte(key), data)
}

// scan decodes every document of b for which keep returns true.
func scan[T any](b *bbolt.Bucket, keep func(T) bool) ([]T, error) {
	res := make([]T, 0)
	err := b.ForEach(func(k, v []byte) error {
		var doc T
		if err := json.Unmarshal(v, &doc); err != nil {
			return errors.Wrapf(err, "decoding %q", k)
		}
		if keep(doc) {
			res = append(res, doc)
		}
		return nil
	})
	return res, err
}

// containsFold reports whether substr is within s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
