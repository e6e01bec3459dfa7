package core

import "context"

// UpdateResult reports the outcome of an update addressed to a single document.
type UpdateResult struct {
	MatchedCount  int `json:"matchedCount"`
	ModifiedCount int `json:"modifiedCount"`
}

// Store is a process-wide handle to the document store, shared by all repositories.
type Store interface {
	Ping(ctx context.Context) error
	Close() error
}
