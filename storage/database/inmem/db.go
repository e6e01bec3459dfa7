package inmemdb

import (
	"context"
	"strings"
	"sync"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
)

type (
	// DB keeps every collection in maps. Each table has its own lock.
	DB struct {
		user       *userTable
		assignment *assignmentTable
		submission *submissionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User // by email
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment // by id
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*submission.Submission // by id
	}
)

var _ core.Store = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		submission: &submissionTable{table: make(map[string]*submission.Submission)},
	}
	return db, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (db *DB) Close() error {
	return nil
}

// containsFold reports whether substr is within s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
