package boltdb

import (
	"context"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
)

type assignmentRepository struct {
	db *bbolt.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db.bolt}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		return put(tx.Bucket(assignmentsBucket), a.ID, a)
	})
	if err != nil {
		return assignment.Assignment{}, core.NewStoreError(err, "creating assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter) ([]assignment.Assignment, error) {
	var res []assignment.Assignment
	err := repo.db.View(func(tx *bbolt.Tx) (err error) {
		res, err = scan(tx.Bucket(assignmentsBucket), func(a assignment.Assignment) bool {
			if filter.IsEmpty() {
				return true
			}
			return (filter.Search == "" || containsFold(a.Title, filter.Search)) &&
				(filter.Difficulty == "" || a.Difficulty == filter.Difficulty) &&
				(filter.CreatorEmail == "" || a.CreatorEmail == filter.CreatorEmail)
		})
		return err
	})
	if err != nil {
		return nil, core.NewStoreError(err, "querying assignments")
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	var (
		a     assignment.Assignment
		found bool
	)
	err := repo.db.View(func(tx *bbolt.Tx) (err error) {
		a, found, err = get[assignment.Assignment](tx.Bucket(assignmentsBucket), id)
		return err
	})
	if err != nil {
		return assignment.Assignment{}, core.NewStoreError(err, "getting assignment")
	}
	if !found {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (repo *assignmentRepository) UpdateAssignment(
	ctx context.Context,
	id string,
	patch assignment.UpdateAssignment,
	updatedAt time.Time,
) (core.UpdateResult, error) {
	var res core.UpdateResult
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(assignmentsBucket)
		orig, found, err := get[assignment.Assignment](b, id)
		if err != nil || !found {
			return err
		}
		res.MatchedCount = 1
		a, changed := patch.Apply(orig)
		if !changed {
			return nil
		}
		a.UpdatedAt = updatedAt
		res.ModifiedCount = 1
		return put(b, id, a)
	})
	if err != nil {
		return core.UpdateResult{}, core.NewStoreError(err, "updating assignment")
	}
	return res, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	found := false
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(assignmentsBucket)
		if b.Get([]byte(id)) == nil {
			return nil
		}
		found = true
		return b.Delete([]byte(id))
	})
	if err != nil {
		return core.NewStoreError(err, "deleting assignment")
	}
	if !found {
		return assignment.ErrNotFound
	}
	return nil
}
