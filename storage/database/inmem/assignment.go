package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[a.ID] = &a
	return a, nil
}

func matchAssignment(a *assignment.Assignment, filter *assignment.QueryFilter) bool {
	if filter.IsEmpty() {
		return true
	}
	if filter.Search != "" && !containsFold(a.Title, filter.Search) {
		return false
	}
	if filter.Difficulty != "" && a.Difficulty != filter.Difficulty {
		return false
	}
	if filter.CreatorEmail != "" && a.CreatorEmail != filter.CreatorEmail {
		return false
	}
	return true
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]assignment.Assignment, 0)
	for _, a := range repo.db.table {
		if matchAssignment(a, filter) {
			res = append(res, *a)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignment(
	ctx context.Context,
	id string,
	patch assignment.UpdateAssignment,
	updatedAt time.Time,
) (core.UpdateResult, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[id]
	if !ok {
		return core.UpdateResult{}, nil
	}
	a, changed := patch.Apply(*orig)
	if !changed {
		return core.UpdateResult{MatchedCount: 1}, nil
	}
	a.UpdatedAt = updatedAt
	repo.db.table[id] = &a
	return core.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
