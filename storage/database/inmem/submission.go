package inmemdb

import (
	"context"
	"sort"

	"github.com/studysphere/backend/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[s.ID] = &s
	return s, nil
}

func matchSubmission(s *submission.Submission, filter *submission.QueryFilter) bool {
	if filter.IsEmpty() {
		return true
	}
	if filter.Search != "" && !containsFold(s.Title, filter.Search) {
		return false
	}
	if filter.Status != "" && s.Status != filter.Status {
		return false
	}
	if filter.UserEmail != "" && s.UserEmail != filter.UserEmail {
		return false
	}
	return true
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, filter *submission.QueryFilter) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]submission.Submission, 0)
	for _, s := range repo.db.table {
		if matchSubmission(s, filter) {
			res = append(res, *s)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].SubmittedAt.Equal(res[j].SubmittedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].SubmittedAt.After(res[j].SubmittedAt)
	})
	return res, nil
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) GradeSubmission(ctx context.Context, id string, g submission.GradeUpdate) (submission.Submission, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return submission.Submission{}, false, submission.ErrNotFound
	}
	first := s.Complete(g)
	return *s, first, nil
}
