package boltdb

import (
	"context"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/submission"
)

type submissionRepository struct {
	db *bbolt.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db.bolt}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		return put(tx.Bucket(submissionsBucket), s.ID, s)
	})
	if err != nil {
		return submission.Submission{}, core.NewStoreError(err, "creating submission")
	}
	return s, nil
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, filter *submission.QueryFilter) ([]submission.Submission, error) {
	var res []submission.Submission
	err := repo.db.View(func(tx *bbolt.Tx) (err error) {
		res, err = scan(tx.Bucket(submissionsBucket), func(s submission.Submission) bool {
			if filter.IsEmpty() {
				return true
			}
			return (filter.Search == "" || containsFold(s.Title, filter.Search)) &&
				(filter.Status == "" || s.Status == filter.Status) &&
				(filter.UserEmail == "" || s.UserEmail == filter.UserEmail)
		})
		return err
	})
	if err != nil {
		return nil, core.NewStoreError(err, "querying submissions")
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].SubmittedAt.After(res[j].SubmittedAt) })
	return res, nil
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	var (
		s     submission.Submission
		found bool
	)
	err := repo.db.View(func(tx *bbolt.Tx) (err error) {
		s, found, err = get[submission.Submission](tx.Bucket(submissionsBucket), id)
		return err
	})
	if err != nil {
		return submission.Submission{}, core.NewStoreError(err, "getting submission")
	}
	if !found {
		return submission.Submission{}, submission.ErrNotFound
	}
	return s, nil
}

func (repo *submissionRepository) GradeSubmission(ctx context.Context, id string, g submission.GradeUpdate) (submission.Submission, bool, error) {
	var (
		s            submission.Submission
		found, first bool
	)
	err := repo.db.Update(func(tx *bbolt.Tx) (err error) {
		b := tx.Bucket(submissionsBucket)
		if s, found, err = get[submission.Submission](b, id); err != nil || !found {
			return err
		}
		first = s.Complete(g)
		return put(b, id, s)
	})
	if err != nil {
		return submission.Submission{}, false, core.NewStoreError(err, "grading submission")
	}
	if !found {
		return submission.Submission{}, false, submission.ErrNotFound
	}
	return s, first, nil
}
