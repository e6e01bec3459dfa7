package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/submission"
)

const submissionColumns = `id, assignment_id, user_email, google_link, note, title, creator_name, status, marks,
	received_mark, feedback, submitted_at, marked_at`

type submissionRow struct {
	ID           string       `db:"id"`
	AssignmentID string       `db:"assignment_id"`
	UserEmail    string       `db:"user_email"`
	GoogleLink   string       `db:"google_link"`
	Note         string       `db:"note"`
	Title        string       `db:"title"`
	CreatorName  string       `db:"creator_name"`
	Status       string       `db:"status"`
	Marks        int          `db:"marks"`
	ReceivedMark null.Float64 `db:"received_mark"`
	Feedback     null.String  `db:"feedback"`
	SubmittedAt  time.Time    `db:"submitted_at"`
	MarkedAt     null.Time    `db:"marked_at"`
}

func (r submissionRow) toSubmission() submission.Submission {
	s := submission.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		UserEmail:    r.UserEmail,
		GoogleLink:   r.GoogleLink,
		Note:         r.Note,
		Title:        r.Title,
		CreatorName:  r.CreatorName,
		Status:       submission.Status(r.Status),
		Marks:        r.Marks,
		ReceivedMark: r.ReceivedMark,
		Feedback:     r.Feedback,
		SubmittedAt:  r.SubmittedAt.UTC(),
		MarkedAt:     r.MarkedAt,
	}
	if s.MarkedAt.Valid {
		s.MarkedAt.Time = s.MarkedAt.Time.UTC()
	}
	return s
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	q := repo.db.Rebind(`INSERT INTO submissions (` + submissionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		s.ID, s.AssignmentID, s.UserEmail, s.GoogleLink, s.Note, s.Title, s.CreatorName, string(s.Status), s.Marks,
		s.ReceivedMark, s.Feedback, s.SubmittedAt.UTC(), utcTime(s.MarkedAt),
	)
	if err != nil {
		return submission.Submission{}, core.NewStoreError(err, "creating submission")
	}
	return s, nil
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, filter *submission.QueryFilter) ([]submission.Submission, error) {
	var (
		conds []string
		args  []interface{}
	)
	if !filter.IsEmpty() {
		if filter.Search != "" {
			conds = append(conds, "LOWER(title) LIKE ?")
			args = append(args, likePattern(filter.Search))
		}
		if filter.Status != "" {
			conds = append(conds, "status = ?")
			args = append(args, string(filter.Status))
		}
		if filter.UserEmail != "" {
			conds = append(conds, "user_email = ?")
			args = append(args, filter.UserEmail)
		}
	}
	q := repo.db.Rebind(`SELECT ` + submissionColumns + ` FROM submissions` + whereClause(conds) + ` ORDER BY submitted_at DESC, id`)

	var rows []submissionRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, args...); err != nil {
		return nil, core.NewStoreError(err, "querying submissions")
	}
	res := make([]submission.Submission, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.toSubmission())
	}
	return res, nil
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	var r submissionRow
	q := repo.db.Rebind(`SELECT ` + submissionColumns + ` FROM submissions WHERE id = ?`)
	if err := sqlx.GetContext(ctx, repo.db, &r, q, id); err != nil {
		return submission.Submission{}, storeError(err, submission.ErrNotFound, "getting submission")
	}
	return r.toSubmission(), nil
}

// GradeSubmission first tries the pending -> completed transition, which at most one concurrent caller wins,
// then falls back to overwriting the grade of an already completed submission.
func (repo *submissionRepository) GradeSubmission(ctx context.Context, id string, g submission.GradeUpdate) (submission.Submission, bool, error) {
	set := `UPDATE submissions SET status = ?, received_mark = ?, feedback = ?, marked_at = ? WHERE id = ?`
	args := []interface{}{string(submission.StatusCompleted), g.ReceivedMark, g.Feedback, g.MarkedAt.UTC(), id}

	n, err := repo.exec(ctx, set+` AND status = ?`, append(args, string(submission.StatusPending))...)
	if err != nil {
		return submission.Submission{}, false, err
	}
	first := n > 0
	if !first {
		if n, err = repo.exec(ctx, set, args...); err != nil {
			return submission.Submission{}, false, err
		}
		if n == 0 {
			return submission.Submission{}, false, submission.ErrNotFound
		}
	}

	s, err := repo.GetSubmission(ctx, id)
	if err != nil {
		return submission.Submission{}, false, err
	}
	return s, first, nil
}

func (repo *submissionRepository) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, core.NewStoreError(err, "grading submission")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.NewStoreError(err, "grading submission")
	}
	return n, nil
}
