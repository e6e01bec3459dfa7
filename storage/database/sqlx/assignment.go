package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
)

const assignmentColumns = `id, title, description, difficulty, marks, thumbnail, due_date,
	creator_email, creator_name, created_at, updated_at`

type assignmentRow struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Difficulty   string    `db:"difficulty"`
	Marks        int       `db:"marks"`
	Thumbnail    string    `db:"thumbnail"`
	DueDate      null.Time `db:"due_date"`
	CreatorEmail string    `db:"creator_email"`
	CreatorName  string    `db:"creator_name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r assignmentRow) toAssignment() assignment.Assignment {
	a := assignment.Assignment{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Difficulty:   r.Difficulty,
		Marks:        r.Marks,
		Thumbnail:    r.Thumbnail,
		DueDate:      r.DueDate,
		CreatorEmail: r.CreatorEmail,
		CreatorName:  r.CreatorName,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if a.DueDate.Valid {
		a.DueDate.Time = a.DueDate.Time.UTC()
	}
	return a
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := repo.db.Rebind(`INSERT INTO assignments (` + assignmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		a.ID, a.Title, a.Description, a.Difficulty, a.Marks, a.Thumbnail, utcTime(a.DueDate),
		a.CreatorEmail, a.CreatorName, a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	if err != nil {
		return assignment.Assignment{}, core.NewStoreError(err, "creating assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter) ([]assignment.Assignment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if !filter.IsEmpty() {
		if filter.Search != "" {
			conds = append(conds, "LOWER(title) LIKE ?")
			args = append(args, likePattern(filter.Search))
		}
		if filter.Difficulty != "" {
			conds = append(conds, "difficulty = ?")
			args = append(args, filter.Difficulty)
		}
		if filter.CreatorEmail != "" {
			conds = append(conds, "creator_email = ?")
			args = append(args, filter.CreatorEmail)
		}
	}
	q := repo.db.Rebind(`SELECT ` + assignmentColumns + ` FROM assignments` + whereClause(conds) + ` ORDER BY created_at, id`)

	var rows []assignmentRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, args...); err != nil {
		return nil, core.NewStoreError(err, "querying assignments")
	}
	res := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.toAssignment())
	}
	return res, nil
}

func getAssignment(ctx context.Context, exec executor, id string) (assignment.Assignment, error) {
	var r assignmentRow
	q := exec.Rebind(`SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`)
	if err := sqlx.GetContext(ctx, exec, &r, q, id); err != nil {
		return assignment.Assignment{}, storeError(err, assignment.ErrNotFound, "getting assignment")
	}
	return r.toAssignment(), nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	return getAssignment(ctx, repo.db, id)
}

func (repo *assignmentRepository) UpdateAssignment(
	ctx context.Context,
	id string,
	patch assignment.UpdateAssignment,
	updatedAt time.Time,
) (res core.UpdateResult, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.UpdateResult{}, core.NewStoreError(err, "updating assignment")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	orig, err := getAssignment(ctx, tx, id)
	if err != nil {
		if err == assignment.ErrNotFound {
			return core.UpdateResult{}, tx.Commit()
		}
		return core.UpdateResult{}, err
	}
	res.MatchedCount = 1
	a, changed := patch.Apply(orig)
	if !changed {
		return res, core.NewStoreError(tx.Commit(), "updating assignment")
	}

	q := tx.Rebind(`UPDATE assignments SET title = ?, description = ?, difficulty = ?, marks = ?, thumbnail = ?,
		due_date = ?, updated_at = ? WHERE id = ?`)
	if _, err = tx.ExecContext(ctx, q,
		a.Title, a.Description, a.Difficulty, a.Marks, a.Thumbnail, utcTime(a.DueDate), updatedAt.UTC(), id,
	); err != nil {
		return core.UpdateResult{}, core.NewStoreError(err, "updating assignment")
	}
	if err = tx.Commit(); err != nil {
		return core.UpdateResult{}, core.NewStoreError(err, "updating assignment")
	}
	res.ModifiedCount = 1
	return res, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM assignments WHERE id = ?`), id)
	if err != nil {
		return core.NewStoreError(err, "deleting assignment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStoreError(err, "deleting assignment")
	}
	if n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

// utcTime normalizes a nullable time before it is written.
func utcTime(t null.Time) null.Time {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}
