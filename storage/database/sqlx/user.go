package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/user"
)

const userColumns = `email, name, photo, progress_created, progress_submitted, progress_marked, created_at`

var counterColumns = map[user.Counter]string{
	user.CounterCreated:   "progress_created",
	user.CounterSubmitted: "progress_submitted",
	user.CounterMarked:    "progress_marked",
}

type userRow struct {
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Photo     string    `db:"photo"`
	Created   int       `db:"progress_created"`
	Submitted int       `db:"progress_submitted"`
	Marked    int       `db:"progress_marked"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) toUser() user.User {
	return user.User{
		Email:     r.Email,
		Name:      r.Name,
		Photo:     r.Photo,
		Progress:  user.Progress{Created: r.Created, Submitted: r.Submitted, Marked: r.Marked},
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		usr.Email, usr.Name, usr.Photo,
		usr.Progress.Created, usr.Progress.Submitted, usr.Progress.Marked,
		usr.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, core.NewStoreError(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if !filter.IsEmpty() {
		conds = append(conds, "LOWER(name) LIKE ?")
		args = append(args, likePattern(filter.Search))
	}
	q := repo.db.Rebind(`SELECT ` + userColumns + ` FROM users` + whereClause(conds) + ` ORDER BY created_at, email`)

	var rows []userRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, args...); err != nil {
		return nil, core.NewStoreError(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var r userRow
	q := repo.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := sqlx.GetContext(ctx, repo.db, &r, q, email); err != nil {
		return user.User{}, storeError(err, user.ErrNotFound, "getting user")
	}
	return r.toUser(), nil
}

func (repo *userRepository) IncrementProgress(ctx context.Context, email string, counter user.Counter) (bool, error) {
	col, ok := counterColumns[counter]
	if !ok {
		return false, errors.Errorf("unknown counter %q", counter)
	}
	q := repo.db.Rebind(`UPDATE users SET ` + col + ` = ` + col + ` + 1 WHERE email = ?`)
	res, err := repo.db.ExecContext(ctx, q, email)
	if err != nil {
		return false, core.NewStoreError(err, "incrementing progress")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStoreError(err, "incrementing progress")
	}
	return n > 0, nil
}

func (repo *userRepository) SetProgress(ctx context.Context, email string, progress user.Progress) error {
	q := repo.db.Rebind(`UPDATE users SET progress_created = ?, progress_submitted = ?, progress_marked = ? WHERE email = ?`)
	res, err := repo.db.ExecContext(ctx, q, progress.Created, progress.Submitted, progress.Marked, email)
	if err != nil {
		return core.NewStoreError(err, "setting progress")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStoreError(err, "setting progress")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
