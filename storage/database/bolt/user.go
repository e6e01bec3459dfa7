package boltdb

import (
	"context"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/user"
)

type userRepository struct {
	db *bbolt.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.bolt}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	exists := false
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(usersBucket)
		if b.Get([]byte(usr.Email)) != nil {
			exists = true
			return nil
		}
		return put(b, usr.Email, usr)
	})
	if err != nil {
		return user.User{}, core.NewStoreError(err, "creating user")
	}
	if exists {
		return user.User{}, user.ErrUserExists
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	var users []user.User
	err := repo.db.View(func(tx *bbolt.Tx) (err error) {
		users, err = scan(tx.Bucket(usersBucket), func(usr user.User) bool {
			return filter.IsEmpty() || containsFold(usr.Name, filter.Search)
		})
		return err
	})
	if err != nil {
		return nil, core.NewStoreError(err, "querying users")
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var (
		usr   user.User
		found bool
	)
	err := repo.db.View(func(tx *bbolt.Tx) (err error) {
		usr, found, err = get[user.User](tx.Bucket(usersBucket), email)
		return err
	})
	if err != nil {
		return user.User{}, core.NewStoreError(err, "getting user")
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

// IncrementProgress reads and rewrites the user within one write transaction; bbolt serializes those.
func (repo *userRepository) IncrementProgress(ctx context.Context, email string, counter user.Counter) (bool, error) {
	matched := false
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(usersBucket)
		usr, found, err := get[user.User](b, email)
		if err != nil || !found {
			return err
		}
		matched = true
		usr.Progress.Inc(counter)
		return put(b, email, usr)
	})
	if err != nil {
		return false, core.NewStoreError(err, "incrementing progress")
	}
	return matched, nil
}

func (repo *userRepository) SetProgress(ctx context.Context, email string, progress user.Progress) error {
	found := false
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(usersBucket)
		usr, ok, err := get[user.User](b, email)
		if err != nil || !ok {
			return err
		}
		found = true
		usr.Progress = progress
		return put(b, email, usr)
	})
	if err != nil {
		return core.NewStoreError(err, "setting progress")
	}
	if !found {
		return user.ErrNotFound
	}
	return nil
}
