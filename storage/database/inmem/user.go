package inmemdb

import (
	"context"
	"sort"

	"github.com/studysphere/backend/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.Email]; ok {
		return user.User{}, user.ErrUserExists
	}
	repo.db.table[usr.Email] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(repo.db.table))
	for _, usr := range repo.db.table {
		if !filter.IsEmpty() && !containsFold(usr.Name, filter.Search) {
			continue
		}
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[email]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) IncrementProgress(ctx context.Context, email string, counter user.Counter) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[email]
	if !ok {
		return false, nil
	}
	usr.Progress.Inc(counter)
	return true, nil
}

func (repo *userRepository) SetProgress(ctx context.Context, email string, progress user.Progress) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[email]
	if !ok {
		return user.ErrNotFound
	}
	usr.Progress = progress
	return nil
}
