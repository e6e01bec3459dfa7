package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/user"
	testutil "github.com/studysphere/backend/tests"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)

	nu := user.NewUser{Email: "  Bob@X.com ", Name: " Bob ", Photo: "https://example.com/bob.png"}
	usr, err := svcs.Users.Register(ctx, nu)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", usr.Email)
	assert.Equal(t, "Bob", usr.Name)
	assert.Equal(t, user.Progress{}, usr.Progress)
	assert.False(t, usr.CreatedAt.IsZero())

	_, err = svcs.Repos.Users.IncrementProgress(ctx, usr.Email, user.CounterSubmitted)
	require.NoError(t, err)

	// registering twice changes nothing
	_, err = svcs.Users.Register(ctx, nu)
	assert.ErrorIs(t, err, user.ErrUserExists)
	assert.Equal(t, core.KindAlreadyExists, core.KindOf(err))

	got, err := svcs.Users.GetByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
	assert.Equal(t, user.Progress{Submitted: 1}, got.Progress)
}

func TestService_Register_invalid(t *testing.T) {
	svcs := testutil.NewServices(t)

	tests := []struct {
		name string
		nu   user.NewUser
	}{
		{"missing email", user.NewUser{Name: "Bob"}},
		{"bad email", user.NewUser{Email: "bob"}},
		{"bad photo", user.NewUser{Email: "bob@x.com", Photo: "not a url"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svcs.Users.Register(context.Background(), tc.nu)
			assert.Equal(t, core.KindInvalidArgument, core.KindOf(err))
		})
	}

	users, err := svcs.Users.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	for _, nu := range []user.NewUser{
		{Email: "bob@x.com", Name: "Bob Marley"},
		{Email: "alice@x.com", Name: "Alice Walker"},
		{Email: "carol@x.com", Name: "Carol Marley"},
	} {
		_, err := svcs.Users.Register(ctx, nu)
		require.NoError(t, err)
	}

	users, err := svcs.Users.Query(ctx, &user.QueryFilter{Search: " marley "})
	require.NoError(t, err)
	emails := make([]string, 0, len(users))
	for _, usr := range users {
		emails = append(emails, usr.Email)
	}
	assert.ElementsMatch(t, []string{"bob@x.com", "carol@x.com"}, emails)
}

func TestService_GetProgress(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)

	_, err := svcs.Users.GetProgress(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))

	_, err = svcs.Users.Register(ctx, user.NewUser{Email: "bob@x.com"})
	require.NoError(t, err)
	for _, c := range []user.Counter{user.CounterCreated, user.CounterMarked, user.CounterMarked} {
		_, err = svcs.Repos.Users.IncrementProgress(ctx, "bob@x.com", c)
		require.NoError(t, err)
	}
	p, err := svcs.Users.GetProgress(ctx, "BOB@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.Progress{Created: 1, Marked: 2}, p)
}
