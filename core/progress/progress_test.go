package progress_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/progress"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
	testutil "github.com/studysphere/backend/tests"
)

type storeFunc func(ctx context.Context, email string, counter user.Counter) (bool, error)

func (f storeFunc) IncrementProgress(ctx context.Context, email string, counter user.Counter) (bool, error) {
	return f(ctx, email, counter)
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	var calls []string
	ledger := progress.NewLedger(storeFunc(func(_ context.Context, email string, c user.Counter) (bool, error) {
		calls = append(calls, email+":"+string(c))
		return email == "bob@x.com", nil
	}), testutil.Logger())

	assert.NoError(t, ledger.IncrementCreated(ctx, " Bob@X.com"))
	assert.NoError(t, ledger.IncrementSubmitted(ctx, "bob@x.com"))
	assert.NoError(t, ledger.IncrementMarked(ctx, "ghost@x.com"))
	assert.Equal(t, []string{"bob@x.com:created", "bob@x.com:submitted", "ghost@x.com:marked"}, calls)

	failing := progress.NewLedger(storeFunc(func(context.Context, string, user.Counter) (bool, error) {
		return false, errors.New("store down")
	}), testutil.Logger())
	assert.Error(t, failing.IncrementMarked(ctx, "bob@x.com"))
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	for _, email := range []string{"alice@x.com", "bob@x.com", "carol@x.com"} {
		_, err := svcs.Users.Register(ctx, user.NewUser{Email: email})
		require.NoError(t, err)
	}

	_, err := svcs.Assignments.Create(ctx, assignment.NewAssignment{
		Title: "Graph Theory", Difficulty: assignment.DifficultyEasy, Marks: 10,
	}, "bob@x.com")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		s, err := svcs.Submissions.Submit(ctx, "alice@x.com", submission.NewSubmission{
			AssignmentID: "4f1c8f64-0c4e-4c39-9d7c-2b7a1f6b9e01",
			GoogleLink:   "https://docs.google.com/document/d/abc",
			Title:        "Graph Theory",
			Marks:        10,
		})
		require.NoError(t, err)
		if i == 0 {
			_, err = svcs.Submissions.Grade(ctx, s.ID, submission.Grade{ReceivedMark: "7"})
			require.NoError(t, err)
		}
	}

	report, err := svcs.Reconciler.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Empty(t, report.Drifts)

	// simulate lost and duplicated increments
	require.NoError(t, svcs.Repos.Users.SetProgress(ctx, "alice@x.com", user.Progress{Submitted: 1, Marked: 1}))
	require.NoError(t, svcs.Repos.Users.SetProgress(ctx, "carol@x.com", user.Progress{Created: 4}))

	report, err = svcs.Reconciler.Reconcile(ctx, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []progress.Drift{
		{Email: "alice@x.com", Counter: user.CounterSubmitted, Stored: 1, Actual: 2},
		{Email: "carol@x.com", Counter: user.CounterCreated, Stored: 4, Actual: 0},
	}, report.Drifts)

	p, err := svcs.Users.GetProgress(ctx, "carol@x.com")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Created, "dry run must not write")

	_, err = svcs.Reconciler.Reconcile(ctx, false)
	require.NoError(t, err)

	want := map[string]user.Progress{
		"alice@x.com": {Submitted: 2, Marked: 1},
		"bob@x.com":   {Created: 1},
		"carol@x.com": {},
	}
	for email, wp := range want {
		p, err := svcs.Users.GetProgress(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, wp, p, email)
	}
}
