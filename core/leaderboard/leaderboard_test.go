package leaderboard_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/leaderboard"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
	testutil "github.com/studysphere/backend/tests"
)

// grade submits one solution per mark for email and grades it.
func grade(t *testing.T, svcs testutil.Services, email string, marks ...string) {
	t.Helper()
	ctx := context.Background()
	for _, m := range marks {
		s, err := svcs.Submissions.Submit(ctx, email, submission.NewSubmission{
			AssignmentID: "4f1c8f64-0c4e-4c39-9d7c-2b7a1f6b9e01",
			GoogleLink:   "https://docs.google.com/document/d/abc",
			Title:        "Graph Theory",
			Marks:        100,
		})
		require.NoError(t, err)
		_, err = svcs.Submissions.Grade(ctx, s.ID, submission.Grade{ReceivedMark: submission.Mark(m)})
		require.NoError(t, err)
	}
}

func register(t *testing.T, svcs testutil.Services, emails ...string) {
	t.Helper()
	for _, email := range emails {
		_, err := svcs.Users.Register(context.Background(), user.NewUser{
			Email: email,
			Name:  "Name of " + email,
			Photo: "https://example.com/" + email + ".png",
		})
		require.NoError(t, err)
	}
}

func TestAggregator_Compute_average(t *testing.T) {
	svcs := testutil.NewServices(t)
	register(t, svcs, "alice@x.com")
	grade(t, svcs, "alice@x.com", "80", "90", "100")

	entries, err := svcs.Leaderboard.Compute(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, leaderboard.Entry{
		Email:       "alice@x.com",
		Name:        null.StringFrom("Name of alice@x.com"),
		Photo:       null.StringFrom("https://example.com/alice@x.com.png"),
		AverageMark: 90.00,
	}, entries[0])
}

func TestAggregator_Compute_orderAndLimit(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	register(t, svcs, "a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com")
	grade(t, svcs, "a@x.com", "50")
	grade(t, svcs, "b@x.com", "70", "90") // 80
	grade(t, svcs, "c@x.com", "80")       // ties with b
	grade(t, svcs, "d@x.com", "95")

	// e has a pending submission only
	_, err := svcs.Submissions.Submit(ctx, "e@x.com", submission.NewSubmission{
		AssignmentID: "4f1c8f64-0c4e-4c39-9d7c-2b7a1f6b9e01",
		GoogleLink:   "https://docs.google.com/document/d/abc",
		Title:        "Graph Theory",
		Marks:        100,
	})
	require.NoError(t, err)

	tests := []struct {
		limit int
		want  []string
	}{
		{0, []string{"d@x.com", "b@x.com", "c@x.com", "a@x.com"}},
		{-3, []string{"d@x.com", "b@x.com", "c@x.com", "a@x.com"}},
		{10, []string{"d@x.com", "b@x.com", "c@x.com", "a@x.com"}},
		{3, []string{"d@x.com", "b@x.com", "c@x.com"}},
		{1, []string{"d@x.com"}},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("limit %d", tc.limit), func(t *testing.T) {
			entries, err := svcs.Leaderboard.Compute(ctx, tc.limit)
			require.NoError(t, err)
			emails := make([]string, 0, len(entries))
			for i, e := range entries {
				emails = append(emails, e.Email)
				if i > 0 {
					assert.LessOrEqual(t, e.AverageMark, entries[i-1].AverageMark)
				}
			}
			assert.Equal(t, tc.want, emails)
		})
	}
}

func TestAggregator_Compute_defaultLimit(t *testing.T) {
	svcs := testutil.NewServices(t)
	agg := leaderboard.NewAggregator(svcs.Submissions, svcs.Users, 2)
	grade(t, svcs, "a@x.com", "10")
	grade(t, svcs, "b@x.com", "20")
	grade(t, svcs, "c@x.com", "30")

	entries, err := agg.Compute(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAggregator_Compute_unknownUser(t *testing.T) {
	svcs := testutil.NewServices(t)
	grade(t, svcs, "ghost@x.com", "33", "34")

	entries, err := svcs.Leaderboard.Compute(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ghost@x.com", entries[0].Email)
	assert.False(t, entries[0].Name.Valid)
	assert.False(t, entries[0].Photo.Valid)
	assert.Equal(t, 33.5, entries[0].AverageMark)
}

func TestAggregator_Compute_rounding(t *testing.T) {
	svcs := testutil.NewServices(t)
	grade(t, svcs, "a@x.com", "1", "1", "2") // 1.333...
	grade(t, svcs, "b@x.com", "4.69", "0")   // 2.345

	entries, err := svcs.Leaderboard.Compute(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2.35, entries[0].AverageMark)
	assert.Equal(t, 1.33, entries[1].AverageMark)
}

type completedSource []submission.Submission

func (src completedSource) QueryCompleted(context.Context) ([]submission.Submission, error) {
	return src, nil
}

func TestAggregator_Compute_inconsistent(t *testing.T) {
	svcs := testutil.NewServices(t)
	src := completedSource{{ID: "1", UserEmail: "a@x.com", Status: submission.StatusCompleted}}
	agg := leaderboard.NewAggregator(src, svcs.Users, 0)

	_, err := agg.Compute(context.Background(), 0)
	assert.Equal(t, core.KindInconsistent, core.KindOf(err))
}

func TestRound(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{90, 90},
		{2.345, 2.35},
		{1.125, 1.13},
		{2.675, 2.68},
		{1.0 / 3, 0.33},
		{2.0 / 3, 0.67},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, leaderboard.Round(tc.x), "Round(%v)", tc.x)
	}
}
