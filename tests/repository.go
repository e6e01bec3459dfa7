package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
)

// Repositories groups the repositories of one storage engine.
type Repositories struct {
	Users       user.Repository
	Assignments assignment.Repository
	Submissions submission.Repository
}

// TestRepositories checks the behaviour every storage engine shares.
// newRepos must return empty repositories on each call.
func TestRepositories(t *testing.T, newRepos func(t *testing.T) Repositories) {
	t.Run("users", func(t *testing.T) { testUserRepository(t, newRepos(t).Users) })
	t.Run("assignments", func(t *testing.T) { testAssignmentRepository(t, newRepos(t).Assignments) })
	t.Run("submissions", func(t *testing.T) { testSubmissionRepository(t, newRepos(t).Submissions) })
}

func testUserRepository(t *testing.T, repo user.Repository) {
	ctx := context.Background()
	now := time.Now().UTC()
	bob := CreateUser(t, repo, "bob@example.com", "Bob Marley", now.Add(-time.Hour))
	CreateUser(t, repo, "alice@example.com", "Alice Walker", now)

	_, err := repo.CreateUser(ctx, user.User{Email: bob.Email, Name: "Other", CreatedAt: now})
	assert.ErrorIs(t, err, user.ErrUserExists)

	got, err := repo.GetUserByEmail(ctx, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, "Bob Marley", got.Name)
	assert.True(t, bob.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)

	users, err := repo.QueryUsers(ctx, nil)
	require.NoError(t, err)
	if assert.Len(t, users, 2) {
		assert.Equal(t, "bob@example.com", users[0].Email)
		assert.Equal(t, "alice@example.com", users[1].Email)
	}

	users, err = repo.QueryUsers(ctx, &user.QueryFilter{Search: "walk"})
	require.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "alice@example.com", users[0].Email)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.IncrementProgress(ctx, bob.Email, user.CounterSubmitted)
		}()
	}
	wg.Wait()
	matched, err := repo.IncrementProgress(ctx, bob.Email, user.CounterCreated)
	require.NoError(t, err)
	assert.True(t, matched)
	matched, err = repo.IncrementProgress(ctx, "nobody@example.com", user.CounterCreated)
	require.NoError(t, err)
	assert.False(t, matched)

	got, err = repo.GetUserByEmail(ctx, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, user.Progress{Created: 1, Submitted: 10}, got.Progress)

	require.NoError(t, repo.SetProgress(ctx, bob.Email, user.Progress{Created: 2, Submitted: 3, Marked: 1}))
	got, err = repo.GetUserByEmail(ctx, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, user.Progress{Created: 2, Submitted: 3, Marked: 1}, got.Progress)
	assert.ErrorIs(t, repo.SetProgress(ctx, "nobody@example.com", user.Progress{}), user.ErrNotFound)
}

func testAssignmentRepository(t *testing.T, repo assignment.Repository) {
	ctx := context.Background()
	now := time.Now().UTC()
	a1 := CreateAssignment(t, repo, "0b6a2d4e-8f0a-4c55-8f5e-3d1b2f0c1a01", "Linear Algebra", "bob@example.com", now.Add(-2*time.Hour))
	a2 := CreateAssignment(t, repo, "0b6a2d4e-8f0a-4c55-8f5e-3d1b2f0c1a02", "Graph Theory", "alice@example.com", now.Add(-time.Hour))
	CreateAssignment(t, repo, "0b6a2d4e-8f0a-4c55-8f5e-3d1b2f0c1a03", "Linear Programming", "alice@example.com", now)

	got, err := repo.GetAssignment(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, a1.Title, got.Title)
	assert.False(t, got.DueDate.Valid)

	_, err = repo.GetAssignment(ctx, "0b6a2d4e-8f0a-4c55-8f5e-3d1b2f0c1aff")
	assert.ErrorIs(t, err, assignment.ErrNotFound)

	tests := []struct {
		name   string
		filter *assignment.QueryFilter
		want   []string
	}{
		{"all", nil, []string{"Linear Algebra", "Graph Theory", "Linear Programming"}},
		{"search", &assignment.QueryFilter{Search: "LINEAR"}, []string{"Linear Algebra", "Linear Programming"}},
		{"creator", &assignment.QueryFilter{CreatorEmail: "alice@example.com"}, []string{"Graph Theory", "Linear Programming"}},
		{"difficulty", &assignment.QueryFilter{Difficulty: assignment.DifficultyHard}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := repo.QueryAssignments(ctx, tc.filter)
			require.NoError(t, err)
			titles := make([]string, 0, len(res))
			for _, a := range res {
				titles = append(titles, a.Title)
			}
			assert.Equal(t, tc.want, titles)
		})
	}

	title, marks := "Graph Theory II", 50
	due := null.TimeFrom(now.Add(48 * time.Hour).Truncate(time.Second))
	res, err := repo.UpdateAssignment(ctx, a2.ID, assignment.UpdateAssignment{Title: &title, Marks: &marks, DueDate: &due}, now)
	require.NoError(t, err)
	assert.Equal(t, core.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

	got, err = repo.GetAssignment(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, marks, got.Marks)
	assert.Equal(t, a2.Description, got.Description)
	assert.True(t, got.DueDate.Valid)
	assert.True(t, due.Time.Equal(got.DueDate.Time))

	res, err = repo.UpdateAssignment(ctx, a2.ID, assignment.UpdateAssignment{Title: &title}, now)
	require.NoError(t, err)
	assert.Equal(t, core.UpdateResult{MatchedCount: 1}, res)

	res, err = repo.UpdateAssignment(ctx, "0b6a2d4e-8f0a-4c55-8f5e-3d1b2f0c1aff", assignment.UpdateAssignment{Title: &title}, now)
	require.NoError(t, err)
	assert.Equal(t, core.UpdateResult{}, res)

	require.NoError(t, repo.DeleteAssignment(ctx, a1.ID))
	assert.ErrorIs(t, repo.DeleteAssignment(ctx, a1.ID), assignment.ErrNotFound)
	_, err = repo.GetAssignment(ctx, a1.ID)
	assert.ErrorIs(t, err, assignment.ErrNotFound)
}

func testSubmissionRepository(t *testing.T, repo submission.Repository) {
	ctx := context.Background()
	now := time.Now().UTC()
	s1 := CreateSubmission(t, repo, "7d3e5f10-2a4b-4c6d-8e9f-0a1b2c3d4e01", "Linear Algebra", "bob@example.com", now.Add(-time.Hour))
	s2 := CreateSubmission(t, repo, "7d3e5f10-2a4b-4c6d-8e9f-0a1b2c3d4e02", "Graph Theory", "bob@example.com", now)
	CreateSubmission(t, repo, "7d3e5f10-2a4b-4c6d-8e9f-0a1b2c3d4e03", "Graph Coloring", "alice@example.com", now.Add(-2*time.Hour))

	got, err := repo.GetSubmission(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusPending, got.Status)
	assert.False(t, got.ReceivedMark.Valid)
	assert.False(t, got.Feedback.Valid)
	assert.False(t, got.MarkedAt.Valid)

	_, err = repo.GetSubmission(ctx, "7d3e5f10-2a4b-4c6d-8e9f-0a1b2c3d4eff")
	assert.ErrorIs(t, err, submission.ErrNotFound)

	markedAt := now.Truncate(time.Second)
	graded, first, err := repo.GradeSubmission(ctx, s2.ID, submission.GradeUpdate{ReceivedMark: 80, Feedback: "good", MarkedAt: markedAt})
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, submission.StatusCompleted, graded.Status)
	assert.Equal(t, null.Float64From(80), graded.ReceivedMark)
	assert.Equal(t, null.StringFrom("good"), graded.Feedback)
	assert.True(t, markedAt.Equal(graded.MarkedAt.Time))
	assert.True(t, s2.SubmittedAt.Equal(graded.SubmittedAt))

	graded, first, err = repo.GradeSubmission(ctx, s2.ID, submission.GradeUpdate{ReceivedMark: 90, Feedback: "better", MarkedAt: markedAt})
	require.NoError(t, err)
	assert.False(t, first)
	assert.Equal(t, null.Float64From(90), graded.ReceivedMark)

	_, _, err = repo.GradeSubmission(ctx, "7d3e5f10-2a4b-4c6d-8e9f-0a1b2c3d4eff", submission.GradeUpdate{ReceivedMark: 1, MarkedAt: markedAt})
	assert.ErrorIs(t, err, submission.ErrNotFound)

	tests := []struct {
		name   string
		filter *submission.QueryFilter
		want   []string
	}{
		{"all newest first", nil, []string{"Graph Theory", "Linear Algebra", "Graph Coloring"}},
		{"by user", &submission.QueryFilter{UserEmail: "bob@example.com"}, []string{"Graph Theory", "Linear Algebra"}},
		{"pending", &submission.QueryFilter{Status: submission.StatusPending}, []string{"Linear Algebra", "Graph Coloring"}},
		{"pending search", &submission.QueryFilter{Status: submission.StatusPending, Search: "graph"}, []string{"Graph Coloring"}},
		{"completed", &submission.QueryFilter{Status: submission.StatusCompleted}, []string{"Graph Theory"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := repo.QuerySubmissions(ctx, tc.filter)
			require.NoError(t, err)
			titles := make([]string, 0, len(res))
			for _, s := range res {
				titles = append(titles, s.Title)
			}
			assert.Equal(t, tc.want, titles)
		})
	}
}
