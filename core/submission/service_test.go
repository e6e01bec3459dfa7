package submission_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
	testutil "github.com/studysphere/backend/tests"
)

func newSubmission(title string) submission.NewSubmission {
	return submission.NewSubmission{
		AssignmentID: "4F1C8F64-0C4E-4C39-9D7C-2B7A1F6B9E01",
		GoogleLink:   "https://docs.google.com/document/d/abc",
		Note:         "see page 2",
		Title:        title,
		Marks:        100,
		CreatorName:  "Bob",
	}
}

func setup(t *testing.T, emails ...string) testutil.Services {
	t.Helper()
	svcs := testutil.NewServices(t)
	for _, email := range emails {
		_, err := svcs.Users.Register(context.Background(), user.NewUser{Email: email, Name: email})
		require.NoError(t, err)
	}
	return svcs
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	svcs := setup(t, "alice@x.com")

	for i := 0; i < 4; i++ {
		s, err := svcs.Submissions.Submit(ctx, "Alice@x.com", newSubmission("Graph Theory"))
		require.NoError(t, err)
		assert.NoError(t, submission.ValidateID(s.ID))
		assert.Equal(t, "alice@x.com", s.UserEmail)
		assert.Equal(t, "4f1c8f64-0c4e-4c39-9d7c-2b7a1f6b9e01", s.AssignmentID)
		assert.Equal(t, submission.StatusPending, s.Status)
		assert.False(t, s.ReceivedMark.Valid)
		assert.False(t, s.MarkedAt.Valid)
	}

	p, err := svcs.Users.GetProgress(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.Progress{Submitted: 4}, p)

	mine, err := svcs.Submissions.QueryByUser(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Len(t, mine, p.Submitted)
}

func TestService_Submit_invalid(t *testing.T) {
	ctx := context.Background()
	svcs := setup(t, "alice@x.com")

	tests := []struct {
		name  string
		ns    func(ns *submission.NewSubmission)
		email string
	}{
		{"bad assignment id", func(ns *submission.NewSubmission) { ns.AssignmentID = "42" }, "alice@x.com"},
		{"bad link", func(ns *submission.NewSubmission) { ns.GoogleLink = "doc" }, "alice@x.com"},
		{"no title", func(ns *submission.NewSubmission) { ns.Title = "" }, "alice@x.com"},
		{"no marks", func(ns *submission.NewSubmission) { ns.Marks = 0 }, "alice@x.com"},
		{"no user", func(ns *submission.NewSubmission) {}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ns := newSubmission("Graph Theory")
			tc.ns(&ns)
			_, err := svcs.Submissions.Submit(ctx, tc.email, ns)
			assert.Equal(t, core.KindInvalidArgument, core.KindOf(err))
		})
	}

	p, err := svcs.Users.GetProgress(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Submitted)
}

func TestService_Grade(t *testing.T) {
	ctx := context.Background()
	svcs := setup(t, "alice@x.com")
	s, err := svcs.Submissions.Submit(ctx, "alice@x.com", newSubmission("Graph Theory"))
	require.NoError(t, err)

	res, err := svcs.Submissions.Grade(ctx, s.ID, submission.Grade{ReceivedMark: "80", Feedback: " nice "})
	require.NoError(t, err)
	assert.Equal(t, core.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res.UpdateResult)
	assert.Equal(t, submission.StatusCompleted, res.Submission.Status)
	assert.Equal(t, null.Float64From(80), res.Submission.ReceivedMark)
	assert.Equal(t, null.StringFrom("nice"), res.Submission.Feedback)
	assert.True(t, res.Submission.MarkedAt.Valid)
	assert.Equal(t, s.SubmittedAt, res.Submission.SubmittedAt)

	// re-grading overwrites the grade but counts once
	res, err = svcs.Submissions.Grade(ctx, s.ID, submission.Grade{ReceivedMark: "95.5"})
	require.NoError(t, err)
	assert.Equal(t, null.Float64From(95.5), res.Submission.ReceivedMark)

	p, err := svcs.Users.GetProgress(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.Progress{Submitted: 1, Marked: 1}, p)
}

func TestService_Grade_concurrent(t *testing.T) {
	ctx := context.Background()
	svcs := setup(t, "alice@x.com")
	s, err := svcs.Submissions.Submit(ctx, "alice@x.com", newSubmission("Graph Theory"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svcs.Submissions.Grade(ctx, s.ID, submission.Grade{ReceivedMark: "70"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := svcs.Users.GetProgress(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Marked)
}

func TestService_Grade_invalid(t *testing.T) {
	ctx := context.Background()
	svcs := setup(t, "alice@x.com")
	s, err := svcs.Submissions.Submit(ctx, "alice@x.com", newSubmission("Graph Theory"))
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		mark submission.Mark
		kind core.ErrorKind
	}{
		{"invalid id", "abc", "10", core.KindInvalidArgument},
		{"unknown id", "4f1c8f64-0c4e-4c39-9d7c-2b7a1f6b9eff", "10", core.KindNotFound},
		{"missing mark", s.ID, "", core.KindInvalidArgument},
		{"non-numeric mark", s.ID, "ten", core.KindInvalidArgument},
		{"NaN mark", s.ID, "NaN", core.KindInvalidArgument},
		{"negative mark", s.ID, "-1", core.KindInvalidArgument},
		{"mark above maximum", s.ID, "100.5", core.KindInvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svcs.Submissions.Grade(ctx, tc.id, submission.Grade{ReceivedMark: tc.mark})
			assert.Equal(t, tc.kind, core.KindOf(err))
		})
	}

	got, err := svcs.Submissions.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusPending, got.Status)
	p, err := svcs.Users.GetProgress(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Marked)
}

func TestService_SubmitGradeListMine(t *testing.T) {
	ctx := context.Background()
	svcs := setup(t, "alice@x.com", "bob@x.com")

	s, err := svcs.Submissions.Submit(ctx, "alice@x.com", newSubmission("Graph Theory"))
	require.NoError(t, err)
	_, err = svcs.Submissions.Submit(ctx, "bob@x.com", newSubmission("Graph Theory"))
	require.NoError(t, err)

	var g submission.Grade
	require.NoError(t, json.Unmarshal([]byte(`{"receivedMark": 88, "feedback": "well done"}`), &g))
	_, err = svcs.Submissions.Grade(ctx, s.ID, g)
	require.NoError(t, err)

	mine, err := svcs.Submissions.QueryByUser(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, s.ID, mine[0].ID)
	assert.Equal(t, submission.StatusCompleted, mine[0].Status)
	assert.Equal(t, null.Float64From(88), mine[0].ReceivedMark)
	assert.True(t, mine[0].MarkedAt.Valid)

	pending, err := svcs.Submissions.QueryPending(ctx, nil)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob@x.com", pending[0].UserEmail)

	completed, err := svcs.Submissions.QueryCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, s.ID, completed[0].ID)
}

func TestMark_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		json    string
		want    float64
		wantErr bool
	}{
		{`{"receivedMark": 42}`, 42, false},
		{`{"receivedMark": 42.75}`, 42.75, false},
		{`{"receivedMark": "42"}`, 42, false},
		{`{"receivedMark": " 7.5 "}`, 7.5, false},
		{`{"receivedMark": null}`, 0, true},
		{`{}`, 0, true},
		{`{"receivedMark": "forty"}`, 0, true},
		{`{"receivedMark": "Inf"}`, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.json, func(t *testing.T) {
			var g submission.Grade
			require.NoError(t, json.Unmarshal([]byte(tc.json), &g))
			got, err := g.ReceivedMark.Float64()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
