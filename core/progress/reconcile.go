package progress

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
)

type (
	UserStore interface {
		QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error)
		SetProgress(ctx context.Context, email string, progress user.Progress) error
	}

	AssignmentLister interface {
		QueryAssignments(ctx context.Context, filter *assignment.QueryFilter) ([]assignment.Assignment, error)
	}

	SubmissionLister interface {
		QuerySubmissions(ctx context.Context, filter *submission.QueryFilter) ([]submission.Submission, error)
	}

	// Drift is a counter found out of sync with the collections it tallies.
	Drift struct {
		Email   string       `json:"email"`
		Counter user.Counter `json:"counter"`
		Stored  int          `json:"stored"`
		Actual  int          `json:"actual"`
	}

	Report struct {
		Checked int     `json:"checked"`
		Drifts  []Drift `json:"drifts"`
	}

	// Reconciler recomputes progress counters from the Assignments and Submissions collections.
	// Increments racing with a run may be overwritten: run it while writes are quiet.
	Reconciler struct {
		users       UserStore
		assignments AssignmentLister
		submissions SubmissionLister
		logger      core.Logger
	}
)

func NewReconciler(users UserStore, assignments AssignmentLister, submissions SubmissionLister, logger core.Logger) *Reconciler {
	return &Reconciler{users: users, assignments: assignments, submissions: submissions, logger: logger}
}

// Reconcile rewrites the counters that drifted. With dryRun, drifts are only reported.
func (r *Reconciler) Reconcile(ctx context.Context, dryRun bool) (Report, error) {
	actual := make(map[string]*user.Progress)
	tally := func(email string, c user.Counter) {
		p, ok := actual[email]
		if !ok {
			p = new(user.Progress)
			actual[email] = p
		}
		p.Inc(c)
	}

	assignments, err := r.assignments.QueryAssignments(ctx, nil)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying assignments")
	}
	for _, a := range assignments {
		tally(a.CreatorEmail, user.CounterCreated)
	}

	subs, err := r.submissions.QuerySubmissions(ctx, nil)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying submissions")
	}
	for _, s := range subs {
		tally(s.UserEmail, user.CounterSubmitted)
		if s.IsCompleted() {
			tally(s.UserEmail, user.CounterMarked)
		}
	}

	users, err := r.users.QueryUsers(ctx, nil)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying users")
	}

	report := Report{Checked: len(users), Drifts: []Drift{}}
	for _, usr := range users {
		want := user.Progress{}
		if p, ok := actual[usr.Email]; ok {
			want = *p
		}
		if want == usr.Progress {
			continue
		}
		for _, c := range user.Counters {
			if stored, real := usr.Progress.Get(c), want.Get(c); stored != real {
				d := Drift{Email: usr.Email, Counter: c, Stored: stored, Actual: real}
				report.Drifts = append(report.Drifts, d)
				msg := fmt.Sprintf("progress drift: %s %s counter is %d, expected %d", d.Email, d.Counter, d.Stored, d.Actual)
				r.logger.Warn(msg, core.NewInconsistentError(errors.New(msg), "reconciling progress"))
			}
		}
		if dryRun {
			continue
		}
		if err = r.users.SetProgress(ctx, usr.Email, want); err != nil {
			return report, errors.Wrapf(err, "setting progress of %q", usr.Email)
		}
	}
	return report, nil
}
