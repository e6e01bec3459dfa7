package testutil

import (
	"testing"

	ut "github.com/go-playground/universal-translator"

	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/leaderboard"
	"github.com/studysphere/backend/core/progress"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
	inmemdb "github.com/studysphere/backend/storage/database/inmem"
)

// Services are the core services wired on an in-memory store.
type Services struct {
	Repos       Repositories
	Users       *user.Service
	Assignments *assignment.Service
	Submissions *submission.Service
	Leaderboard *leaderboard.Aggregator
	Reconciler  *progress.Reconciler
	Translator  ut.Translator
}

func NewServices(t *testing.T) Services {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repos := Repositories{
		Users:       inmemdb.NewUserRepository(db),
		Assignments: inmemdb.NewAssignmentRepository(db),
		Submissions: inmemdb.NewSubmissionRepository(db),
	}
	logger := Logger()
	validate, translator := ValidatorWithTranslator()
	ledger := progress.NewLedger(repos.Users, logger)

	svcs := Services{
		Repos:       repos,
		Users:       user.NewService(repos.Users, validate),
		Assignments: assignment.NewService(repos.Assignments, ledger, validate, logger),
		Submissions: submission.NewService(repos.Submissions, ledger, validate, logger),
		Reconciler:  progress.NewReconciler(repos.Users, repos.Assignments, repos.Submissions, logger),
		Translator:  translator,
	}
	svcs.Leaderboard = leaderboard.NewAggregator(svcs.Submissions, svcs.Users, leaderboard.DefaultLimit)
	return svcs
}
