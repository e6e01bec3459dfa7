package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/studysphere/backend/apps/api/echo"
	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/leaderboard"
	"github.com/studysphere/backend/core/progress"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
	logsvc "github.com/studysphere/backend/services/logger"
	"github.com/studysphere/backend/storage/database"
	boltdb "github.com/studysphere/backend/storage/database/bolt"
	inmemdb "github.com/studysphere/backend/storage/database/inmem"
	sqlxrepos "github.com/studysphere/backend/storage/database/sqlx"
)

// Non-SQL engines
const (
	EngineBolt   = "bolt"
	EngineMemory = "memory"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are provided together since they share one Store.
type Repositories struct {
	dig.Out
	Store       core.Store
	Users       user.Repository
	Assignments assignment.Repository
	Submissions submission.Repository
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// OpenRepositories opens the store selected by conf.Database.Engine.
// SQL databases are pinged and migrated first.
func OpenRepositories(conf *core.Config) (Repositories, error) {
	switch conf.Database.Engine {
	case database.EnginePostgres, database.EngineSQLite:
		db, err := database.Open(conf)
		if err != nil {
			return Repositories{}, errors.Wrap(err, "opening database")
		}
		if err = database.Ping(context.Background(), db); err != nil {
			_ = db.Close()
			return Repositories{}, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return Repositories{}, err
		}
		return Repositories{
			Store:       database.Store{DB: db},
			Users:       sqlxrepos.NewUserRepository(db),
			Assignments: sqlxrepos.NewAssignmentRepository(db),
			Submissions: sqlxrepos.NewSubmissionRepository(db),
		}, nil

	case EngineBolt:
		db, err := boltdb.Open(conf.Database.Path)
		if err != nil {
			return Repositories{}, err
		}
		return Repositories{
			Store:       db,
			Users:       boltdb.NewUserRepository(db),
			Assignments: boltdb.NewAssignmentRepository(db),
			Submissions: boltdb.NewSubmissionRepository(db),
		}, nil

	case EngineMemory:
		db, err := inmemdb.Open()
		if err != nil {
			return Repositories{}, err
		}
		return Repositories{
			Store:       db,
			Users:       inmemdb.NewUserRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
			Submissions: inmemdb.NewSubmissionRepository(db),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	repos, err := OpenRepositories(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return repos
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	assignment.InitValidators(validate, translator)
	return validate, translator
}

func newLedger(repo user.Repository, logger core.Logger) *progress.Ledger {
	return progress.NewLedger(repo, logger)
}

func newAggregator(conf *core.Config, submissions *submission.Service, users *user.Service) *leaderboard.Aggregator {
	return leaderboard.NewAggregator(submissions, users, conf.Leaderboard.Limit)
}

func newReconciler(users user.Repository, assignments assignment.Repository, submissions submission.Repository, logger core.Logger) *progress.Reconciler {
	return progress.NewReconciler(users, assignments, submissions, logger)
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	UserSvc       *user.Service
	AssignmentSvc *assignment.Service
	SubmissionSvc *submission.Service
	Leaderboard   *leaderboard.Aggregator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.Deps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		AssignmentSvc: p.AssignmentSvc,
		SubmissionSvc: p.SubmissionSvc,
		Leaderboard:   p.Leaderboard,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newValidator))
	must(c.Provide(newLedger, dig.As(new(assignment.ProgressLedger), new(submission.ProgressLedger))))
	must(c.Provide(user.NewService))
	must(c.Provide(assignment.NewService))
	must(c.Provide(submission.NewService))
	must(c.Provide(newAggregator))
	must(c.Provide(newReconciler))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
