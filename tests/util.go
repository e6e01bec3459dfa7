package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/assignment"
	"github.com/studysphere/backend/core/submission"
	"github.com/studysphere/backend/core/user"
	logsvc "github.com/studysphere/backend/services/logger"
	"github.com/studysphere/backend/storage/database"
	boltdb "github.com/studysphere/backend/storage/database/bolt"
)

// Logger returns a logger printing nothing.
func Logger() core.Logger {
	return logsvc.NewQuietLogger()
}

// Validator returns a validator with every custom tag registered.
func Validator() *validator.Validate {
	validate, _ := ValidatorWithTranslator()
	return validate
}

// ValidatorWithTranslator returns a validator with every custom tag registered, and its translator.
func ValidatorWithTranslator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	assignment.InitValidators(validate, translator)
	return validate, translator
}

// OpenSQLite returns a migrated, private in-memory SQLite database closed at the end of the test.
func OpenSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(db); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return db
}

// OpenBolt returns a bolt database stored in a temporary directory.
func OpenBolt(t *testing.T) *boltdb.DB {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("boltdb.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateUser(t *testing.T, repo user.Repository, email, name string, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr, err := repo.CreateUser(context.Background(), user.User{
		Email:     email,
		Name:      name,
		Photo:     "https://example.com/" + name + ".png",
		CreatedAt: tstamp.Truncate(time.Microsecond),
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateAssignment(t *testing.T, repo assignment.Repository, id, title, creatorEmail string, createdAt time.Time) assignment.Assignment {
	t.Helper()
	tstamp := createdAt.UTC().Truncate(time.Microsecond)
	a, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		ID:           id,
		Title:        title,
		Description:  title + " description",
		Difficulty:   assignment.DifficultyEasy,
		Marks:        100,
		CreatorEmail: creatorEmail,
		CreatorName:  "Creator",
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}

func CreateSubmission(t *testing.T, repo submission.Repository, id, title, userEmail string, submittedAt time.Time) submission.Submission {
	t.Helper()
	s, err := repo.CreateSubmission(context.Background(), submission.Submission{
		ID:           id,
		AssignmentID: "4f1c8f64-0c4e-4c39-9d7c-2b7a1f6b9e01",
		UserEmail:    userEmail,
		GoogleLink:   "https://docs.google.com/document/d/" + id,
		Title:        title,
		CreatorName:  "Creator",
		Status:       submission.StatusPending,
		Marks:        100,
		SubmittedAt:  submittedAt.UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return s
}
