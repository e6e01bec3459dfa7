package inmemdb_test

import (
	"testing"

	inmemdb "github.com/studysphere/backend/storage/database/inmem"
	testutil "github.com/studysphere/backend/tests"
)

func TestRepositories(t *testing.T) {
	testutil.TestRepositories(t, func(t *testing.T) testutil.Repositories {
		db, err := inmemdb.Open()
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		return testutil.Repositories{
			Users:       inmemdb.NewUserRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
			Submissions: inmemdb.NewSubmissionRepository(db),
		}
	})
}
