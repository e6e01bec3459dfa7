package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	testutil "github.com/studysphere/backend/tests"
)

func TestRepositories(t *testing.T) {
	testutil.TestRepositories(t, func(t *testing.T) testutil.Repositories {
		db := testutil.OpenSQLite(t)
		return testutil.Repositories{
			Users:       NewUserRepository(db),
			Assignments: NewAssignmentRepository(db),
			Submissions: NewSubmissionRepository(db),
		}
	})
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		conds []string
		want  string
	}{
		{nil, ""},
		{[]string{"a = ?"}, " WHERE a = ?"},
		{[]string{"a = ?", "b = ?"}, " WHERE a = ? AND b = ?"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, whereClause(tc.conds))
	}
	assert.Equal(t, "%graph%", likePattern("Graph"))
}
