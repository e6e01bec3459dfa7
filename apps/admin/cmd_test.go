package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/studysphere/backend/apps/api/echo"
	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/user"
	"github.com/studysphere/backend/tests"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
		}
		return
	}
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func setup(t *testing.T) (*commandLine, testutil.Services, *bytes.Buffer) {
	svcs := testutil.NewServices(t)
	out := new(bytes.Buffer)
	cli := &commandLine{
		conf:       &core.Config{AppName: "StudySphere", SecretKey: "test-secret", Server: core.ServerConfig{JWTExpirationDelta: time.Hour}},
		reconciler: svcs.Reconciler,
		out:        out,
	}
	return cli, svcs, out
}

func Test_commandLine_run(t *testing.T) {
	cli, _, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "migrate: not SQL", args: []string{"migrate", "up"}, wantErr: errNotSQL},
		{name: "token: no email", args: []string{"token"}, wantErr: errHelp},
		{name: "token: blank email", args: []string{"token", "-email", "  "}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)
	cli.db = testutil.OpenSQLite(t)

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })
	gooseRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_reconcile(t *testing.T) {
	cli, svcs, out := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, svcs.Repos.Users, "bob@example.com", "Bob Marley")
	// stored without going through the services: no counter is incremented
	testutil.CreateAssignment(t, svcs.Repos.Assignments, "0b6a2d4e-8f0a-4c55-8f5e-3d1b2f0c1a01", "Graphs", "bob@example.com", time.Now())

	require.NoError(t, cli.run([]string{"admin", "reconcile", "-dry-run"}))
	assert.Equal(t, "bob@example.com: created 0 -> 1\n1 users checked, 1 drifts found\n", out.String())
	usr, err := svcs.Users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Progress{}, usr.Progress)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "reconcile"}))
	assert.Equal(t, "bob@example.com: created 0 -> 1\n1 users checked, 1 drifts repaired\n", out.String())
	usr, err = svcs.Users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Progress{Created: 1}, usr.Progress)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "reconcile"}))
	assert.Equal(t, "1 users checked, 0 drifts repaired\n", out.String())
}

func Test_commandLine_token(t *testing.T) {
	cli, _, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "token", "-email", " Bob@Example.com ", "-name", "Bob"}))

	claims := new(echoapi.Claims)
	token, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cli.conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.Equal(t, "Bob", claims.Name)
	assert.Equal(t, "StudySphere", claims.Issuer)
}
