package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/studysphere/backend/apps/api/echo"
	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/progress"
	"github.com/studysphere/backend/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errHelp   = errors.New("help provided")
	errNotSQL = errors.New("migrations only apply to the postgres and sqlite3 engines")
)

type commandLine struct {
	conf       *core.Config
	db         *sqlx.DB // nil unless the engine is an SQL one
	reconciler *progress.Reconciler
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo, reset, up-to, down-to...)")
	fmt.Fprintln(cli.out, "  reconcile [-dry-run] - recompute progress counters from assignments & submissions")
	fmt.Fprintln(cli.out, "  token -email EMAIL [-name NAME] - print an API token identifying EMAIL")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	reconcileCmd := flag.NewFlagSet("reconcile", flag.ExitOnError)
	reconcileDryRun := reconcileCmd.Bool("dry-run", false, "Only report the counters out of sync.")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenEmail := tokenCmd.String("email", "", "The e-mail the token identifies.")
	tokenName := tokenCmd.String("name", "", "The display name carried by the token.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "reconcile":
		if err := reconcileCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.reconcile(*reconcileDryRun)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if core.CleanEmail(*tokenEmail) == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenEmail, *tokenName)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNotSQL
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

func (cli *commandLine) reconcile(dryRun bool) error {
	report, err := cli.reconciler.Reconcile(context.Background(), dryRun)
	if err != nil {
		return err
	}
	for _, d := range report.Drifts {
		fmt.Fprintf(cli.out, "%s: %s %d -> %d\n", d.Email, d.Counter, d.Stored, d.Actual)
	}
	verb := "repaired"
	if dryRun {
		verb = "found"
	}
	fmt.Fprintf(cli.out, "%d users checked, %d drifts %s\n", report.Checked, len(report.Drifts), verb)
	return nil
}

func (cli *commandLine) token(email, name string) error {
	ss, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, email, core.CleanString(name)))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, ss)
	return nil
}
