package main

import (
	"log"
	"os"

	dig_container "github.com/studysphere/backend/apps/api/di/dig"
	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/progress"
	logsvc "github.com/studysphere/backend/services/logger"
	"github.com/studysphere/backend/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	repos, err := dig_container.OpenRepositories(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	// start CLI
	cli := commandLine{
		conf:       conf,
		reconciler: progress.NewReconciler(repos.Users, repos.Assignments, repos.Submissions, logger),
		out:        os.Stdout,
	}
	if store, ok := repos.Store.(database.Store); ok {
		cli.db = store.DB
	}

	err = cli.run(os.Args)
	if cErr := repos.Store.Close(); cErr != nil {
		logger.Error("closing database", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
