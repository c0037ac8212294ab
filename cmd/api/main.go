package main

import (
	"context"
	"fmt"
	"os"

	"github.com/daily-task-list/backend/internal/common/bootstrap"
	"github.com/daily-task-list/backend/internal/common/config"
	"github.com/daily-task-list/backend/internal/common/constants"
	srv "github.com/daily-task-list/backend/internal/common/server"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	app.Log.Infof("store driver: %s", app.Store.Driver)

	server := srv.NewServer(srv.DefaultServerConfig(app.Config.HTTPPort), app.Handler())
	srv.StartWithGracefulShutdownAndHooks(server, app.Log, constants.ServiceName, app.ShutdownHooks())
}
