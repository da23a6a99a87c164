package main

import (
	"context"
	"log"
	"os"

	"vaultkeeper/internal/buildinfo"
	"vaultkeeper/internal/cli"
	"vaultkeeper/internal/config"
	"vaultkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefault()

	app := cli.NewApp(cfg, logger)

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
