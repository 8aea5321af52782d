package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/drivemirror/internal/client/cli"
	"github.com/dmitrijs2005/drivemirror/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	err = cli.NewRootCmd(app).ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		os.Exit(1)
	}

}
