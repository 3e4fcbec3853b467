package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/launchserver/internal/server/admin"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := admin.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		stop()
		os.Exit(1)
	}

}
