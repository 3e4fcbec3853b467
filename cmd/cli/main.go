package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/launchserver/internal/client/cli"
	"github.com/dmitrijs2005/launchserver/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := cli.Execute(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}

}
