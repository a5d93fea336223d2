package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/cli"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

func main() {

	args := os.Args[1:]
	cfg := config.LoadConfig(args)

	c, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app := cli.NewApp(c, os.Stdin, os.Stdout, os.Getenv, cfg.Timeout)

	err = app.Run(context.Background(), cli.CommandArgs(args))
	c.Close()

	if err != nil {
		if err != cli.ErrUsage {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
