package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/recibo/client"
)

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check the health of a running recibo server",
		Action: func(c *cli.Context) error {
			cl := client.NewClient(c.String("server-url"), nil, nil)
			if err := cl.Health(c.Context); err != nil {
				return err
			}
			fmt.Println("server is healthy")
			return nil
		},
	}
}
