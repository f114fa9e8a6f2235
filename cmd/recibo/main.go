package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "recibo",
		Usage: "Solana payment confirmation CLI",
		Description: `Fetch a transaction by signature or explorer URL, determine who
received funds and how much, and print the analysis or write a printable
receipt document.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			analyzeCommand(),
			receiptCommand(),
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Solana RPC endpoint URL",
				EnvVars: []string{"SOLANA_RPC_URL"},
				Value:   "https://api.mainnet-beta.solana.com",
			},
			&cli.StringFlag{
				Name:    "network",
				Usage:   "Solana network (mainnet, devnet, testnet)",
				EnvVars: []string{"SOLANA_NETWORK"},
				Value:   "mainnet",
			},
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "Recibo server URL for server commands",
				EnvVars: []string{"SERVER_URL"},
				Value:   "http://localhost:8080",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
