package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/recibo/service/receipt"
)

func receiptCommand() *cli.Command {
	return &cli.Command{
		Name:      "receipt",
		Usage:     "Fetch a transaction and write a printable receipt document",
		ArgsUsage: "<signature-or-explorer-url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "expected-recipient",
				Aliases: []string{"r"},
				Usage:   "Restrict the analysis to this recipient address",
			},
			&cli.StringFlag{
				Name:  "invoice-number",
				Usage: "Invoice number printed on the receipt",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Payment description printed on the receipt",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (HTML; open in a browser and print to PDF)",
				Value:   "receipt.html",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one argument: a signature or explorer URL")
			}

			report, err := runAnalysis(c, c.Args().First(), c.String("expected-recipient"))
			if err != nil {
				return err
			}

			doc := receipt.New(receipt.Params{
				Report:        report,
				Network:       c.String("network"),
				InvoiceNumber: c.String("invoice-number"),
				Description:   c.String("description"),
			})

			out, err := os.Create(c.String("out"))
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer out.Close()

			if err := doc.Render(out); err != nil {
				return err
			}

			fmt.Printf("wrote receipt %s to %s\n", doc.ID, c.String("out"))
			return nil
		},
	}
}
