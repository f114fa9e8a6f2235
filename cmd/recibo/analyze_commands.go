package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/recibo/service/analyze"
	"github.com/brojonat/recibo/service/receipt"
	"github.com/brojonat/recibo/service/server"
	"github.com/brojonat/recibo/service/solana"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Fetch a transaction and report who received funds",
		ArgsUsage: "<signature-or-explorer-url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "expected-recipient",
				Aliases: []string{"r"},
				Usage:   "Restrict the analysis to this recipient address",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full report as JSON",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "Apply a jq expression to the JSON report and print the results",
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
			resp := server.ReportToResponse(report)

			if expr := c.String("jq"); expr != "" {
				return printWithJQ(resp, expr)
			}
			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			printReport(report)
			return nil
		},
	}
}

// runAnalysis performs the fetch-and-analyze pipeline against the RPC
// endpoint from the global flags.
func runAnalysis(c *cli.Context, input, expectedRecipient string) (analyze.Report, error) {
	sig, err := solana.ExtractSignature(input)
	if err != nil {
		return analyze.Report{}, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // only errors to stderr
	}))

	network := c.String("network")
	rpcClient := solana.NewRPCClient(c.String("rpc-url"))
	client := solana.NewClient(rpcClient, network, nil, logger)

	rec, err := client.FetchTransaction(c.Context, sig)
	if err != nil {
		return analyze.Report{}, err
	}

	link := solana.ExplorerTxURL(rec.Signature, network)
	return analyze.BuildReport(*rec, expectedRecipient, link), nil
}

// printReport writes the human-readable summary.
func printReport(report analyze.Report) {
	f := receipt.DecimalFormatter{}

	fmt.Printf("Signature:  %s\n", report.Signature)
	fmt.Printf("Slot:       %d\n", report.Slot)
	if !report.BlockTime.IsZero() {
		fmt.Printf("Block time: %s\n", report.BlockTime.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Printf("Fee:        %s SOL\n", receipt.FormatLamports(f, report.Fee))

	switch asset := report.Asset.(type) {
	case analyze.NativeAsset:
		fmt.Printf("Received:   %s SOL\n", f.FormatAmount(new(big.Int).SetUint64(asset.Lamports), 9))
	case analyze.TokenAsset:
		fmt.Printf("Received:   %s (mint %s)\n", f.FormatAmount(asset.Raw, asset.Decimals), asset.Mint)
	default:
		fmt.Println("Received:   could not be determined from balance changes")
	}

	if report.Sender != "" {
		fmt.Printf("Sender:     %s\n", report.Sender)
	}
	if report.Recipient != "" {
		fmt.Printf("Recipient:  %s\n", report.Recipient)
	}
	if report.Memo != "" {
		fmt.Printf("Memo:       %s\n", report.Memo)
	}
	if report.Err != "" {
		fmt.Printf("Status:     %s\n", report.Err)
	}
	fmt.Printf("Explorer:   %s\n", report.ExplorerLink)
}

// printWithJQ applies a jq expression to the JSON form of the report and
// prints each result on its own line.
func printWithJQ(resp server.AnalyzeResponse, expr string) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("failed to parse jq expression %q: %w", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq expression %q: %w", expr, err)
	}

	// Round-trip through JSON so gojq sees plain maps and slices.
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}

	iter := code.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("jq: %w", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}
